package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	cron "github.com/robfig/cron/v3"

	"reportpipe/pkg/catalog"
	"reportpipe/pkg/runner"
	"reportpipe/pkg/sink"
)

var version = "0.1.0-dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	jobsDir := flag.String("jobs", "reports", "Directory of job definition files")
	queriesDir := flag.String("queries", "querys", "Directory of SQL statement files")
	dataDir := flag.String("data", "data", "Root directory for downloaded files")
	cronSpec := flag.String("cron", "", "Cron expression; when set, runs repeatedly instead of once")
	flag.Parse()

	if *showVersion {
		fmt.Println("reportpipe", version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	r := &runner.Runner{
		Catalog:    catalog.New(catalog.Dir{Path: *jobsDir}, log),
		Opener:     sink.NewGormOpener(os.Getenv("SQL_ENGINE_STRING")),
		Statements: sink.DirStatements{Path: *queriesDir},
		DataDir:    *dataDir,
		Log:        log,
	}

	if *cronSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(*cronSpec, func() { runOnce(r, log) }); err != nil {
			log.Error("bad cron expression", "cron", *cronSpec, "err", err)
			os.Exit(2)
		}
		log.Info("scheduler started", "cron", *cronSpec)
		c.Run()
		return
	}

	os.Exit(runOnce(r, log))
}

func runOnce(r *runner.Runner, log *slog.Logger) int {
	runLog := log.With("run_id", uuid.NewString())
	r.Log = runLog
	summary, err := r.Run(context.Background())
	if err != nil {
		runLog.Error("run aborted", "err", err)
		return 2
	}
	return summary.ExitCode()
}
