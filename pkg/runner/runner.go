package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reportpipe/pkg/catalog"
	"reportpipe/pkg/clean"
	"reportpipe/pkg/dataset"
	"reportpipe/pkg/proc"
	"reportpipe/pkg/sink"
	"reportpipe/pkg/source"
)

// Runner executes one catalog selection end to end. Job failures are
// isolated: a failed fetch, transform or sink action fails that job's outcome
// and the run continues with the next job.
type Runner struct {
	Catalog    *catalog.Catalog
	Opener     sink.Opener
	Statements sink.StatementStore
	DataDir    string
	Log        *slog.Logger
}

// Run scans the catalog, selects the execution set, runs every job in order
// and commits the priority-tag mutation. Only a catalog scan failure aborts.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	log := r.logger()
	start := time.Now()

	log.Info("importing job definitions")
	jobs, err := r.Catalog.Scan()
	if err != nil {
		return Summary{}, err
	}
	run := catalog.Select(jobs)

	var outcomes []Outcome
	for _, job := range run {
		out := r.runJob(ctx, job)
		if out.Failed() {
			log.Error("job failed", "job", job.Label(), "stage", string(out.Stage), "elapsed", out.Elapsed, "err", out.Err)
		} else {
			log.Info("job processed", "job", job.Label(), "elapsed", out.Elapsed)
		}
		outcomes = append(outcomes, out)
	}

	// Every job already ran; a failed tag rename is logged, not fatal, so
	// the summary and exit status still reflect the jobs themselves. The
	// priority file keeps its tag and simply runs again next time.
	if err := r.Catalog.Commit(run); err != nil {
		log.Error("priority tag commit failed", "err", err)
	}

	s := Summary{Outcomes: outcomes, Elapsed: time.Since(start)}
	failed := s.Failed()
	log.Info("run finished", "elapsed", s.Elapsed, "jobs", len(s.Outcomes), "errors", len(failed))
	for _, o := range failed {
		log.Error("failed report", "job", o.Job.Label(), "stage", string(o.Stage))
	}
	return s, nil
}

func (r *Runner) runJob(ctx context.Context, job catalog.Job) Outcome {
	log := r.logger().With("job", job.Label())
	start := time.Now()

	if job.Err != nil {
		return fail(job, StageConfig, job.Err, start)
	}

	// Bind everything the job names before any data moves: the downloader,
	// the processor and the fully resolved cleaning steps.
	dl, err := source.Get(job.Downloader.Name)
	if err != nil {
		return fail(job, StageConfig, err, start)
	}
	var pr proc.Processor
	var steps []clean.Step
	if job.Processor.Name != "" {
		if pr, err = proc.Get(job.Processor.Name); err != nil {
			return fail(job, StageConfig, err, start)
		}
		if steps, err = clean.Resolve(job.Processor.Cleaning); err != nil {
			return fail(job, StageConfig, err, start)
		}
	}

	log.Info("downloading")
	paths, err := dl.Fetch(ctx, source.Request{
		Service: job.Service,
		Report:  job.Report,
		DataDir: r.DataDir,
		Params:  job.Downloader.Params,
	})
	if err != nil {
		return fail(job, StageFetch, err, start)
	}

	if pr == nil {
		// Download-only job: nothing to read, clean or load.
		return Outcome{Job: job, Elapsed: time.Since(start)}
	}

	log.Info("reading", "files", len(paths))
	frame, err := proc.ReadAll(pr, paths, job.Processor.Params)
	if err != nil {
		return fail(job, StageRead, err, start)
	}

	frame, err = clean.Apply(ctx, frame, steps)
	if err != nil {
		return fail(job, StageClean, err, start)
	}

	if job.Upload != nil {
		log.Info("uploading", "table", job.Upload.Table, "mode", job.Upload.Mode, "rows", frame.Rows())
		if err := r.load(ctx, frame, job.Upload); err != nil {
			return fail(job, StageLoad, err, start)
		}
	}
	if job.SQLExec != nil {
		log.Info("executing statements")
		if err := r.execStatements(ctx, job.SQLExec); err != nil {
			return fail(job, StageExec, err, start)
		}
	}
	if job.Export != nil {
		log.Info("exporting", "path", job.Export.Path)
		if err := sink.Export(frame, job.Export.Path, job.Export.Format); err != nil {
			return fail(job, StageExport, err, start)
		}
	}
	return Outcome{Job: job, Elapsed: time.Since(start)}
}

func (r *Runner) load(ctx context.Context, f *dataset.Frame, up *catalog.Upload) error {
	db, err := r.Opener.Open(up.Database)
	if err != nil {
		return err
	}
	table := sink.Table{Name: up.Table, Schema: up.Schema, VarcharSize: up.VarcharSize}
	return db.Load(ctx, f, table, sink.Mode(up.Mode))
}

// execStatements runs the file-referenced statements then the literal ones,
// in listed order, stopping at the first failure.
func (r *Runner) execStatements(ctx context.Context, ex *catalog.SQLExec) error {
	db, err := r.Opener.Open(ex.Database)
	if err != nil {
		return err
	}
	for _, name := range ex.Files {
		if r.Statements == nil {
			return fmt.Errorf("statement file %s: no statement storage configured", name)
		}
		text, err := r.Statements.Read(name)
		if err != nil {
			return err
		}
		if err := db.Exec(ctx, text); err != nil {
			return fmt.Errorf("statement file %s: %w", name, err)
		}
	}
	for i, q := range ex.Queries {
		if err := db.Exec(ctx, q); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
