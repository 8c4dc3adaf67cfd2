package runner

import (
	"time"

	"reportpipe/pkg/catalog"
)

// Stage names the phase of a job run an error came from. Config and clean
// stages are the runner's own validation and transform failures; fetch, load
// and exec are adapter failures.
type Stage string

const (
	StageConfig Stage = "config"
	StageFetch  Stage = "fetch"
	StageRead   Stage = "read"
	StageClean  Stage = "clean"
	StageLoad   Stage = "load"
	StageExec   Stage = "exec"
	StageExport Stage = "export"
)

// Outcome is the finalized result of one job's execution attempt.
type Outcome struct {
	Job     catalog.Job
	Stage   Stage
	Err     error
	Elapsed time.Duration
}

func (o Outcome) Failed() bool { return o.Err != nil }

func fail(job catalog.Job, stage Stage, err error, start time.Time) Outcome {
	return Outcome{Job: job, Stage: stage, Err: err, Elapsed: time.Since(start)}
}

// Summary aggregates a whole run.
type Summary struct {
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Failed returns the outcomes of jobs that failed.
func (s Summary) Failed() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// ExitCode is non-zero when any job failed.
func (s Summary) ExitCode() int {
	if len(s.Failed()) > 0 {
		return 1
	}
	return 0
}
