package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/suites"
	"github.com/raysh454/stereocheck/internal/tracker"
)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventTest   JobEventType = "test"
	JobEventResult JobEventType = "result"
)

// JobEvent is streamed to job watchers.
type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For test progress
	Test *check.Event `json:"test,omitempty"`

	// For the final result
	Result *RunResult `json:"result,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job is a suite run started in the background.
type Job struct {
	ID        string        `json:"id"`
	Suite     string        `json:"suite"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Result    *RunResult    `json:"result,omitempty"`
	Events    chan JobEvent `json:"-"`
}

// RunResult is one finished suite run.
type RunResult struct {
	Suite   string        `json:"suite"`
	OK      bool          `json:"ok"`
	Summary check.Summary `json:"summary"`
	// Report is the console output of the run.
	Report string         `json:"report,omitempty"`
	Run    *tracker.Run   `json:"run,omitempty"`
	Drift  *tracker.Drift `json:"drift,omitempty"`
}

// Orchestrator runs suites against the configured base URL and records them.
// Runs never overlap: checks are sequential even when the API receives
// concurrent requests.
type Orchestrator struct {
	cfg    *Config
	comps  *Components
	logger logging.Logger

	runMu sync.Mutex

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator ties together config, components and logger.
func NewOrchestrator(cfg *Config, comps *Components, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		cfg:        cfg,
		comps:      comps,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

// Config returns the configuration runs use.
func (o *Orchestrator) Config() *Config { return o.cfg }

// Tracker returns the run history.
func (o *Orchestrator) Tracker() tracker.Tracker { return o.comps.Tracker }

// RunSuite runs the named suite, writing the console report to out, and
// records the run. sink may be nil.
func (o *Orchestrator) RunSuite(ctx context.Context, name string, out io.Writer, sink check.Sink) (*RunResult, error) {
	suite, err := suites.Lookup(name)
	if err != nil {
		return nil, err
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	var report bytes.Buffer
	w := io.Writer(&report)
	if out != nil {
		w = io.MultiWriter(out, &report)
	}

	env := &suites.Env{
		BaseURL:        o.cfg.BaseURL,
		Fetcher:        o.comps.Fetcher,
		AppRoot:        o.cfg.AppRoot,
		DiscoverAssets: o.cfg.DiscoverAssets,
		Out:            w,
		Sink:           sink,
		Logger:         o.logger,
	}

	o.logger.Info("suite started", logging.Field{Key: "suite", Value: name}, logging.Field{Key: "base_url", Value: o.cfg.BaseURL})
	started := time.Now()
	outcome := suite(ctx, env)
	finished := time.Now()

	res := &RunResult{
		Suite:   outcome.Summary.Suite,
		OK:      outcome.OK,
		Summary: outcome.Summary,
		Report:  report.String(),
	}
	if res.Suite == "" {
		res.Suite = name
	}

	o.logger.Info("suite finished",
		logging.Field{Key: "suite", Value: res.Suite},
		logging.Field{Key: "ok", Value: res.OK},
		logging.Field{Key: "passed", Value: res.Summary.Passed},
		logging.Field{Key: "run", Value: res.Summary.Run},
		logging.Field{Key: "elapsed", Value: finished.Sub(started).String()})

	rec := tracker.RunRecord{
		Suite:      res.Suite,
		BaseURL:    o.cfg.BaseURL,
		StartedAt:  started,
		FinishedAt: finished,
		Summary:    outcome.Summary,
		OK:         outcome.OK,
	}
	if outcome.Page != nil {
		rec.PageBody = outcome.Page.Body
	}

	// History is best effort; a storage problem never changes the verdict.
	run, err := o.comps.Tracker.RecordRun(context.WithoutCancel(ctx), rec)
	if err != nil {
		o.logger.Warn("recording run", logging.Field{Key: "error", Value: err})
		return res, nil
	}
	res.Run = run

	drift, err := o.comps.Tracker.PageDrift(context.WithoutCancel(ctx), run.ID)
	if err != nil {
		o.logger.Warn("computing page drift", logging.Field{Key: "error", Value: err})
		return res, nil
	}
	res.Drift = drift
	if drift.Changed() {
		o.logger.Info("page changed since last run",
			logging.Field{Key: "base_run_id", Value: drift.BaseRunID},
			logging.Field{Key: "added", Value: drift.Added},
			logging.Field{Key: "removed", Value: drift.Removed})
	}
	return res, nil
}

// RunAll runs every suite in order, separated by a blank line, and reports
// whether all of them succeeded.
func (o *Orchestrator) RunAll(ctx context.Context, out io.Writer, sink check.Sink) ([]*RunResult, bool, error) {
	var (
		results []*RunResult
		ok      = true
	)
	for i, name := range suites.Names() {
		if err := ctx.Err(); err != nil {
			return results, false, err
		}
		if i > 0 && out != nil {
			fmt.Fprintln(out)
		}
		res, err := o.RunSuite(ctx, name, out, sink)
		if err != nil {
			return results, false, err
		}
		results = append(results, res)
		ok = ok && res.OK
	}
	return results, ok, nil
}

// StartJob validates the suite and runs it in the background, streaming
// progress on the job's Events channel, which is closed when the run ends.
func (o *Orchestrator) StartJob(ctx context.Context, name string) (*Job, error) {
	if _, err := suites.Lookup(name); err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &Job{
		ID:        uuid.New().String(),
		Suite:     name,
		Status:    JobPending,
		StartedAt: time.Now(),
		Events:    make(chan JobEvent, 64),
	}

	o.jobsMu.Lock()
	o.jobs[job.ID] = job
	o.jobCancels[job.ID] = cancel
	o.jobsMu.Unlock()

	go o.runJob(jobCtx, job)
	return job, nil
}

func (o *Orchestrator) runJob(ctx context.Context, job *Job) {
	defer func() {
		o.jobsMu.Lock()
		cancel := o.jobCancels[job.ID]
		delete(o.jobCancels, job.ID)
		o.jobsMu.Unlock()
		if cancel != nil {
			cancel()
		}
		o.pruneJobs()
		close(job.Events)
	}()

	o.setStatus(job, JobRunning, "")
	o.emit(ctx, job, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: JobRunning})

	res, err := o.RunSuite(ctx, job.Suite, nil, func(ev check.Event) {
		o.emit(ctx, job, JobEvent{JobID: job.ID, Type: JobEventTest, Test: &ev})
	})

	switch {
	case ctx.Err() != nil:
		o.setStatus(job, JobCanceled, ctx.Err().Error())
	case err != nil:
		o.setStatus(job, JobFailed, err.Error())
	default:
		o.jobsMu.Lock()
		job.Result = res
		o.jobsMu.Unlock()
		o.emit(ctx, job, JobEvent{JobID: job.ID, Type: JobEventResult, Result: res})
		o.setStatus(job, JobDone, "")
	}

	snap := o.snapshot(job)
	o.emit(ctx, job, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: snap.Status, Error: snap.Error})
}

// pruneJobs drops the oldest finished jobs beyond cfg.MaxJobs. Running jobs
// are never dropped.
func (o *Orchestrator) pruneJobs() {
	if o.cfg.MaxJobs <= 0 {
		return
	}
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()

	var finished []*Job
	for _, j := range o.jobs {
		if j.Status == JobDone || j.Status == JobFailed || j.Status == JobCanceled {
			finished = append(finished, j)
		}
	}
	if len(finished) <= o.cfg.MaxJobs {
		return
	}
	sort.Slice(finished, func(i, k int) bool { return finished[i].StartedAt.Before(finished[k].StartedAt) })
	for _, j := range finished[:len(finished)-o.cfg.MaxJobs] {
		delete(o.jobs, j.ID)
	}
}

// emit delivers ev unless the job was canceled.
func (o *Orchestrator) emit(ctx context.Context, job *Job, ev JobEvent) {
	select {
	case job.Events <- ev:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) setStatus(job *Job, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	job.Status = status
	job.Error = errMsg
	if status == JobDone || status == JobFailed || status == JobCanceled {
		job.EndedAt = time.Now()
	}
}

// snapshot copies job under the lock, without its channel.
func (o *Orchestrator) snapshot(job *Job) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	c := *job
	c.Events = nil
	return &c
}

// GetJob returns a copy of the job.
func (o *Orchestrator) GetJob(id string) (*Job, bool) {
	o.jobsMu.Lock()
	job, ok := o.jobs[id]
	o.jobsMu.Unlock()
	if !ok {
		return nil, false
	}
	return o.snapshot(job), true
}

// ListJobs returns copies of all jobs, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	jobs := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		jobs = append(jobs, j)
	}
	o.jobsMu.Unlock()

	out := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, o.snapshot(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].StartedAt.Before(out[k].StartedAt) })
	return out
}

// CancelJob stops a running job. Unknown or finished jobs are ignored.
func (o *Orchestrator) CancelJob(id string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[id]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels running jobs and releases the components.
func (o *Orchestrator) Close() error {
	o.jobsMu.Lock()
	for _, cancel := range o.jobCancels {
		cancel()
	}
	o.jobsMu.Unlock()
	return o.comps.Close()
}
