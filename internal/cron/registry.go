package cron

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is one maintenance task run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type entry struct {
	job     Job
	every   time.Duration
	lastRun time.Time
}

// Registry holds the jobs and when each last ran. A job registered with a
// zero cadence is due on every cycle.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	byName  map[string]*entry
}

// NewRegistry registers jobs to run on every cycle. Nil jobs are skipped.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{byName: make(map[string]*entry)}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		_ = r.Register(job, 0)
	}
	return r
}

// Register adds job with the given cadence. Names must be unique.
func (r *Registry) Register(job Job, every time.Duration) error {
	if job == nil {
		return fmt.Errorf("cron: nil job")
	}
	name := job.Name()
	if name == "" {
		return fmt.Errorf("cron: job name required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byName == nil {
		r.byName = make(map[string]*entry)
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("cron: job %q already registered", name)
	}
	e := &entry{job: job, every: every}
	r.entries = append(r.entries, e)
	r.byName[name] = e
	return nil
}

// Jobs returns every job in registration order.
func (r *Registry) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]Job, 0, len(r.entries))
	for _, e := range r.entries {
		jobs = append(jobs, e.job)
	}
	return jobs
}

// Due returns the jobs whose cadence has elapsed at now, in registration
// order. A job that never ran is always due.
func (r *Registry) Due(now time.Time) []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []Job
	for _, e := range r.entries {
		if e.every <= 0 || e.lastRun.IsZero() || !now.Before(e.lastRun.Add(e.every)) {
			due = append(due, e.job)
		}
	}
	return due
}

// MarkRun records an attempt, successful or not, so a failing job waits for
// its next slot instead of retrying every cycle.
func (r *Registry) MarkRun(name string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byName[name]; ok {
		e.lastRun = at
	}
}
