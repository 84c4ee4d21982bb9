package run

import (
	"fmt"
	"time"

	"scorenorm/domain/core"
)

// Status tracks where a normalization run is in its lifecycle
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Step is one entry in the run's operation log
type Step struct {
	Name   string         `json:"name"`
	Detail string         `json:"detail,omitempty"`
	At     core.Timestamp `json:"at"`
}

// Context carries the mutable state of one normalization run: status,
// operation log, error list, and per-run counters. It is created per
// run and passed explicitly to each step; nothing here is process-wide.
type Context struct {
	RunID       core.RunID     `json:"run_id"`
	Source      core.SourceID  `json:"source"`
	Path        string         `json:"path"`
	Status      Status         `json:"status"`
	StartedAt   core.Timestamp `json:"started_at"`
	FinishedAt  core.Timestamp `json:"finished_at,omitempty"`
	Steps       []Step         `json:"steps"`
	Errors      []string       `json:"errors,omitempty"`
	RowsSkipped int            `json:"rows_skipped"`
	CellErrors  int            `json:"cell_errors"`
}

// NewContext starts a run context for one input file
func NewContext(path string) *Context {
	return &Context{
		RunID:     core.NewRunID(),
		Source:    core.NewSourceID(path),
		Path:      path,
		Status:    StatusRunning,
		StartedAt: core.Now(),
		Steps:     make([]Step, 0, 8),
	}
}

// LogStep appends a completed step to the operation log
func (c *Context) LogStep(name string, format string, args ...interface{}) {
	c.Steps = append(c.Steps, Step{
		Name:   name,
		Detail: fmt.Sprintf(format, args...),
		At:     core.Now(),
	})
}

// RecordError appends to the error list without changing status.
// Used for recovered problems that the run survives.
func (c *Context) RecordError(err error) {
	if err == nil {
		return
	}
	c.Errors = append(c.Errors, err.Error())
}

// Complete marks the run as succeeded
func (c *Context) Complete() {
	c.Status = StatusSucceeded
	c.FinishedAt = core.Now()
}

// Fail marks the run as failed with its fatal error
func (c *Context) Fail(err error) {
	c.Status = StatusFailed
	c.FinishedAt = core.Now()
	if err != nil {
		c.Errors = append(c.Errors, err.Error())
	}
}

// Duration returns elapsed wall-clock time. For a run still in
// progress it measures up to now.
func (c *Context) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return core.Now().Sub(c.StartedAt)
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// Succeeded reports whether the run completed without a fatal error
func (c *Context) Succeeded() bool {
	return c.Status == StatusSucceeded
}
