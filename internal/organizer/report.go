package organizer

import (
	"time"
)

// Status is the outcome of one file.
type Status string

const (
	StatusMoved   Status = "moved"
	StatusPlanned Status = "planned"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one file.
type Outcome struct {
	File        string
	Category    string
	Label       string
	Destination string
	Status      Status
	Renamed     bool
	Err         error
	// Kind is the failure taxonomy name, empty on success.
	Kind string
}

// Report summarizes one pass over a root directory.
type Report struct {
	RunID    string
	Root     string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Moved counts files that were moved or, in a dry run, planned.
func (r *Report) Moved() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusMoved || o.Status == StatusPlanned {
			n++
		}
	}
	return n
}

// Failed counts files whose pipeline failed.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Duration returns how long the pass took.
func (r *Report) Duration() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
