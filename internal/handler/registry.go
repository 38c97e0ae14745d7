// internal/handler/registry.go
package handler

import (
	"sync"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/engine"
)

// Run tracks one in-process campaign run from start to final report.
type Run struct {
	Controller *engine.Controller

	mu     sync.Mutex
	report *engine.Report
	err    error
	done   bool
}

// Complete stores the run outcome.
func (r *Run) Complete(report *engine.Report, err error) {
	r.mu.Lock()
	r.report = report
	r.err = err
	r.done = true
	r.mu.Unlock()
}

// Result returns the final report once the run is done.
func (r *Run) Result() (report *engine.Report, done bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report, r.done, r.err
}

// RunRegistry indexes live and finished runs by run ID.
type RunRegistry struct {
	mu   sync.Mutex
	runs map[string]*Run
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runs: make(map[string]*Run)}
}

func (rr *RunRegistry) Add(ctl *engine.Controller) *Run {
	r := &Run{Controller: ctl}
	rr.mu.Lock()
	rr.runs[ctl.ID()] = r
	rr.mu.Unlock()
	return r
}

func (rr *RunRegistry) Get(id string) (*Run, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	r, ok := rr.runs[id]
	return r, ok
}
