package health

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Status is a health check outcome level.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// DefaultInterval is the re-execution throttle applied by NewRunner when the
// caller passes a non-positive interval.
const DefaultInterval = 30 * time.Second

// Probe is a single boolean condition test.
type Probe interface {
	Healthy() bool
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func() bool

func (f ProbeFunc) Healthy() bool { return f() }

// Check is one registered health check.
type Check struct {
	Name        string
	Probe       Probe
	Critical    bool
	Timeout     time.Duration // advisory; see package docs
	Description string
}

// Result is the last known outcome of one check.
type Result struct {
	Name          string
	Status        Status
	Message       string
	ExecutionTime time.Duration
	Timestamp     time.Time
	Details       map[string]any
}

// Runner executes registered checks and caches one Result per check name.
// Runner is safe for concurrent use.
type Runner struct {
	interval time.Duration

	mu      sync.Mutex
	checks  []Check
	results map[string]Result
	now     func() time.Time // injectable for deterministic tests
}

// NewRunner creates a Runner with the given re-execution throttle interval.
func NewRunner(interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		interval: interval,
		results:  make(map[string]Result),
		now:      time.Now,
	}
}

// Register adds a check. Duplicate names are permitted; the result cache is
// keyed by name, so the check executed last overwrites earlier outcomes.
func (r *Runner) Register(c Check) {
	r.mu.Lock()
	r.checks = append(r.checks, c)
	r.mu.Unlock()
	slog.Info("health: registered check", "name", c.Name, "critical", c.Critical)
}

// RunAll executes every registered check unconditionally and refreshes the
// result cache.
func (r *Runner) RunAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runAllLocked()
}

// Refresh executes the checks only when the cache is empty or any cached
// result is older than the runner interval; otherwise it is a no-op.
func (r *Runner) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.results) == 0 {
		r.runAllLocked()
		return
	}
	cutoff := r.now().Add(-r.interval)
	for _, res := range r.results {
		if res.Timestamp.Before(cutoff) {
			r.runAllLocked()
			return
		}
	}
}

// Results returns a copy of the cached results keyed by check name.
func (r *Runner) Results() map[string]Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Result, len(r.results))
	for name, res := range r.results {
		out[name] = res
	}
	return out
}

// Overall folds the cached results into a single status with the precedence
// critical > warning > healthy.
func (r *Runner) Overall() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	overall := StatusHealthy
	for _, res := range r.results {
		switch res.Status {
		case StatusCritical:
			return StatusCritical
		case StatusWarning:
			overall = StatusWarning
		}
	}
	return overall
}

func (r *Runner) runAllLocked() {
	for _, c := range r.checks {
		start := r.now()
		ok, panicErr := runProbe(c.Probe)
		elapsed := r.now().Sub(start)

		res := Result{
			Name:          c.Name,
			ExecutionTime: elapsed,
			Timestamp:     r.now(),
			Details:       map[string]any{"description": c.Description},
		}

		switch {
		case panicErr != nil:
			// A panicking probe is always severe, regardless of the
			// check's own Critical flag.
			res.Status = StatusCritical
			res.Message = panicErr.Error()
			slog.Error("health: check panicked", "name", c.Name, "err", panicErr)
		case ok:
			res.Status = StatusHealthy
			res.Message = "check passed"
		case c.Critical:
			res.Status = StatusCritical
			res.Message = "check failed"
		default:
			res.Status = StatusWarning
			res.Message = "check failed"
		}

		r.results[c.Name] = res
	}
}

// runProbe invokes p and converts a panic into an error.
func runProbe(p Probe) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("probe panic: %v", v)
		}
	}()
	return p.Healthy(), nil
}
