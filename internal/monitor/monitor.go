package monitor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prodwatch/prodwatch/internal/alerts"
	"github.com/prodwatch/prodwatch/internal/health"
	"github.com/prodwatch/prodwatch/internal/metrics"
	"github.com/prodwatch/prodwatch/internal/sampler"
	"github.com/prodwatch/prodwatch/internal/sysinfo"
)

// Default intervals applied by New when an Options field is zero.
const (
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultAlertCheckInterval  = 60 * time.Second

	// loopTick is the pause between loop iterations; loopBackoff replaces it
	// after an iteration-level failure.
	loopTick    = 5 * time.Second
	loopBackoff = 10 * time.Second

	// joinTimeout bounds how long StopMonitoring waits for the worker.
	joinTimeout = 5 * time.Second
)

// Options configures a Monitor. The zero value selects all defaults.
type Options struct {
	// Retention is how long recorded samples are kept (default 24h).
	Retention time.Duration

	// HealthCheckInterval throttles health-check execution (default 30s).
	HealthCheckInterval time.Duration

	// AlertCheckInterval paces alert evaluation (default 60s).
	AlertCheckInterval time.Duration

	// Reader supplies host resource usage (default the local host).
	Reader sysinfo.Reader

	// SkipDefaults leaves the check and rule registries empty, for tests
	// and embedders that register their own.
	SkipDefaults bool
}

// Monitor ties the store, runner, evaluator, and sampler together behind one
// background loop and the public query API.
type Monitor struct {
	store     *metrics.Store
	runner    *health.Runner
	evaluator *alerts.Evaluator
	sampler   *sampler.Sampler
	reader    sysinfo.Reader

	healthInterval time.Duration
	alertInterval  time.Duration
	tick           time.Duration
	backoff        time.Duration

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	done   chan struct{}

	now func() time.Time // injectable for deterministic tests
}

// New builds a Monitor. Unless opts.SkipDefaults is set, the default health
// checks and alert rules are registered.
func New(opts Options) *Monitor {
	if opts.HealthCheckInterval <= 0 {
		opts.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if opts.AlertCheckInterval <= 0 {
		opts.AlertCheckInterval = DefaultAlertCheckInterval
	}
	if opts.Reader == nil {
		opts.Reader = sysinfo.NewHost()
	}

	store := metrics.New(opts.Retention)
	runner := health.NewRunner(opts.HealthCheckInterval)

	var rules []alerts.Rule
	if !opts.SkipDefaults {
		for _, c := range health.DefaultChecks(opts.Reader, store) {
			runner.Register(c)
		}
		rules = alerts.DefaultRules()
	}

	return &Monitor{
		store:          store,
		runner:         runner,
		evaluator:      alerts.New(store, rules),
		sampler:        sampler.New(opts.Reader, store),
		reader:         opts.Reader,
		healthInterval: opts.HealthCheckInterval,
		alertInterval:  opts.AlertCheckInterval,
		tick:           loopTick,
		backoff:        loopBackoff,
		now:            time.Now,
	}
}

// Store exposes the metric store for read-side consumers (export endpoint).
func (m *Monitor) Store() *metrics.Store { return m.store }

// StartMonitoring spawns the background worker. Calling it while already
// active is a logged no-op — there is never more than one worker.
func (m *Monitor) StartMonitoring() {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		slog.Warn("monitor: already active")
		return
	}
	m.active = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go m.loop(stop, done)
	slog.Info("monitor: started")
}

// StopMonitoring clears the active flag and joins the worker, waiting at
// most joinTimeout. The worker is never killed — it observes the flag
// cooperatively. Stopping an inactive monitor is a no-op.
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	select {
	case <-done:
	case <-time.After(joinTimeout):
		slog.Warn("monitor: worker did not exit within join timeout")
	}
	slog.Info("monitor: stopped")
}

// Active reports whether the background worker is running.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// loop is the single background worker. It runs until stop closes. Each
// iteration is guarded: a failure is logged and followed by a longer pause,
// never by loop exit.
func (m *Monitor) loop(stop, done chan struct{}) {
	defer close(done)
	slog.Info("monitor: loop running",
		"health_interval", m.healthInterval,
		"alert_interval", m.alertInterval,
	)

	// Seed so the first iteration runs both immediately.
	lastHealth := m.now().Add(-m.healthInterval)
	lastAlert := m.now().Add(-m.alertInterval)

	for {
		delay := m.tick
		if err := m.iterate(&lastHealth, &lastAlert); err != nil {
			slog.Error("monitor: iteration failed", "err", err)
			delay = m.backoff
		}

		select {
		case <-stop:
			return
		case <-time.After(delay):
		}
	}
}

func (m *Monitor) iterate(lastHealth, lastAlert *time.Time) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()

	now := m.now()
	if now.Sub(*lastHealth) >= m.healthInterval {
		m.runner.RunAll()
		*lastHealth = now
	}
	if now.Sub(*lastAlert) >= m.alertInterval {
		m.evaluator.Evaluate()
		*lastAlert = now
	}
	m.sampler.Sample()
	m.store.Sweep(now)
	return nil
}

// RecordMetric appends a sample under name. It never blocks on I/O and is
// safe to call from any goroutine.
func (m *Monitor) RecordMetric(name string, value float64, tags map[string]string) {
	m.store.Record(name, value, tags)
}

// RecordResponseTime records seconds under "response_time_<endpoint>".
// An empty endpoint records under the default series.
func (m *Monitor) RecordResponseTime(seconds float64, endpoint string) {
	if endpoint == "" {
		endpoint = "default"
	}
	m.RecordMetric("response_time_"+endpoint, seconds, map[string]string{"endpoint": endpoint})
}

// RecordError records a counter-style sample under "error_<kind>" and logs
// the occurrence. The message tag is truncated to 100 characters, never
// splitting a multi-byte rune.
func (m *Monitor) RecordError(kind, message string, context map[string]any) {
	tagMsg := message
	if runes := []rune(tagMsg); len(runes) > 100 {
		tagMsg = string(runes[:100])
	}
	m.RecordMetric("error_"+kind, 1, map[string]string{
		"error_type": kind,
		"message":    tagMsg,
	})
	slog.Error("monitor: error recorded", "kind", kind, "message", message, "context", context)
}

// AddHealthCheck registers an additional health check at runtime.
func (m *Monitor) AddHealthCheck(c health.Check) {
	m.runner.Register(c)
}

// AddAlertRule registers an additional alert rule at runtime.
func (m *Monitor) AddAlertRule(r alerts.Rule) {
	m.evaluator.AddRule(r)
}

// SetAlertRules replaces the alert rule set (config hot-reload path).
func (m *Monitor) SetAlertRules(rules []alerts.Rule) {
	m.evaluator.SetRules(rules)
}
