package alerts

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prodwatch/prodwatch/internal/metrics"
)

// maxHistoryLen bounds the resolved-alert history buffer.
const maxHistoryLen = 1000

// Comparison selects how a windowed mean is tested against a threshold.
type Comparison string

const (
	CompareGT  Comparison = "gt"
	CompareLT  Comparison = "lt"
	CompareGTE Comparison = "gte"
	CompareLTE Comparison = "lte"
	CompareEQ  Comparison = "eq"
)

// Rule is a static threshold + comparison + trailing-window definition.
type Rule struct {
	Name        string
	MetricName  string
	Threshold   float64
	Comparison  Comparison
	Duration    time.Duration
	Severity    string // info | warning | critical
	Description string
}

// Alert is one triggered instance of a rule, active until the breach clears.
type Alert struct {
	RuleName     string
	MetricName   string
	CurrentValue float64
	Threshold    float64
	Severity     string
	Message      string
	TriggeredAt  time.Time
	ResolvedAt   *time.Time
}

// Evaluator holds the rule registry and the active-alert state.
// Evaluator is safe for concurrent use.
type Evaluator struct {
	store *metrics.Store

	mu      sync.Mutex
	rules   []Rule
	active  map[string]*Alert // key: ruleName_metricName
	history []*Alert
	now     func() time.Time // injectable for deterministic tests
}

// New creates an Evaluator reading windows from store. An Evaluator with no
// rules is valid — Evaluate becomes a no-op.
func New(store *metrics.Store, rules []Rule) *Evaluator {
	return &Evaluator{
		store:  store,
		rules:  append([]Rule(nil), rules...),
		active: make(map[string]*Alert),
		now:    time.Now,
	}
}

// AddRule registers an additional rule.
func (e *Evaluator) AddRule(r Rule) {
	e.mu.Lock()
	e.rules = append(e.rules, r)
	e.mu.Unlock()
	slog.Info("alerts: added rule", "name", r.Name, "metric", r.MetricName)
}

// SetRules replaces the registered rule set. Active alerts are untouched;
// alerts for removed rules resolve only when their metric windows clear.
func (e *Evaluator) SetRules(rules []Rule) {
	e.mu.Lock()
	e.rules = append([]Rule(nil), rules...)
	e.mu.Unlock()
	slog.Info("alerts: rule set replaced", "count", len(rules))
}

// Rules returns a copy of the registered rules.
func (e *Evaluator) Rules() []Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Rule(nil), e.rules...)
}

// RuleCount returns the number of registered rules.
func (e *Evaluator) RuleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rules)
}

// Evaluate runs one pass over all rules. A rule whose metric has no samples
// in-window is skipped — absence of data is not a breach. A failure inside
// one rule's evaluation is logged and does not affect the remaining rules.
func (e *Evaluator) Evaluate() {
	for _, rule := range e.Rules() {
		e.evaluateRule(rule)
	}
}

func (e *Evaluator) evaluateRule(rule Rule) {
	defer func() {
		if v := recover(); v != nil {
			slog.Error("alerts: rule evaluation failed", "rule", rule.Name, "err", v)
		}
	}()

	values := e.store.Window(rule.MetricName, rule.Duration)
	if len(values) == 0 {
		return
	}
	current := metrics.Mean(values)
	breached := compare(current, rule.Comparison, rule.Threshold)
	key := rule.Name + "_" + rule.MetricName
	now := e.now()

	e.mu.Lock()

	if breached {
		if _, ok := e.active[key]; ok {
			e.mu.Unlock()
			return // sustained breach — never re-trigger
		}
		a := &Alert{
			RuleName:     rule.Name,
			MetricName:   rule.MetricName,
			CurrentValue: current,
			Threshold:    rule.Threshold,
			Severity:     rule.Severity,
			Message: fmt.Sprintf("%s: %g %s %g",
				rule.Description, current, rule.Comparison, rule.Threshold),
			TriggeredAt: now,
		}
		e.active[key] = a
		e.appendHistoryLocked(a)
		e.mu.Unlock()

		slog.Warn("alerts: triggered",
			"rule", rule.Name,
			"metric", rule.MetricName,
			"value", current,
			"severity", rule.Severity,
		)
		return
	}

	a, ok := e.active[key]
	if !ok {
		e.mu.Unlock()
		return // sustained non-breach — nothing to resolve
	}
	resolved := now
	a.ResolvedAt = &resolved
	delete(e.active, key)
	e.mu.Unlock()

	slog.Info("alerts: resolved", "rule", rule.Name, "metric", rule.MetricName)
}

// Active returns copies of all currently active alerts, oldest first.
func (e *Evaluator) Active() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alert, 0, len(e.active))
	for _, a := range e.active {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggeredAt.Before(out[j].TriggeredAt)
	})
	return out
}

// ActiveCount returns the number of currently active alerts.
func (e *Evaluator) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// History returns copies of triggered alerts, oldest first, including ones
// still active. The buffer holds at most maxHistoryLen entries.
func (e *Evaluator) History() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alert, 0, len(e.history))
	for _, a := range e.history {
		out = append(out, *a)
	}
	return out
}

func (e *Evaluator) appendHistoryLocked(a *Alert) {
	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
}

// compare applies a Comparison to a value and threshold. Unknown comparisons
// are logged and never breach.
func compare(value float64, cmp Comparison, threshold float64) bool {
	switch cmp {
	case CompareGT:
		return value > threshold
	case CompareLT:
		return value < threshold
	case CompareGTE:
		return value >= threshold
	case CompareLTE:
		return value <= threshold
	case CompareEQ:
		return value == threshold
	default:
		slog.Warn("alerts: unknown comparison", "comparison", string(cmp))
		return false
	}
}

// DefaultRules is the stock rule set registered at startup.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "high_response_time",
			MetricName:  "response_time_default",
			Threshold:   5.0,
			Comparison:  CompareGT,
			Duration:    5 * time.Minute,
			Severity:    "warning",
			Description: "Average response time is too high",
		},
		{
			Name:        "high_error_rate",
			MetricName:  "error_rate_percent",
			Threshold:   5.0,
			Comparison:  CompareGT,
			Duration:    3 * time.Minute,
			Severity:    "critical",
			Description: "Error rate is too high",
		},
		{
			Name:        "high_memory_usage",
			MetricName:  "system_memory_percent",
			Threshold:   85.0,
			Comparison:  CompareGT,
			Duration:    5 * time.Minute,
			Severity:    "warning",
			Description: "System memory usage is high",
		},
		{
			Name:        "high_cpu_usage",
			MetricName:  "system_cpu_percent",
			Threshold:   90.0,
			Comparison:  CompareGT,
			Duration:    5 * time.Minute,
			Severity:    "warning",
			Description: "System CPU usage is high",
		},
	}
}
