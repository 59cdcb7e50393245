package alerts

import (
	"testing"
	"time"

	"github.com/prodwatch/prodwatch/internal/metrics"
)

func gtRule(metric string, threshold float64) Rule {
	return Rule{
		Name:        "r_" + metric,
		MetricName:  metric,
		Threshold:   threshold,
		Comparison:  CompareGT,
		Duration:    5 * time.Minute,
		Severity:    "warning",
		Description: "test rule",
	}
}

func TestEvaluate_TriggersOnce(t *testing.T) {
	store := metrics.New(time.Hour)
	e := New(store, []Rule{gtRule("m", 5.0)})

	for i := 0; i < 8; i++ {
		store.Record("m", 6.0, nil)
	}

	e.Evaluate()
	if got := e.ActiveCount(); got != 1 {
		t.Fatalf("active after breach: got %d, want 1", got)
	}

	// Sustained breach must not re-trigger.
	e.Evaluate()
	e.Evaluate()
	if got := e.ActiveCount(); got != 1 {
		t.Errorf("active after repeated evaluation: got %d, want 1", got)
	}
	if got := len(e.History()); got != 1 {
		t.Errorf("history length: got %d, want 1", got)
	}
}

func TestEvaluate_ResolvesWhenMeanClears(t *testing.T) {
	store := metrics.New(time.Hour)
	e := New(store, []Rule{gtRule("m", 5.0)})

	for i := 0; i < 8; i++ {
		store.Record("m", 6.0, nil)
	}
	e.Evaluate()
	if e.ActiveCount() != 1 {
		t.Fatal("expected one active alert")
	}

	// Pull the 5-minute mean below the threshold: (8*6 + 10*1) / 18 ≈ 3.2.
	for i := 0; i < 10; i++ {
		store.Record("m", 1.0, nil)
	}
	e.Evaluate()

	if got := e.ActiveCount(); got != 0 {
		t.Fatalf("active after clear: got %d, want 0", got)
	}
	hist := e.History()
	if len(hist) != 1 {
		t.Fatalf("history length: got %d, want 1", len(hist))
	}
	if hist[0].ResolvedAt == nil {
		t.Error("resolved alert missing ResolvedAt")
	}

	// Sustained non-breach must not touch history again.
	e.Evaluate()
	if got := len(e.History()); got != 1 {
		t.Errorf("history after repeated non-breach: got %d, want 1", got)
	}
}

func TestEvaluate_EmptyWindowSkips(t *testing.T) {
	store := metrics.New(time.Hour)
	// lt 100 would breach on any data — but there is none.
	r := gtRule("absent", 5.0)
	r.Comparison = CompareLT
	r.Threshold = 100
	e := New(store, []Rule{r})

	e.Evaluate()
	if got := e.ActiveCount(); got != 0 {
		t.Errorf("active with no data: got %d, want 0", got)
	}
}

func TestEvaluate_Comparisons(t *testing.T) {
	tests := []struct {
		cmp       Comparison
		threshold float64
		breach    bool
	}{
		{CompareGT, 4.0, true},
		{CompareGT, 5.0, false},
		{CompareLT, 6.0, true},
		{CompareLT, 5.0, false},
		{CompareGTE, 5.0, true},
		{CompareLTE, 5.0, true},
		{CompareEQ, 5.0, true},
		{CompareEQ, 4.0, false},
		{Comparison("between"), 5.0, false}, // unknown — never breaches
	}

	for _, tt := range tests {
		t.Run(string(tt.cmp), func(t *testing.T) {
			store := metrics.New(time.Hour)
			store.Record("m", 5.0, nil)

			r := gtRule("m", tt.threshold)
			r.Comparison = tt.cmp
			e := New(store, []Rule{r})
			e.Evaluate()

			got := e.ActiveCount() == 1
			if got != tt.breach {
				t.Errorf("comparison %q vs %v: breach=%v, want %v", tt.cmp, tt.threshold, got, tt.breach)
			}
		})
	}
}

func TestEvaluate_RuleFailureIsolated(t *testing.T) {
	store := metrics.New(time.Hour)
	store.Record("good", 10.0, nil)

	// First rule has an unparseable comparison; the second must still run.
	bad := gtRule("good", 1.0)
	bad.Comparison = Comparison("bogus")
	e := New(store, []Rule{bad, gtRule("good", 5.0)})

	e.Evaluate()
	if got := e.ActiveCount(); got != 1 {
		t.Errorf("active after mixed rules: got %d, want 1", got)
	}
}

func TestEvaluate_RecoversPanicAndContinues(t *testing.T) {
	store := metrics.New(time.Hour)
	store.Record("a", 10.0, nil)
	store.Record("b", 10.0, nil)

	// The clock panics during the first rule's evaluation; the second rule
	// must still run and trigger.
	e := New(store, []Rule{gtRule("a", 5.0), gtRule("b", 5.0)})
	calls := 0
	e.now = func() time.Time {
		calls++
		if calls == 1 {
			panic("clock failure")
		}
		return time.Now()
	}

	e.Evaluate()

	active := e.Active()
	if len(active) != 1 {
		t.Fatalf("active after panicking rule: got %d, want 1", len(active))
	}
	if active[0].MetricName != "b" {
		t.Errorf("surviving rule metric: got %q, want b", active[0].MetricName)
	}
}

func TestEvaluate_NilStorePanicDoesNotEscape(t *testing.T) {
	e := New(nil, []Rule{gtRule("a", 1.0), gtRule("b", 1.0)})

	// Every window read panics on the nil store; Evaluate must still return.
	e.Evaluate()
	if got := e.ActiveCount(); got != 0 {
		t.Errorf("active with nil store: got %d, want 0", got)
	}
}

func TestActive_ReturnsCopiesOldestFirst(t *testing.T) {
	store := metrics.New(time.Hour)
	store.Record("a", 10, nil)
	store.Record("b", 10, nil)

	base := time.Now()
	e := New(store, []Rule{gtRule("a", 5), gtRule("b", 5)})
	step := 0
	e.now = func() time.Time { step++; return base.Add(time.Duration(step) * time.Second) }
	e.Evaluate()

	active := e.Active()
	if len(active) != 2 {
		t.Fatalf("active: got %d, want 2", len(active))
	}
	if !active[0].TriggeredAt.Before(active[1].TriggeredAt) {
		t.Errorf("active not sorted oldest first: %v then %v",
			active[0].TriggeredAt, active[1].TriggeredAt)
	}
}

func TestSetRules_Replaces(t *testing.T) {
	store := metrics.New(time.Hour)
	e := New(store, DefaultRules())
	if got := e.RuleCount(); got != 4 {
		t.Fatalf("default rule count: got %d, want 4", got)
	}

	e.SetRules([]Rule{gtRule("m", 1)})
	if got := e.RuleCount(); got != 1 {
		t.Errorf("rule count after SetRules: got %d, want 1", got)
	}
}

func TestAddRule(t *testing.T) {
	store := metrics.New(time.Hour)
	e := New(store, nil)
	e.AddRule(gtRule("m", 1))
	if got := e.RuleCount(); got != 1 {
		t.Errorf("rule count: got %d, want 1", got)
	}
}

func TestDefaultRules_Parity(t *testing.T) {
	byName := make(map[string]Rule)
	for _, r := range DefaultRules() {
		byName[r.Name] = r
	}

	tests := []struct {
		name      string
		metric    string
		threshold float64
		duration  time.Duration
		severity  string
	}{
		{"high_response_time", "response_time_default", 5.0, 5 * time.Minute, "warning"},
		{"high_error_rate", "error_rate_percent", 5.0, 3 * time.Minute, "critical"},
		{"high_memory_usage", "system_memory_percent", 85.0, 5 * time.Minute, "warning"},
		{"high_cpu_usage", "system_cpu_percent", 90.0, 5 * time.Minute, "warning"},
	}

	for _, tt := range tests {
		r, ok := byName[tt.name]
		if !ok {
			t.Errorf("missing default rule %q", tt.name)
			continue
		}
		if r.MetricName != tt.metric || r.Threshold != tt.threshold ||
			r.Duration != tt.duration || r.Severity != tt.severity || r.Comparison != CompareGT {
			t.Errorf("rule %q: got %+v", tt.name, r)
		}
	}
}
