package metrics

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestRecordAndWindow(t *testing.T) {
	st := New(time.Hour)
	st.Record("latency", 1.5, nil)
	st.Record("latency", 2.5, map[string]string{"endpoint": "search"})

	got := st.Window("latency", 5*time.Minute)
	if len(got) != 2 {
		t.Fatalf("Window: got %d values, want 2", len(got))
	}
	if got[0] != 1.5 || got[1] != 2.5 {
		t.Errorf("Window: got %v, want [1.5 2.5]", got)
	}
}

func TestWindow_MissingSeries(t *testing.T) {
	st := New(time.Hour)
	if got := st.Window("nope", time.Minute); got != nil {
		t.Errorf("Window on missing series: got %v, want nil", got)
	}
}

func TestWindow_ExcludesOldSamples(t *testing.T) {
	base := time.Now()
	st := New(time.Hour)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Record("m", 1, nil)
	st.now = fixedClock(base.Add(-2 * time.Minute))
	st.Record("m", 2, nil)
	st.now = fixedClock(base)

	got := st.Window("m", 5*time.Minute)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Window(5m): got %v, want [2]", got)
	}
}

func TestWindow_NeverExceedsRetention(t *testing.T) {
	base := time.Now()
	st := New(time.Hour)

	st.now = fixedClock(base.Add(-2 * time.Hour))
	st.Record("m", 1, nil)
	st.now = fixedClock(base.Add(-30 * time.Minute))
	st.Record("m", 2, nil)
	st.now = fixedClock(base)

	// Window wider than retention must still exclude the expired sample,
	// whether or not the sweep has run yet.
	got := st.Window("m", 24*time.Hour)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Window(24h) with 1h retention: got %v, want [2]", got)
	}
}

func TestCapacityEviction(t *testing.T) {
	st := New(time.Hour)
	for i := 0; i < seriesCapacity+5; i++ {
		st.Record("m", float64(i), nil)
	}

	got := st.Window("m", time.Hour)
	if len(got) != seriesCapacity {
		t.Fatalf("series length: got %d, want %d", len(got), seriesCapacity)
	}
	if got[0] != 5 {
		t.Errorf("oldest surviving value: got %v, want 5", got[0])
	}
	if got[len(got)-1] != float64(seriesCapacity+4) {
		t.Errorf("newest value: got %v, want %d", got[len(got)-1], seriesCapacity+4)
	}
}

func TestAggregate_Basic(t *testing.T) {
	st := New(time.Hour)
	for _, v := range []float64{4, 2, 6, 8} {
		st.Record("m", v, nil)
	}

	agg, ok := st.Aggregate("m", time.Minute)
	if !ok {
		t.Fatal("Aggregate: expected ok")
	}
	if agg.Count != 4 {
		t.Errorf("Count: got %d, want 4", agg.Count)
	}
	if agg.Avg != 5 {
		t.Errorf("Avg: got %v, want 5", agg.Avg)
	}
	if agg.Min != 2 || agg.Max != 8 {
		t.Errorf("Min/Max: got %v/%v, want 2/8", agg.Min, agg.Max)
	}
}

func TestAggregate_Empty(t *testing.T) {
	st := New(time.Hour)
	if _, ok := st.Aggregate("m", time.Minute); ok {
		t.Error("Aggregate on empty store: expected !ok")
	}
}

func TestP95_FallsBackToMaxAtTwentyOrFewer(t *testing.T) {
	st := New(time.Hour)
	for i := 1; i <= 20; i++ {
		st.Record("m", float64(i), nil)
	}

	agg, _ := st.Aggregate("m", time.Minute)
	if agg.P95 != 20 {
		t.Errorf("P95 with 20 samples: got %v, want max 20", agg.P95)
	}
}

func TestP95_QuantileAboveTwenty(t *testing.T) {
	st := New(time.Hour)
	// 1..100: cut point 19 of 20 sits at position 19*101/20 = 95.95, i.e.
	// between the 95th and 96th sorted values.
	for i := 1; i <= 100; i++ {
		st.Record("m", float64(i), nil)
	}

	agg, _ := st.Aggregate("m", time.Minute)
	want := 95.95
	if diff := agg.P95 - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("P95 over 1..100: got %v, want %v", agg.P95, want)
	}
}

func TestP95_UnsortedInput(t *testing.T) {
	st := New(time.Hour)
	// 21 samples, descending: p95 still interpolates over sorted order.
	for i := 21; i >= 1; i-- {
		st.Record("m", float64(i), nil)
	}

	agg, _ := st.Aggregate("m", time.Minute)
	// position 19*22/20 = 20.9 → between sorted[19]=20 and sorted[20]=21.
	want := (20*float64(2) + 21*float64(18)) / 20
	if diff := agg.P95 - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("P95 over shuffled 1..21: got %v, want %v", agg.P95, want)
	}
}

func TestSweep_RemovesExpiredAndEmptySeries(t *testing.T) {
	base := time.Now()
	st := New(time.Hour)

	st.now = fixedClock(base.Add(-2 * time.Hour))
	st.Record("old", 1, nil)
	st.Record("mixed", 1, nil)
	st.now = fixedClock(base)
	st.Record("mixed", 2, nil)

	removed := st.Sweep(base)
	if removed != 2 {
		t.Errorf("Sweep removed: got %d, want 2", removed)
	}
	if st.Count() != 1 {
		t.Errorf("series after sweep: got %d, want 1", st.Count())
	}
	if got := st.Window("mixed", 24*time.Hour); len(got) != 1 || got[0] != 2 {
		t.Errorf("surviving samples: got %v, want [2]", got)
	}
}

func TestAggregates_SkipsEmptyWindows(t *testing.T) {
	base := time.Now()
	st := New(24 * time.Hour)

	st.now = fixedClock(base.Add(-time.Hour))
	st.Record("stale", 1, nil)
	st.now = fixedClock(base)
	st.Record("fresh", 2, nil)

	aggs := st.Aggregates(5 * time.Minute)
	if len(aggs) != 1 {
		t.Fatalf("Aggregates: got %d series, want 1", len(aggs))
	}
	if _, ok := aggs["fresh"]; !ok {
		t.Error("Aggregates: missing series \"fresh\"")
	}
}

func TestLatest(t *testing.T) {
	st := New(time.Hour)
	st.Record("m", 1, nil)
	st.Record("m", 7, map[string]string{"a": "b"})

	latest := st.Latest()
	s, ok := latest["m"]
	if !ok {
		t.Fatal("Latest: missing series")
	}
	if s.Value != 7 {
		t.Errorf("Latest value: got %v, want 7", s.Value)
	}
	if s.Tags["a"] != "b" {
		t.Errorf("Latest tags: got %v", s.Tags)
	}
}

func TestRun_SweepsExpiredSeries(t *testing.T) {
	st := New(100 * time.Millisecond)
	st.Record("short-lived", 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		st.Run(ctx)
	}()

	// The ticker interval clamps to 1s; the sample expires well before the
	// first tick, so one tick empties the store.
	deadline := time.Now().Add(3 * time.Second)
	for st.Count() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("Run never swept the expired series")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestConcurrentRecordAndRead(t *testing.T) {
	st := New(time.Hour)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				st.Record("shared", float64(i), nil)
				st.Window("shared", time.Minute)
				st.Aggregate("shared", time.Minute)
			}
		}(g)
	}
	wg.Wait()

	if got := len(st.Window("shared", time.Hour)); got != seriesCapacity {
		t.Errorf("after concurrent writes: got %d samples, want %d", got, seriesCapacity)
	}
}
