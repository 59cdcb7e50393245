package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultRetention is how long samples are kept before the sweep
	// removes them.
	DefaultRetention = 24 * time.Hour

	// seriesCapacity caps each series; the oldest sample is evicted when a
	// write would exceed it. Whichever bound is hit first wins, so effective
	// retention can be shorter than the retention horizon under
	// high-frequency writes to one name.
	seriesCapacity = 1000

	// maxSweepInterval caps the Run ticker period for the background sweep.
	maxSweepInterval = time.Minute
)

// Sample is one recorded observation. Immutable once recorded.
type Sample struct {
	Value     float64
	Timestamp time.Time
	Tags      map[string]string
}

// Store holds bounded, time-ordered sample series keyed by metric name.
type Store struct {
	mu        sync.RWMutex
	series    map[string]*series
	retention time.Duration
	now       func() time.Time // injectable for deterministic tests
}

type series struct {
	samples []Sample
}

// New creates a Store with the given retention horizon.
// A non-positive retention falls back to DefaultRetention.
func New(retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		series:    make(map[string]*series),
		retention: retention,
		now:       time.Now,
	}
}

// Record appends a sample to the series for name, creating the series if
// absent. Callers must not modify tags after calling Record.
func (s *Store) Record(name string, value float64, tags map[string]string) {
	smp := Sample{Value: value, Timestamp: s.now(), Tags: tags}

	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.series[name]
	if !ok {
		sr = &series{}
		s.series[name] = sr
	}
	if len(sr.samples) >= seriesCapacity {
		sr.samples = sr.samples[1:]
	}
	sr.samples = append(sr.samples, smp)
}

// Window returns the values for name whose timestamp is within the trailing
// window, oldest first. Samples past the retention horizon are excluded even
// when the requested window is wider.
func (s *Store) Window(name string, window time.Duration) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, ok := s.series[name]
	if !ok {
		return nil
	}

	cutoff := s.cutoff(window)
	var out []float64
	for _, smp := range sr.samples {
		if !smp.Timestamp.Before(cutoff) {
			out = append(out, smp.Value)
		}
	}
	return out
}

// Aggregate summarizes the trailing window for name. The second return is
// false when the window holds no samples.
func (s *Store) Aggregate(name string, window time.Duration) (Aggregate, bool) {
	return aggregate(s.Window(name, window))
}

// Aggregates summarizes every series with at least one in-window sample.
func (s *Store) Aggregates(window time.Duration) map[string]Aggregate {
	s.mu.RLock()
	names := make([]string, 0, len(s.series))
	for name := range s.series {
		names = append(names, name)
	}
	s.mu.RUnlock()

	out := make(map[string]Aggregate, len(names))
	for _, name := range names {
		if agg, ok := s.Aggregate(name, window); ok {
			out[name] = agg
		}
	}
	return out
}

// Latest returns the most recent non-expired sample per series.
func (s *Store) Latest() map[string]Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-s.retention)
	out := make(map[string]Sample, len(s.series))
	for name, sr := range s.series {
		if len(sr.samples) == 0 {
			continue
		}
		last := sr.samples[len(sr.samples)-1]
		if !last.Timestamp.Before(cutoff) {
			out[name] = last
		}
	}
	return out
}

// Count returns the number of series currently held, including ones whose
// samples have all expired but not yet been swept.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series)
}

// Sweep removes samples older than the retention horizon as of now and
// deletes series left empty. It returns the number of samples removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.retention)
	removed := 0
	for name, sr := range s.series {
		i := 0
		for i < len(sr.samples) && sr.samples[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			removed += i
			sr.samples = append([]Sample(nil), sr.samples[i:]...)
		}
		if len(sr.samples) == 0 {
			delete(s.series, name)
		}
	}
	return removed
}

// Run starts the background retention sweep loop. It ticks at half the
// retention horizon, clamped to [1s, 1m], and blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now); n > 0 {
				slog.Debug("metrics: swept expired samples", "count", n)
			}
		}
	}
}

// cutoff returns the effective read cutoff for a trailing window: the later
// of the window start and the retention horizon. Caller holds at least mu.RLock.
func (s *Store) cutoff(window time.Duration) time.Time {
	now := s.now()
	cutoff := now.Add(-window)
	if ret := now.Add(-s.retention); ret.After(cutoff) {
		cutoff = ret
	}
	return cutoff
}
