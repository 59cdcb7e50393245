// Package metrics is the in-memory time-series store at the core of the
// monitoring engine.
//
// Each metric name owns a bounded, time-ordered series of samples: at most
// 1000 samples per series (oldest evicted first) and nothing older than the
// retention horizon (default 24h). Series are created lazily on first write
// and removed by the sweep once every sample has aged out.
//
// Aggregate reproduces the upstream percentile behavior for compatibility:
// p95 falls back to max when a window holds 20 samples or fewer, and above
// that uses the 19th of 20 exclusive-method quantile cut points. A streaming
// estimator (e.g. t-digest) would be the better choice for a system without
// that compatibility constraint.
//
// Store is safe for concurrent use. The retention sweep runs off the write
// path — from Run's ticker and from the monitor loop — and read paths clamp
// their cutoff to the retention horizon, so reads never observe over-age
// samples between sweeps.
package metrics
