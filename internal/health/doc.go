// Package health runs registered probes and caches their outcomes.
//
// A probe is a cheap boolean test of one subsystem's condition. A probe
// returning false maps to critical or warning depending on the check's
// Critical flag; a probe that panics always maps to critical. One result is
// retained per check name and re-execution is throttled by the runner's
// interval, so reads between runs serve cached results.
//
// Probes are expected to be fast and non-blocking by contract. The Timeout
// field on a check is carried as metadata and surfaced in results; it is not
// enforced.
package health
