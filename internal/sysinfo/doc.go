// Package sysinfo reads host-level resource usage (CPU, memory, disk,
// network, load) behind a small Reader interface so the sampler and the
// default health probes can be tested against fakes.
//
// Host is the production implementation, backed by gopsutil. Network
// counters are best-effort: some platforms and containers do not expose
// them, and callers are expected to tolerate the error.
package sysinfo
