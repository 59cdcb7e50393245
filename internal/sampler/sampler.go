// Package sampler records host-level resource metrics into the metric store,
// one pass per monitor tick.
package sampler

import (
	"log/slog"

	"github.com/prodwatch/prodwatch/internal/metrics"
	"github.com/prodwatch/prodwatch/internal/sysinfo"
)

// Metric names written by Sample. Fixed so health checks, alert rules, and
// dashboards can reference them.
const (
	MetricCPUPercent       = "system_cpu_percent"
	MetricMemoryPercent    = "system_memory_percent"
	MetricMemoryMB         = "system_memory_mb"
	MetricDiskPercent      = "system_disk_percent"
	MetricNetworkBytesSent = "system_network_bytes_sent"
	MetricNetworkBytesRecv = "system_network_bytes_recv"
)

// Sampler collects one round of host metrics per call.
type Sampler struct {
	reader sysinfo.Reader
	store  *metrics.Store
}

// New creates a Sampler reading from reader and writing into store.
func New(reader sysinfo.Reader, store *metrics.Store) *Sampler {
	return &Sampler{reader: reader, store: store}
}

// Sample records one pass of CPU, memory, disk, and network metrics. Each
// reading fails independently: a failed read is logged and skipped, the rest
// of the pass continues. Network counters are best-effort and logged at
// debug only — many container runtimes do not expose them.
func (s *Sampler) Sample() {
	if cpu, err := s.reader.CPUPercent(); err != nil {
		slog.Error("sampler: cpu read failed", "err", err)
	} else {
		s.store.Record(MetricCPUPercent, cpu, nil)
	}

	if m, err := s.reader.Memory(); err != nil {
		slog.Error("sampler: memory read failed", "err", err)
	} else {
		s.store.Record(MetricMemoryPercent, m.UsedPercent, nil)
		s.store.Record(MetricMemoryMB, m.UsedMB, nil)
	}

	if d, err := s.reader.DiskPercent(); err != nil {
		slog.Error("sampler: disk read failed", "err", err)
	} else {
		s.store.Record(MetricDiskPercent, d, nil)
	}

	if n, err := s.reader.Network(); err != nil {
		slog.Debug("sampler: network counters unavailable", "err", err)
	} else {
		s.store.Record(MetricNetworkBytesSent, float64(n.BytesSent), nil)
		s.store.Record(MetricNetworkBytesRecv, float64(n.BytesRecv), nil)
	}
}
