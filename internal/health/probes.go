package health

import (
	"time"

	"github.com/prodwatch/prodwatch/internal/metrics"
	"github.com/prodwatch/prodwatch/internal/sysinfo"
)

// Thresholds for the default checks.
const (
	defaultMemoryLimitPct   = 90
	defaultCPULimitPct      = 95
	defaultDiskLimitPct     = 95
	defaultResponseLimitSec = 10.0
	defaultErrorLimitPct    = 10.0

	// trailingWindow is how far back the application-level probes look.
	trailingWindow = 10 * time.Minute

	defaultProbeTimeout = 5 * time.Second
)

// MemoryBelow passes while host memory usage is under Percent.
type MemoryBelow struct {
	Reader  sysinfo.Reader
	Percent float64
}

func (p MemoryBelow) Healthy() bool {
	m, err := p.Reader.Memory()
	return err == nil && m.UsedPercent < p.Percent
}

// CPUBelow passes while host CPU usage is under Percent.
type CPUBelow struct {
	Reader  sysinfo.Reader
	Percent float64
}

func (p CPUBelow) Healthy() bool {
	c, err := p.Reader.CPUPercent()
	return err == nil && c < p.Percent
}

// DiskBelow passes while disk usage is under Percent.
type DiskBelow struct {
	Reader  sysinfo.Reader
	Percent float64
}

func (p DiskBelow) Healthy() bool {
	d, err := p.Reader.DiskPercent()
	return err == nil && d < p.Percent
}

// ResponseTimeBelow passes while the trailing mean of MetricName is under
// Seconds. An empty window passes: missing data is not unhealthy.
type ResponseTimeBelow struct {
	Store      *metrics.Store
	MetricName string
	Window     time.Duration
	Seconds    float64
}

func (p ResponseTimeBelow) Healthy() bool {
	values := p.Store.Window(p.MetricName, p.Window)
	if len(values) == 0 {
		return true
	}
	return metrics.Mean(values) < p.Seconds
}

// ErrorRateBelow passes while trailing errors stay under Percent of trailing
// requests. No requests passes: an idle system is not unhealthy.
type ErrorRateBelow struct {
	Store   *metrics.Store
	Window  time.Duration
	Percent float64
}

func (p ErrorRateBelow) Healthy() bool {
	requests := p.Store.Window("request_total", p.Window)
	if len(requests) == 0 {
		return true
	}
	var totalRequests, totalErrors float64
	for _, v := range requests {
		totalRequests += v
	}
	for _, v := range p.Store.Window("error_total", p.Window) {
		totalErrors += v
	}
	if totalRequests == 0 {
		return true
	}
	return totalErrors/totalRequests*100 < p.Percent
}

// DefaultChecks builds the stock check set: three critical host checks and
// two non-critical application checks over the metric store.
func DefaultChecks(reader sysinfo.Reader, store *metrics.Store) []Check {
	return []Check{
		{
			Name:        "system_memory",
			Probe:       MemoryBelow{Reader: reader, Percent: defaultMemoryLimitPct},
			Critical:    true,
			Timeout:     defaultProbeTimeout,
			Description: "host memory usage",
		},
		{
			Name:        "system_cpu",
			Probe:       CPUBelow{Reader: reader, Percent: defaultCPULimitPct},
			Critical:    true,
			Timeout:     defaultProbeTimeout,
			Description: "host CPU usage",
		},
		{
			Name:        "system_disk",
			Probe:       DiskBelow{Reader: reader, Percent: defaultDiskLimitPct},
			Critical:    true,
			Timeout:     defaultProbeTimeout,
			Description: "host disk usage",
		},
		{
			Name: "response_time",
			Probe: ResponseTimeBelow{
				Store:      store,
				MetricName: "response_time_default",
				Window:     trailingWindow,
				Seconds:    defaultResponseLimitSec,
			},
			Timeout:     defaultProbeTimeout,
			Description: "trailing average response time",
		},
		{
			Name: "error_rate",
			Probe: ErrorRateBelow{
				Store:   store,
				Window:  trailingWindow,
				Percent: defaultErrorLimitPct,
			},
			Timeout:     defaultProbeTimeout,
			Description: "trailing error rate",
		},
	}
}
