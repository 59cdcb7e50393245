package monitor

import (
	"log/slog"
	"strings"
	"time"

	"github.com/prodwatch/prodwatch/internal/health"
	"github.com/prodwatch/prodwatch/internal/metrics"
)

// CheckStatus is one health check's outcome within a HealthStatus.
type CheckStatus struct {
	Status        string         `json:"status"`
	Message       string         `json:"message"`
	ExecutionTime float64        `json:"execution_time"` // seconds
	Details       map[string]any `json:"details"`
}

// HealthStatus is the aggregated health view returned to readers.
type HealthStatus struct {
	OverallStatus  string                 `json:"overall_status"`
	Timestamp      time.Time              `json:"timestamp"`
	Checks         map[string]CheckStatus `json:"checks"`
	CriticalIssues []string               `json:"critical_issues"`
	Warnings       []string               `json:"warnings"`
	ActiveAlerts   int                    `json:"active_alerts"`
}

// Summary is the derived request-level view within a PerformanceReport.
type Summary struct {
	AvgResponseTime  float64 `json:"avg_response_time"`
	ErrorRatePercent float64 `json:"error_rate_percent"`
	TotalRequests    int     `json:"total_requests"`
	TotalErrors      int     `json:"total_errors"`
}

// SystemUsage is the live host resource view within a PerformanceReport.
type SystemUsage struct {
	CPUPercent    float64    `json:"cpu_percent"`
	MemoryPercent float64    `json:"memory_percent"`
	MemoryMB      float64    `json:"memory_mb"`
	DiskPercent   float64    `json:"disk_percent"`
	LoadAverage   [3]float64 `json:"load_average"`
}

// PerformanceReport is the on-demand performance snapshot for one trailing
// window. It is derived from store contents and never persisted.
type PerformanceReport struct {
	WindowMinutes int                          `json:"time_window_minutes"`
	Timestamp     time.Time                    `json:"timestamp"`
	Summary       Summary                      `json:"summary"`
	System        SystemUsage                  `json:"system"`
	Metrics       map[string]metrics.Aggregate `json:"metrics"`
}

// AlertView is one active alert as returned to readers.
type AlertView struct {
	RuleName        string    `json:"rule_name"`
	MetricName      string    `json:"metric_name"`
	CurrentValue    float64   `json:"current_value"`
	Threshold       float64   `json:"threshold"`
	Severity        string    `json:"severity"`
	Message         string    `json:"message"`
	TriggeredAt     time.Time `json:"triggered_at"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// HealthStatus returns the current aggregated health. Cached probe results
// are served when fresh; stale or missing results trigger a probe run first.
func (m *Monitor) HealthStatus() HealthStatus {
	m.runner.Refresh()

	results := m.runner.Results()
	out := HealthStatus{
		OverallStatus:  string(health.StatusHealthy),
		Timestamp:      m.now(),
		Checks:         make(map[string]CheckStatus, len(results)),
		CriticalIssues: []string{},
		Warnings:       []string{},
		ActiveAlerts:   m.evaluator.ActiveCount(),
	}

	for name, res := range results {
		out.Checks[name] = CheckStatus{
			Status:        string(res.Status),
			Message:       res.Message,
			ExecutionTime: res.ExecutionTime.Seconds(),
			Details:       res.Details,
		}
		switch res.Status {
		case health.StatusCritical:
			out.OverallStatus = string(health.StatusCritical)
			out.CriticalIssues = append(out.CriticalIssues, name)
		case health.StatusWarning:
			if out.OverallStatus == string(health.StatusHealthy) {
				out.OverallStatus = string(health.StatusWarning)
			}
			out.Warnings = append(out.Warnings, name)
		}
	}
	return out
}

// PerformanceMetrics computes the performance snapshot for the trailing
// window. Request-level summary fields are derived by name convention:
// series containing "response_time" feed the average, "error" the error
// total, "request" the request total.
func (m *Monitor) PerformanceMetrics(window time.Duration) PerformanceReport {
	aggs := m.store.Aggregates(window)

	var respAvgs []float64
	summary := Summary{}
	for name, agg := range aggs {
		if strings.Contains(name, "response_time") {
			respAvgs = append(respAvgs, agg.Avg)
		}
		if strings.Contains(name, "error") {
			summary.TotalErrors += agg.Count
		}
		if strings.Contains(name, "request") {
			summary.TotalRequests += agg.Count
		}
	}
	summary.AvgResponseTime = metrics.Mean(respAvgs)
	if summary.TotalRequests > 0 {
		summary.ErrorRatePercent = float64(summary.TotalErrors) / float64(summary.TotalRequests) * 100
	}

	return PerformanceReport{
		WindowMinutes: int(window / time.Minute),
		Timestamp:     m.now(),
		Summary:       summary,
		System:        m.systemUsage(),
		Metrics:       aggs,
	}
}

// ActiveAlerts returns every currently active alert, oldest first, with its
// age computed at read time.
func (m *Monitor) ActiveAlerts() []AlertView {
	active := m.evaluator.Active()
	now := m.now()

	out := make([]AlertView, 0, len(active))
	for _, a := range active {
		out = append(out, AlertView{
			RuleName:        a.RuleName,
			MetricName:      a.MetricName,
			CurrentValue:    a.CurrentValue,
			Threshold:       a.Threshold,
			Severity:        a.Severity,
			Message:         a.Message,
			TriggeredAt:     a.TriggeredAt,
			DurationMinutes: now.Sub(a.TriggeredAt).Minutes(),
		})
	}
	return out
}

// systemUsage reads live host usage. Individual read failures are logged and
// leave the corresponding field zero.
func (m *Monitor) systemUsage() SystemUsage {
	var out SystemUsage

	if cpu, err := m.reader.CPUPercent(); err != nil {
		slog.Error("monitor: cpu read failed", "err", err)
	} else {
		out.CPUPercent = cpu
	}
	if mem, err := m.reader.Memory(); err != nil {
		slog.Error("monitor: memory read failed", "err", err)
	} else {
		out.MemoryPercent = mem.UsedPercent
		out.MemoryMB = mem.UsedMB
	}
	if d, err := m.reader.DiskPercent(); err != nil {
		slog.Error("monitor: disk read failed", "err", err)
	} else {
		out.DiskPercent = d
	}
	if la, err := m.reader.LoadAverage(); err == nil {
		out.LoadAverage = la
	}
	return out
}
