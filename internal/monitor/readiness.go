package monitor

import "time"

// ReadinessReport is the production-readiness verdict: the AND of all
// individual checks plus a recommendation per failing check.
type ReadinessReport struct {
	ProductionReady bool            `json:"production_ready"`
	Timestamp       time.Time       `json:"timestamp"`
	Checks          map[string]bool `json:"checks"`
	Recommendations []string        `json:"recommendations"`
}

// readinessChecks fixes the evaluation and recommendation order.
var readinessChecks = []struct {
	key            string
	recommendation string
}{
	{"health_checks_passing", "Fix failing health checks before deployment"},
	{"performance_acceptable", "Optimize performance to meet response time and throughput requirements"},
	{"error_rates_low", "Investigate and fix sources of errors"},
	{"resource_usage_normal", "Optimize resource usage or increase system capacity"},
	{"dependencies_available", "Ensure all external dependencies are available and configured"},
	{"configuration_valid", "Validate and fix configuration issues"},
	{"monitoring_active", "Start monitoring system before deployment"},
	{"alerts_configured", "Configure appropriate alert rules for production monitoring"},
}

// ValidateProductionReadiness evaluates the eight readiness checks and
// collects a recommendation for each failure. A monitor that passes all
// checks is production ready.
func (m *Monitor) ValidateProductionReadiness() ReadinessReport {
	checks := map[string]bool{
		"health_checks_passing":  m.healthChecksPassing(),
		"performance_acceptable": m.performanceAcceptable(),
		"error_rates_low":        m.errorRatesLow(),
		"resource_usage_normal":  m.resourceUsageNormal(),
		"dependencies_available": m.dependenciesAvailable(),
		"configuration_valid":    m.configurationValid(),
		"monitoring_active":      m.Active(),
		"alerts_configured":      m.evaluator.RuleCount() > 0,
	}

	ready := true
	var recommendations []string
	for _, c := range readinessChecks {
		if !checks[c.key] {
			ready = false
			recommendations = append(recommendations, c.recommendation)
		}
	}
	if len(recommendations) == 0 {
		recommendations = []string{"System appears ready for production deployment"}
	}

	return ReadinessReport{
		ProductionReady: ready,
		Timestamp:       m.now(),
		Checks:          checks,
		Recommendations: recommendations,
	}
}

// healthChecksPassing accepts healthy or warning — only critical blocks
// deployment.
func (m *Monitor) healthChecksPassing() bool {
	switch m.HealthStatus().OverallStatus {
	case "healthy", "warning":
		return true
	}
	return false
}

// performanceAcceptable checks 30-minute response time and error rate.
func (m *Monitor) performanceAcceptable() bool {
	summary := m.PerformanceMetrics(30 * time.Minute).Summary
	if summary.AvgResponseTime > 5.0 {
		return false
	}
	if summary.ErrorRatePercent > 5.0 {
		return false
	}
	return true
}

// errorRatesLow checks the 60-minute error rate against a tighter bound.
func (m *Monitor) errorRatesLow() bool {
	return m.PerformanceMetrics(60*time.Minute).Summary.ErrorRatePercent < 2.0
}

func (m *Monitor) resourceUsageNormal() bool {
	usage := m.systemUsage()
	return usage.CPUPercent < 80 && usage.MemoryPercent < 80 && usage.DiskPercent < 90
}

// dependenciesAvailable would probe databases and upstream APIs; the engine
// has no dependencies of its own, so it reports available.
func (m *Monitor) dependenciesAvailable() bool { return true }

// configurationValid would validate live settings; configuration is checked
// at load time, so it reports valid.
func (m *Monitor) configurationValid() bool { return true }
