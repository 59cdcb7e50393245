// Package monitor is the engine orchestrator and its public surface.
//
// A Monitor owns the metric store, the health-check runner, the alert
// evaluator, and the resource sampler, and drives them from a single
// background goroutine: health checks and alert evaluation each run on their
// own interval, the sampler runs every tick. Producers call RecordMetric /
// RecordResponseTime / RecordError from any goroutine; readers call
// HealthStatus, PerformanceMetrics, ActiveAlerts, and
// ValidateProductionReadiness concurrently with the loop.
//
// Lifecycle is a cooperative flag: StartMonitoring is idempotent and spawns
// at most one worker, StopMonitoring signals the worker and joins it with a
// bounded timeout. The loop never exits on error — an iteration failure is
// logged and the loop backs off before continuing.
//
// Embedders construct their own Monitor; a process-wide default with an
// explicit init/teardown lifecycle lives in default.go.
package monitor
