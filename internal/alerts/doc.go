// Package alerts evaluates threshold rules over trailing metric windows and
// tracks the active-alert lifecycle.
//
// A rule breaches when the arithmetic mean of its metric's trailing window
// compares true against the threshold. A breach with no active alert for the
// (rule, metric) pair triggers one; a non-breach with an active alert
// resolves it and moves it to a bounded history. A sustained breach never
// re-triggers and an empty window is never a breach. At most one alert is
// active per pair at any time.
package alerts
