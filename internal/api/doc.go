// Package api is the HTTP read surface of the prodwatch daemon.
//
// All endpoints are read-only views over the monitor: health, performance,
// active alerts, and production readiness as JSON, plus /api/v1/export which
// renders the latest sample of every live series in the Prometheus text
// exposition format for scraping.
package api
