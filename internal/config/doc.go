// Package config loads the daemon configuration from the `monitor:` section
// of a YAML file.
//
// Config fields:
//   - RetentionHours        — metric sample retention (default 24)
//   - HealthCheckInterval   — health probe throttle (default 30s)
//   - AlertCheckInterval    — alert evaluation pace (default 60s)
//   - HTTPPort              — REST API and WebSocket port (default 8080)
//   - DiskPath              — mount point measured for disk usage (default /)
//   - AlertRules            — rules appended to the built-in defaults
//
// Load(path) applies defaults before unmarshalling, then validates. Watch
// re-loads the file on write and hands the new config to a callback; an
// invalid rewrite is logged and the previous config stays active.
package config
