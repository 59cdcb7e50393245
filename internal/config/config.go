package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prodwatch/prodwatch/internal/alerts"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultRetentionHours      = 24
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultAlertCheckInterval  = 60 * time.Second
	DefaultHTTPPort            = 8080
	DefaultDiskPath            = "/"
)

// Config is the top-level configuration for the prodwatch daemon.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
}

// MonitorConfig holds all engine and daemon settings.
type MonitorConfig struct {
	// RetentionHours is how long recorded samples are kept in memory.
	RetentionHours int `yaml:"retention_hours"`

	// HealthCheckInterval throttles health probe re-execution.
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`

	// AlertCheckInterval paces alert rule evaluation.
	AlertCheckInterval time.Duration `yaml:"alert_check_interval"`

	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// DiskPath is the mount point measured for disk usage.
	DiskPath string `yaml:"disk_path"`

	// AlertRules are appended to the built-in default rules. On hot-reload
	// the combined set replaces the evaluator's rules.
	AlertRules []RuleConfig `yaml:"alert_rules"`
}

// RuleConfig is one alert rule as written in YAML.
type RuleConfig struct {
	Name        string        `yaml:"name"`
	Metric      string        `yaml:"metric"`
	Threshold   float64       `yaml:"threshold"`
	Comparison  string        `yaml:"comparison"` // gt | lt | gte | lte | eq
	Duration    time.Duration `yaml:"duration"`
	Severity    string        `yaml:"severity"` // info | warning | critical
	Description string        `yaml:"description"`
}

// Rule converts the YAML form to an evaluator rule. An empty severity
// defaults to warning.
func (r RuleConfig) Rule() alerts.Rule {
	sev := r.Severity
	if sev == "" {
		sev = "warning"
	}
	return alerts.Rule{
		Name:        r.Name,
		MetricName:  r.Metric,
		Threshold:   r.Threshold,
		Comparison:  alerts.Comparison(r.Comparison),
		Duration:    r.Duration,
		Severity:    sev,
		Description: r.Description,
	}
}

// Rules converts every configured rule.
func (c MonitorConfig) Rules() []alerts.Rule {
	out := make([]alerts.Rule, 0, len(c.AlertRules))
	for _, r := range c.AlertRules {
		out = append(out, r.Rule())
	}
	return out
}

// Retention returns RetentionHours as a duration.
func (c MonitorConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config holding only default values. Used directly when
// the daemon runs without a config file.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			RetentionHours:      DefaultRetentionHours,
			HealthCheckInterval: DefaultHealthCheckInterval,
			AlertCheckInterval:  DefaultAlertCheckInterval,
			HTTPPort:            DefaultHTTPPort,
			DiskPath:            DefaultDiskPath,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	m := cfg.Monitor
	if m.RetentionHours <= 0 {
		return fmt.Errorf("monitor.retention_hours must be positive")
	}
	if m.HealthCheckInterval <= 0 {
		return fmt.Errorf("monitor.health_check_interval must be positive")
	}
	if m.AlertCheckInterval <= 0 {
		return fmt.Errorf("monitor.alert_check_interval must be positive")
	}
	if m.HTTPPort <= 0 || m.HTTPPort > 65535 {
		return fmt.Errorf("monitor.http_port %d out of range", m.HTTPPort)
	}
	for i, r := range m.AlertRules {
		if r.Name == "" {
			return fmt.Errorf("alert_rules[%d]: name is required", i)
		}
		if r.Metric == "" {
			return fmt.Errorf("alert_rules[%d] %q: metric is required", i, r.Name)
		}
		switch r.Comparison {
		case "gt", "lt", "gte", "lte", "eq":
		default:
			return fmt.Errorf("alert_rules[%d] %q: unknown comparison %q", i, r.Name, r.Comparison)
		}
		if r.Duration <= 0 {
			return fmt.Errorf("alert_rules[%d] %q: duration must be positive", i, r.Name)
		}
		switch r.Severity {
		case "info", "warning", "critical", "":
		default:
			return fmt.Errorf("alert_rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
	}
	return nil
}
