package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prodwatch/prodwatch/internal/alerts"
	"github.com/prodwatch/prodwatch/internal/api"
	"github.com/prodwatch/prodwatch/internal/config"
	"github.com/prodwatch/prodwatch/internal/monitor"
	"github.com/prodwatch/prodwatch/internal/sysinfo"
	"github.com/prodwatch/prodwatch/internal/ws"
)

// broadcastInterval paces the WebSocket status stream.
const broadcastInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file; built-in defaults when empty")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("prodwatch starting", "config", *configPath)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	slog.Info("config loaded",
		"retention_hours", cfg.Monitor.RetentionHours,
		"health_check_interval", cfg.Monitor.HealthCheckInterval,
		"alert_check_interval", cfg.Monitor.AlertCheckInterval,
		"http_port", cfg.Monitor.HTTPPort,
		"alert_rules", len(cfg.Monitor.AlertRules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mon := monitor.New(monitor.Options{
		Retention:           cfg.Monitor.Retention(),
		HealthCheckInterval: cfg.Monitor.HealthCheckInterval,
		AlertCheckInterval:  cfg.Monitor.AlertCheckInterval,
		Reader:              &sysinfo.Host{DiskPath: cfg.Monitor.DiskPath},
	})
	for _, r := range cfg.Monitor.Rules() {
		mon.AddAlertRule(r)
	}

	mon.StartMonitoring()
	defer mon.StopMonitoring()

	// Retention reclamation stays alive even when monitoring is stopped while
	// the read surface keeps serving and producers keep recording.
	go mon.Store().Run(ctx)

	// Hot-reload: a valid rewrite replaces the rule set with defaults plus
	// the file's rules.
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				rules := append(alerts.DefaultRules(), updated.Monitor.Rules()...)
				mon.SetAlertRules(rules)
				slog.Info("alert rules reloaded", "count", len(rules))
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	// WebSocket hub — streams status to dashboard clients.
	hub := ws.New(mon, broadcastInterval)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(mon))
	httpMux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Monitor.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Monitor.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("prodwatch shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
