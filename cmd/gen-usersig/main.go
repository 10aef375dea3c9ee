package main

import (
	"context"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/rtc-usersig/internal/config"
	"github.com/spec-kit/rtc-usersig/internal/monitor"
	"github.com/spec-kit/rtc-usersig/internal/observability"
	"github.com/spec-kit/rtc-usersig/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	monitors := monitor.Multi{monitor.NewZapMonitor(logger)}
	if cfg.Monitor.Redis {
		redis := persistence.NewRedis(context.Background(), cfg.Redis, logger)
		defer redis.Close()
		monitors = append(monitors, monitor.NewRedisMonitor(redis.Client, monitor.RedisOptions{
			Prefix:        cfg.Monitor.KeyPrefix,
			MaxLogEntries: cfg.Monitor.MaxLogEntries,
			Timeout:       cfg.Monitor.Timeout(),
		}, logger))
	}

	reg := prometheus.NewRegistry()
	code := run(os.Args[1:], cfg, cliDeps{
		logger:      logger,
		monitor:     monitors,
		metrics:     observability.NewMetrics(reg),
		gatherer:    reg,
		interactive: isTerminal(os.Stderr),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	})
	if code != 0 {
		logger.Sync() //nolint:errcheck
		os.Exit(code)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
