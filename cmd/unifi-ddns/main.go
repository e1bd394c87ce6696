package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/buildinfo"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/dns"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/ipsource"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/logging"
	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/utils"
)

func main() {
	// Init a logger used for initialization only, to report initialization errors
	initLogger := slog.Default().
		With(slog.String("app", buildinfo.AppName)).
		With(slog.String("version", buildinfo.AppVersion))

	// Load config
	err := config.LoadConfig()
	if err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			ce.LogFatal(initLogger)
		} else {
			utils.FatalError(initLogger, "Failed to load configuration", err)
		}
		return
	}
	cfg := config.Get()

	// Get the logger and set it as default
	log, _, err := logging.GetLogger(context.Background(), cfg)
	if err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			ce.LogFatal(initLogger)
		} else {
			utils.FatalError(initLogger, "Failed to create logger", err)
		}
		return
	}
	slog.SetDefault(log)

	// Validate the configuration
	// No network call is made before this point
	err = cfg.Validate(log)
	if err != nil {
		utils.FatalError(log, "Invalid configuration", err)
		return
	}

	log.Info("Starting unifi-ddns", "build", buildinfo.BuildDescription, "source", cfg.Source)

	// Get a context that is canceled when the application receives a termination signal
	// We store the logger in the context too
	ctx := utils.LogToContext(context.Background(), log)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init metrics
	metrics, metricsShutdownFn, err := appmetrics.NewAppMetrics(ctx)
	if err != nil {
		utils.FatalError(log, "Failed to init metrics", err)
		return
	}

	// Initialize the IP source and the DNS updater
	source, err := ipsource.New(cfg, metrics)
	if err != nil {
		utils.FatalError(log, "Failed to init IP source", err)
		return
	}

	updater, err := dns.NewUpdater(ctx, cfg, metrics)
	if err != nil {
		utils.FatalError(log, "Failed to init DNS updater", err)
		return
	}

	// Perform a single run
	runErr := runOnce(ctx, source, updater, cfg.Route53.RecordName, metrics)

	// Flush metrics before exiting
	// We give this a timeout of 5s
	if metricsShutdownFn != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = metricsShutdownFn(shutdownCtx)
		shutdownCancel()
		if err != nil {
			log.Error("Error shutting down metrics", slog.Any("error", err))
		}
	}

	if runErr != nil {
		utils.FatalError(log, "Run failed", runErr)
		return
	}
}
