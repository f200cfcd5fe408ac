package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"costmanager/internal/amqp"
	"costmanager/internal/cli"
	apphttp "costmanager/internal/http"
	"costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/services"
	"costmanager/internal/settings"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	loc := cli.MustLocation(cfg)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	stores := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := stores.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	// The broker is optional for the server: without it costs are still
	// stored, only the notifier stays idle.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, cost events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	prefs := settings.New(stores.Settings, cfg.ExchangeURLDefault)
	gateway := rates.NewGateway(prefs, &http.Client{Timeout: cfg.RatesHTTPTimeout}, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Costs:             services.NewCostService(stores.Costs, publisher, loc, logger),
		Reports:           services.NewReportService(stores.Costs, gateway, loc, logger),
		Settings:          prefs,
		Logger:            logger,
		Location:          loc,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:    cfg.TrustedProxies,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting costmanager server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			stores.Cleanup()
			os.Exit(1)
		}
	}

	cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})
	logger.Info("Server stopped gracefully")
}
