package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"costmanager/internal/amqp"
	"costmanager/internal/cli"
	"costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/services"
	"costmanager/internal/settings"
	"costmanager/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting costs-notifier")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is process-local, the notifier will only see its own empty store")
	}
	loc := cli.MustLocation(cfg)
	currency, err := cfg.DisplayCurrency()
	if err != nil {
		logger.Error("Invalid notify currency", log.FieldError, err, log.FieldCurrency, cfg.NotifyCurrency)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	stores := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := stores.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		stores.Cleanup()
		os.Exit(1)
	}

	prefs := settings.New(stores.Settings, cfg.ExchangeURLDefault)
	gateway := rates.NewGateway(prefs, &http.Client{Timeout: cfg.RatesHTTPTimeout}, logger)
	reports := services.NewReportService(stores.Costs, gateway, loc, logger)
	notifier := worker.NewNotifier(reports, currency, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := client.ConsumeCostEvents(ctx, notifier.HandleCostCreated); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down notifier")
	cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) error {
		<-done
		return client.Close()
	})
}
