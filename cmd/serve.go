package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unicef-drp/unicefdata/pkg/api"
	"github.com/unicef-drp/unicefdata/pkg/observability"
	"github.com/unicef-drp/unicefdata/pkg/scheduler"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and scheduled metadata refresh",
	Long: `The serve command runs the service mode: the REST API over the fetch
pipeline, the periodic metadata refresh and the metrics endpoint.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := configuredLogger(config)
	if err != nil {
		return err
	}

	log.Info("Configuration loaded")

	if config.MetricsAddr != "" {
		observability.StartMetricsServer(config.MetricsAddr)
	}

	pipe, err := buildPipeline(config, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := pipe.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Failed to close pipeline")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiService := api.NewService(&config.API, pipe.Fetcher, pipe.Store, log)
	if err := apiService.Start(ctx); err != nil {
		return err
	}

	refreshService, err := scheduler.NewService(log, &config.Scheduler, pipe.Store)
	if err != nil {
		return err
	}

	go func() {
		if refreshErr := refreshService.Start(ctx); refreshErr != nil && !errors.Is(refreshErr, context.Canceled) {
			log.WithError(refreshErr).Error("Metadata refresh scheduler stopped")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	cancel()

	// Graceful shutdown
	if err := refreshService.Stop(); err != nil {
		return err
	}

	return apiService.Stop()
}
