package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Inspect and refresh the indicator registry snapshot",
}

//nolint:gochecknoglobals // Cobra commands are typically global
var metadataInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the loaded metadata snapshot",
	RunE:  runMetadataInfo,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var metadataRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the metadata snapshot from disk",
	RunE:  runMetadataRefresh,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
	metadataCmd.AddCommand(metadataInfoCmd)
	metadataCmd.AddCommand(metadataRefreshCmd)
}

func runMetadataInfo(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := configuredLogger(config)
	if err != nil {
		return err
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

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "path:       %s\n", config.Metadata.Path)
	fmt.Fprintf(out, "generated:  %s\n", pipe.Store.GeneratedAt().Format("2006-01-02"))
	fmt.Fprintf(out, "indicators: %d\n", len(pipe.Store.Indicators()))
	fmt.Fprintf(out, "degraded:   %t\n", pipe.Store.Degraded())

	return nil
}

func runMetadataRefresh(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := configuredLogger(config)
	if err != nil {
		return err
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

	if err := pipe.Store.Reload(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "reloaded %d indicators from %s\n",
		len(pipe.Store.Indicators()), config.Metadata.Path)

	return nil
}
