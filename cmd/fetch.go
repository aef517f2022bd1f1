package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unicef-drp/unicefdata/pkg/normalizer"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	fetchCountries []string
	fetchStartYear int
	fetchEndYear   int
	fetchLevel     string
	fetchFormat    string
	fetchFilters   []string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var fetchCmd = &cobra.Command{
	Use:   "fetch INDICATOR [INDICATOR...]",
	Short: "Fetch one or more indicators and print the normalized table",
	Long: `Fetch resolves each indicator to its candidate dataflows, retrieves the
first one that returns data and prints the normalized table to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&fetchCountries, "countries", nil, "ISO3 country codes (default all reporting countries)")
	fetchCmd.Flags().IntVar(&fetchStartYear, "start", 0, "first year of the query window")
	fetchCmd.Flags().IntVar(&fetchEndYear, "end", 0, "last year of the query window")
	fetchCmd.Flags().StringVar(&fetchLevel, "level", "standard", "schema level (minimal, standard, extended, full)")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "csv", "output format (csv, json)")
	fetchCmd.Flags().StringArrayVar(&fetchFilters, "filter", nil, "dimension filter, e.g. --filter SEX=F (repeatable)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := configuredLogger(config)
	if err != nil {
		return err
	}

	level := normalizer.Level(fetchLevel)
	if !level.Valid() {
		return fmt.Errorf("unknown schema level %q", fetchLevel)
	}

	if fetchFormat != "csv" && fetchFormat != "json" {
		return fmt.Errorf("unknown output format %q", fetchFormat)
	}

	filters, err := parseFilterFlags(fetchFilters)
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

	specs := make([]*sdmx.QuerySpec, 0, len(args))
	for _, indicator := range args {
		specs = append(specs, &sdmx.QuerySpec{
			Indicator: indicator,
			Countries: fetchCountries,
			StartYear: fetchStartYear,
			EndYear:   fetchEndYear,
			Filters:   filters,
		})
	}

	results := pipe.Fetcher.FetchIndicators(context.Background(), specs, level)

	merged := &normalizer.Table{Level: level}
	failed := 0

	for _, result := range results {
		if result.Err != nil {
			failed++
			log.WithError(result.Err).WithField("indicator", result.Indicator).Error("Fetch failed")

			continue
		}

		merged.Rows = append(merged.Rows, result.Table.Rows...)
	}

	if failed == len(results) {
		return fmt.Errorf("all %d indicators failed", failed)
	}

	if err := writeTable(merged); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d indicators failed", failed, len(results))
	}

	return nil
}

func writeTable(table *normalizer.Table) error {
	if fetchFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(map[string]interface{}{
			"level":   table.Level,
			"columns": table.Columns(),
			"rows":    table.Rows,
		})
	}

	return table.WriteCSV(os.Stdout)
}

// parseFilterFlags converts repeated KEY=V1,V2 flags into a filter map
func parseFilterFlags(flags []string) (map[string][]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	filters := make(map[string][]string, len(flags))

	for _, flag := range flags {
		key, value, ok := strings.Cut(flag, "=")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q, expected DIMENSION=CODE[,CODE]", flag)
		}

		filters[strings.ToUpper(key)] = append(filters[strings.ToUpper(key)], strings.Split(value, ",")...)
	}

	return filters, nil
}
