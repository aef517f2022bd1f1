package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var searchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Search the indicator registry by code or name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	matches := pipe.Store.Search(args[0])
	if len(matches) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no indicators match %q\n", args[0])

		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tTIER\tDATAFLOWS")

	for _, entry := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.Code, entry.Name, entry.Tier, strings.Join(entry.Dataflows, ","))
	}

	return w.Flush()
}
