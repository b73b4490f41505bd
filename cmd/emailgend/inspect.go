package main

import (
	"encoding/json"

	"github.com/leadgpt/emailgend/internal/observability"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <job-id>",
	Short: "Show the stored record of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the raw record as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.FindExisting(ctx, args[0])
	if err != nil {
		return err
	}

	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRecord(rec)
	return nil
}
