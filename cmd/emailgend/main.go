// Package main provides the entry point for the emailgend outreach worker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "emailgend",
	Short: "Outreach email generation worker",
	Long:  "emailgend consumes email generation jobs from a queue, enriches each target, generates a three-email sequence per target and stores the result under the job id.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
