package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <job-id>",
	Short: "Create the placeholder record for a job",
	Long:  `Create the pending record a job's result is written to. The worker never creates records itself.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var (
	registerUserID     string
	registerCampaignID string
)

func init() {
	registerCmd.Flags().StringVar(&registerUserID, "user", "", "User id")
	registerCmd.Flags().StringVar(&registerCampaignID, "campaign", "", "Campaign id")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Register(ctx, args[0], registerUserID, registerCampaignID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", args[0])
	return nil
}
