package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/leadgpt/emailgend/internal/config"
	"github.com/leadgpt/emailgend/internal/db"
	"github.com/leadgpt/emailgend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <payload.json|->",
	Short: "Enqueue a job payload",
	Long: `Wrap a job payload file in a {jobID, message} envelope and publish it to
the configured queue. Use "-" to read the payload from stdin.

With --register the job's placeholder record is created first, so the worker
can persist the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

var (
	publishJobID    string
	publishRegister bool
)

func init() {
	publishCmd.Flags().StringVar(&publishJobID, "job-id", "", "Job id (default: a new UUID)")
	publishCmd.Flags().BoolVar(&publishRegister, "register", false, "Register the job record before publishing")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	payload, job, err := readPayload(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log)

	jobID := publishJobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	if publishRegister {
		store, err := db.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Register(ctx, jobID, job.UserID, job.CampaignID); err != nil && !errors.Is(err, db.ErrAlreadyRegistered) {
			return err
		}
	}

	var rc redis.UniversalClient
	if cfg.Queue.Driver == config.DriverRedis {
		rc, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
	}

	tr, err := newTransport(cfg, rc, logger)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	if err := tr.Publish(ctx, jobID, payload); err != nil {
		return err
	}

	logger.Info("job published",
		"job_id", jobID,
		"queue", cfg.Queue.Name,
		"organizations", len(job.EmailData))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), jobID)
	return nil
}

// readPayload reads a job payload from a file, or from stdin when path is "-".
// The raw bytes are published unchanged; the decoded form is returned for
// registration and logging.
func readPayload(path string, stdin io.Reader) (json.RawMessage, types.JobPayload, error) {
	var (
		data []byte
		err  error
		job  types.JobPayload
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, job, fmt.Errorf("failed to read payload: %w", err)
	}
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, job, fmt.Errorf("payload is not a valid job: %w", err)
	}
	return json.RawMessage(data), job, nil
}
