// Package db provides PostgreSQL access for generated email results.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadgpt/emailgend/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// querier is the subset of pgxpool.Pool used by DB.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool  querier
	close func()
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, close: pool.Close}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.close != nil {
		db.close()
	}
}

// EnsureSchema creates the generated_emails table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Register creates the placeholder record a job's result is later written to.
func (db *DB) Register(ctx context.Context, jobID, userID, campaignID string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generated_emails (job_id, user_id, campaign_id, is_done)
		 VALUES ($1, $2, $3, FALSE)`,
		jobID, userID, campaignID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("register job %s: %w", jobID, ErrAlreadyRegistered)
		}
		return fmt.Errorf("failed to register job %s: %w", jobID, err)
	}
	return nil
}

// FindExisting returns the record for jobID, or nil if there is none.
func (db *DB) FindExisting(ctx context.Context, jobID string) (*Record, error) {
	var (
		rec    Record
		emails []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT job_id, user_id, campaign_id, is_done, emails, created_at, updated_at
		 FROM generated_emails WHERE job_id = $1`,
		jobID,
	).Scan(&rec.JobID, &rec.UserID, &rec.CampaignID, &rec.IsDone, &emails, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}

	if len(emails) > 0 && string(emails) != "null" {
		var result types.JobResult
		if err := json.Unmarshal(emails, &result); err != nil {
			return nil, fmt.Errorf("failed to decode emails for job %s: %w", jobID, err)
		}
		rec.Emails = &result
	}
	return &rec, nil
}

// WriteResult stores result on the job's registered record and marks it done
// in the same statement. Writing again overwrites the previous result.
// Returns ErrNotFound if the job was never registered.
func (db *DB) WriteResult(ctx context.Context, jobID string, result types.JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for job %s: %w", jobID, err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE generated_emails
		 SET emails = $2, is_done = TRUE, updated_at = NOW()
		 WHERE job_id = $1`,
		jobID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to write result for job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("write result for job %s: %w", jobID, ErrNotFound)
	}
	return nil
}
