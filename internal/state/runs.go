package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResultStatus is the lifecycle of one plan node's write.
type ResultStatus string

const (
	ResultPending ResultStatus = "pending"
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

// ParseResultStatus converts a string into a known ResultStatus.
func ParseResultStatus(value string) (ResultStatus, bool) {
	normalized := ResultStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ResultPending, ResultSuccess, ResultFailed:
		return normalized, true
	default:
		return "", false
	}
}

// Run is one export run with its snapshotted plan.
type Run struct {
	ID          string
	Fingerprint string
	ListingType string
	Format      string
	PlanJSON    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WriteResult is the persisted outcome for one plan node, keyed by the
// node's stable plan key.
type WriteResult struct {
	Key                string
	Filename           string
	Status             ResultStatus
	ErrorMessage       string
	Warning            string
	Verified           bool
	VerificationReason string
}

// CreateRun inserts a new export run record.
func (s *Store) CreateRun(ctx context.Context, run *Run) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("run id cannot be empty")
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	timestamp := now.Format(time.RFC3339Nano)
	if err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (id, fingerprint, listing_type, format, plan_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Fingerprint, run.ListingType, run.Format, run.PlanJSON, timestamp, timestamp,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently created run, or nil when none exist.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, listing_type, format, plan_json, created_at, updated_at
         FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest-first, capped at limit (0 means all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, fingerprint, listing_type, format, plan_json, created_at, updated_at
              FROM runs ORDER BY created_at DESC, id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// TouchRun bumps a run's updated_at timestamp.
func (s *Store) TouchRun(ctx context.Context, runID string) error {
	return s.execWithRetry(ctx,
		"UPDATE runs SET updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339Nano), runID)
}

// UpsertResult inserts or replaces the write result for one plan node.
func (s *Store) UpsertResult(ctx context.Context, runID string, result WriteResult) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id cannot be empty")
	}
	if strings.TrimSpace(result.Key) == "" {
		return errors.New("result key cannot be empty")
	}
	verified := 0
	if result.Verified {
		verified = 1
	}
	return s.execWithRetry(
		ctx,
		`INSERT INTO write_results (run_id, node_key, filename, status, error_message, warning, verified, verification_reason, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, node_key) DO UPDATE SET
             filename = excluded.filename,
             status = excluded.status,
             error_message = excluded.error_message,
             warning = excluded.warning,
             verified = excluded.verified,
             verification_reason = excluded.verification_reason,
             updated_at = excluded.updated_at`,
		runID, result.Key, result.Filename, string(result.Status),
		nullableString(result.ErrorMessage), nullableString(result.Warning),
		verified, nullableString(result.VerificationReason),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
}

// ResultsForRun returns all write results for a run keyed by node key.
func (s *Store) ResultsForRun(ctx context.Context, runID string) (map[string]WriteResult, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_key, filename, status, error_message, warning, verified, verification_reason
         FROM write_results WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("results for run: %w", err)
	}
	defer rows.Close()

	results := make(map[string]WriteResult)
	for rows.Next() {
		var (
			r                                    WriteResult
			status                               string
			errMsg, warning, verificationReason sql.NullString
			verified                             int
		)
		if err := rows.Scan(&r.Key, &r.Filename, &status, &errMsg, &warning, &verified, &verificationReason); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if parsed, ok := ParseResultStatus(status); ok {
			r.Status = parsed
		} else {
			r.Status = ResultFailed
		}
		r.ErrorMessage = errMsg.String
		r.Warning = warning.String
		r.Verified = verified != 0
		r.VerificationReason = verificationReason.String
		results[r.Key] = r
	}
	return results, rows.Err()
}

// ClearRuns deletes all run history and write results.
func (s *Store) ClearRuns(ctx context.Context) error {
	return s.execWithRetry(ctx, "DELETE FROM runs")
}

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var (
		run                  Run
		createdAt, updatedAt string
	)
	if err := row.Scan(&run.ID, &run.Fingerprint, &run.ListingType, &run.Format, &run.PlanJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		run.UpdatedAt = parsed
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
