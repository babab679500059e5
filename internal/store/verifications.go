package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-verifier/internal/types"
)

// Verification kinds
const (
	KindLinkedIn = "linkedin"
	KindGitHub   = "github"
)

// Verification statuses
const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// ReuseWindow is how long a completed GitHub verification is reused
const ReuseWindow = 24 * time.Hour

// Verification is one persisted verification run
type Verification struct {
	ID          uuid.UUID       `json:"id"`
	ResumeID    string          `json:"resume_id"`
	Kind        string          `json:"kind"`
	Status      string          `json:"status"`
	ProfileURL  string          `json:"profile_url"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// GithubResult decodes the stored result of a GitHub verification
func (v *Verification) GithubResult() (*types.GithubVerificationResult, error) {
	if v.Kind != KindGitHub {
		return nil, fmt.Errorf("verification %s is a %s verification", v.ID, v.Kind)
	}
	if len(v.Result) == 0 {
		return nil, fmt.Errorf("verification %s has no result", v.ID)
	}
	var result types.GithubVerificationResult
	if err := json.Unmarshal(v.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode verification %s: %w", v.ID, err)
	}
	return &result, nil
}

// CreateVerification records a running verification and returns its ID
func (s *Store) CreateVerification(ctx context.Context, resumeID, kind, profileURL string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verifications (id, resume_id, kind, status, profile_url)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, resumeID, kind, StatusRunning, profileURL,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create verification: %w", err)
	}
	return id, nil
}

// CompleteVerification stores the result and marks the verification completed
func (s *Store) CompleteVerification(ctx context.Context, id uuid.UUID, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal verification result: %w", err)
	}
	return s.finish(ctx, id, StatusCompleted, data, nil)
}

// FailVerification marks the verification failed with the error message
func (s *Store) FailVerification(ctx context.Context, id uuid.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(ctx, id, StatusFailed, nil, &msg)
}

func (s *Store) finish(ctx context.Context, id uuid.UUID, status string, result []byte, errMsg *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE verifications SET status = $1, result = $2, error = $3, completed_at = NOW() WHERE id = $4`,
		status, result, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("verification not found: %s", id)
	}
	return nil
}

const verificationColumns = `id, resume_id, kind, status, profile_url, result, error, created_at, completed_at`

func scanVerification(row pgx.Row) (*Verification, error) {
	var v Verification
	if err := row.Scan(&v.ID, &v.ResumeID, &v.Kind, &v.Status, &v.ProfileURL, &v.Result, &v.Error, &v.CreatedAt, &v.CompletedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVerification retrieves a verification by ID. It returns nil when none exists.
func (s *Store) GetVerification(ctx context.Context, id uuid.UUID) (*Verification, error) {
	v, err := scanVerification(s.pool.QueryRow(ctx,
		`SELECT `+verificationColumns+` FROM verifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return v, nil
}

// FindRecentGithubVerification returns the newest completed GitHub verification of the
// résumé and profile created within ReuseWindow, or nil.
func (s *Store) FindRecentGithubVerification(ctx context.Context, resumeID, profileURL string) (*Verification, error) {
	v, err := scanVerification(s.pool.QueryRow(ctx,
		`SELECT `+verificationColumns+` FROM verifications
		 WHERE resume_id = $1 AND kind = $2 AND profile_url = $3 AND status = $4 AND created_at > $5
		 ORDER BY created_at DESC LIMIT 1`,
		resumeID, KindGitHub, profileURL, StatusCompleted, time.Now().Add(-ReuseWindow)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find recent verification: %w", err)
	}
	return v, nil
}

// ListFilters holds optional filters for listing verifications
type ListFilters struct {
	ResumeID string
	Kind     string
	Status   string
	Limit    int
}

// ListVerifications retrieves verifications, newest first
func (s *Store) ListVerifications(ctx context.Context, filters ListFilters) ([]Verification, error) {
	query, args := listQuery(filters)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer rows.Close()

	var out []Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func listQuery(filters ListFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.ResumeID != "" {
		query += fmt.Sprintf(" AND resume_id = $%d", argNum)
		args = append(args, filters.ResumeID)
		argNum++
	}
	if filters.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filters.Kind)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}
