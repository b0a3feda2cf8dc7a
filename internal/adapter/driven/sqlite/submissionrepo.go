package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

// submittedAtLayout is fixed-width so that text ordering matches time ordering.
const submittedAtLayout = "2006-01-02T15:04:05.000000Z"

// Compile-time interface satisfaction check.
var _ driven.SubmissionArchive = (*SubmissionRepo)(nil)

// SubmissionRepo is the SQLite implementation of the SubmissionArchive port interface.
type SubmissionRepo struct {
	db *DB
}

// NewSubmissionRepo creates a new SubmissionRepo backed by the given DB.
func NewSubmissionRepo(db *DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

// Store inserts one archived submission. Records are immutable; storing the
// same ID twice is an error.
func (r *SubmissionRepo) Store(ctx context.Context, record model.SubmissionRecord) error {
	const query = `
		INSERT INTO submissions (id, title, payload, submission_ip, user_agent, form_version, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		record.ID,
		record.Title,
		record.Payload,
		record.IP,
		record.UserAgent,
		record.FormVersion,
		record.SubmittedAt.UTC().Format(submittedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("store submission %s: %w", record.ID, err)
	}

	return nil
}

// List returns up to limit submissions, newest first. A non-positive limit
// returns an empty slice.
func (r *SubmissionRepo) List(ctx context.Context, limit int) ([]model.SubmissionRecord, error) {
	if limit <= 0 {
		return []model.SubmissionRecord{}, nil
	}

	const query = `
		SELECT id, title, payload, submission_ip, user_agent, form_version, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC, id
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.SubmissionRecord{}
	for rows.Next() {
		var (
			rec         model.SubmissionRecord
			submittedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Payload, &rec.IP, &rec.UserAgent, &rec.FormVersion, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}

		if rec.SubmittedAt, err = parseTime(submittedAt); err != nil {
			return nil, fmt.Errorf("parse submitted_at for %s: %w", rec.ID, err)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return records, nil
}
