package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/complaint-analyst/internal/domain/archive"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS complaint_analyses (
  id BIGINT PRIMARY KEY,
  session_id TEXT NOT NULL,
  complaint_text TEXT NOT NULL,
  department TEXT NOT NULL,
  result_json JSONB NOT NULL,
  document_url TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_complaint_analyses_created ON complaint_analyses (created_at DESC);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO complaint_analyses
  (id, session_id, complaint_text, department, result_json, document_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  department=EXCLUDED.department,
  result_json=EXCLUDED.result_json,
  document_url=EXCLUDED.document_url;
`
	result := a.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := sql.NullString{String: a.DocumentURL, Valid: a.DocumentURL != ""}
	_, err := r.db.ExecContext(ctx, q, a.ID, stringOrDash(a.SessionID), a.ComplaintText, stringOrDash(a.Department), result, doc, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, session_id, complaint_text, department, result_json, document_url, created_at
FROM complaint_analyses
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var a domain.Record
		var doc sql.NullString
		if err := rows.Scan(&a.ID, &a.SessionID, &a.ComplaintText, &a.Department, &a.Result, &doc, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.DocumentURL = doc.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
