package mysql

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

// EnsureSchema creates the archive table when missing
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS complaint_analyses (
  id BIGINT NOT NULL PRIMARY KEY,
  session_id VARCHAR(64) NOT NULL,
  complaint_text MEDIUMTEXT NOT NULL,
  department VARCHAR(255) NOT NULL,
  result_json JSON NOT NULL,
  document_url VARCHAR(1024) NULL,
  created_at DATETIME(3) NOT NULL,
  INDEX idx_complaint_analyses_created (created_at)
) DEFAULT CHARSET=utf8mb4;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO complaint_analyses
  (id, session_id, complaint_text, department, result_json, document_url, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  department=VALUES(department), result_json=VALUES(result_json), document_url=VALUES(document_url);
`
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		stringOrDash(a.SessionID),
		a.ComplaintText,
		stringOrDash(a.Department),
		result,
		nullIfEmpty(a.DocumentURL),
		createdAt,
	)
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
LIMIT ? OFFSET ?;
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
