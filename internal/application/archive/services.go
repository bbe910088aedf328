package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/complaint-analyst/internal/application"
	domain "github.com/bryanwahyu/complaint-analyst/internal/domain/archive"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
)

// Service keeps the audit trail of completed analyses
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

func NewService(repo domain.Repository, clock application.Clock) *Service {
	return &Service{Repo: repo, Clock: clock}
}

// Record saves one completed analysis. Implements the sessions Archiver port.
func (s *Service) Record(ctx context.Context, sessionID string, item complaints.HistoryItem, documentURL string) error {
	b, err := json.Marshal(item.AnalysisResult)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	return s.Repo.Save(ctx, &domain.Record{
		ID:            int64(item.ID),
		SessionID:     sessionID,
		ComplaintText: item.ComplaintText,
		Department:    item.AnalysisResult.Department,
		Result:        string(b),
		DocumentURL:   documentURL,
		CreatedAt:     s.Clock.Now().UTC(),
	})
}

// ListAnalyses returns one page of archived analyses, newest first.
func (s *Service) ListAnalyses(ctx context.Context, page, pageSize int) (*domain.Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	list, err := s.Repo.Paginate(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Record{}
	}
	return &domain.Page{Data: list, Page: page, PageSize: pageSize}, nil
}
