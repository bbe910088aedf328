package ai

import (
	"context"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
)

// Client is the boundary to the generative-AI service.
type Client interface {
	Analyze(ctx context.Context, complaintText string) (complaints.AnalysisResult, error)
	ExtractText(ctx context.Context, doc complaints.Document) (string, error)
}
