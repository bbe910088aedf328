package fake

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
)

// Client is a deterministic stand-in for the AI service, for local runs without a key.
type Client struct{}

func NewClient() *Client { return &Client{} }

var departments = []struct {
	keywords   []string
	department string
}{
	{[]string{"garbage", "waste", "bin", "sanitation", "മാലിന്യ"}, "Public Works Department"},
	{[]string{"road", "pothole", "traffic", "bus"}, "Department of Transportation"},
	{[]string{"water", "drain", "sewage", "pipe"}, "Water Authority"},
	{[]string{"hospital", "health", "clinic", "mosquito"}, "Health and Human Services"},
	{[]string{"electric", "power", "streetlight"}, "Electricity Board"},
}

func (c *Client) Analyze(ctx context.Context, complaintText string) (complaints.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return complaints.AnalysisResult{}, err
	}
	lower := strings.ToLower(complaintText)
	dept := "General Administration Department"
	for _, d := range departments {
		for _, k := range d.keywords {
			if strings.Contains(lower, k) {
				dept = d.department
				break
			}
		}
		if dept != "General Administration Department" {
			break
		}
	}

	first := strings.TrimSpace(strings.SplitN(strings.TrimSpace(complaintText), "\n", 2)[0])
	return complaints.AnalysisResult{
		Summary:    []string{first},
		Department: dept,
		Analysis:   fmt.Sprintf("Offline analysis: the complaint was routed to %s by keyword match. No regulation lookup was performed.", dept),
		Solutions: []string{
			"Acknowledge receipt of the complaint to the citizen.",
			fmt.Sprintf("Forward the complaint to the %s for inspection.", dept),
		},
	}, nil
}

func (c *Client) ExtractText(ctx context.Context, doc complaints.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[offline transcription of %s, %d bytes]", doc.Name, len(doc.Data)), nil
}
