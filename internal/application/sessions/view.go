package sessions

import (
	"strings"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	domain "github.com/bryanwahyu/complaint-analyst/internal/domain/sessions"
)

const previewRunes = 100

// View is what the browser renders. It carries no behavior.
type View struct {
	SessionID       domain.ID                  `json:"session_id"`
	Draft           string                     `json:"draft"`
	Phase           domain.Phase               `json:"phase"`
	LastOutcome     domain.Outcome             `json:"last_outcome,omitempty"`
	IsLoading       bool                       `json:"is_loading"`
	IsExtracting    bool                       `json:"is_extracting"`
	Error           *string                    `json:"error"`
	ExtractionError *string                    `json:"extraction_error"`
	QuotaExceeded   bool                       `json:"quota_exceeded"`
	ActiveID        *complaints.HistoryID      `json:"active_id"`
	Active          *complaints.AnalysisResult `json:"active"`
	History         []HistoryEntry             `json:"history"`
	CanAnalyze      bool                       `json:"can_analyze"`
}

// HistoryEntry is one row of the history panel
type HistoryEntry struct {
	ID         complaints.HistoryID `json:"id"`
	Timestamp  string               `json:"timestamp"`
	Preview    string               `json:"preview"`
	Department string               `json:"department"`
	Active     bool                 `json:"active"`
}

func render(id domain.ID, st *domain.State) *View {
	v := &View{
		SessionID:       id,
		Draft:           st.Draft,
		Phase:           st.Phase,
		LastOutcome:     st.LastOutcome,
		IsLoading:       st.IsLoading(),
		IsExtracting:    st.Extracting,
		Error:           copyString(st.Error),
		ExtractionError: copyString(st.ExtractError),
		QuotaExceeded:   st.QuotaExceeded,
		History:         make([]HistoryEntry, 0, st.History.Len()),
	}
	v.CanAnalyze = !v.IsLoading && !v.IsExtracting && strings.TrimSpace(st.Draft) != ""

	if item, ok := st.Active(); ok {
		hid := item.ID
		result := item.AnalysisResult
		v.ActiveID = &hid
		v.Active = &result
	}
	for _, item := range st.History.Items() {
		v.History = append(v.History, HistoryEntry{
			ID:         item.ID,
			Timestamp:  item.Timestamp,
			Preview:    preview(item.ComplaintText),
			Department: item.AnalysisResult.Department,
			Active:     v.ActiveID != nil && *v.ActiveID == item.ID,
		})
	}
	return v
}

func preview(text string) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= previewRunes {
		return string(r)
	}
	return string(r[:previewRunes]) + "..."
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
