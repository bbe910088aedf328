package complaints

import "strconv"

// HistoryID identifier type for a completed analysis.
// Encoded as a JSON string, snowflake values overflow a JS number.
type HistoryID int64

func (id HistoryID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id HistoryID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *HistoryID) UnmarshalText(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*id = HistoryID(v)
	return nil
}

// ParseHistoryID parses the decimal form used in URLs.
func ParseHistoryID(s string) (HistoryID, error) {
	var id HistoryID
	err := id.UnmarshalText([]byte(s))
	return id, err
}

// AnalysisResult value object, the four fields produced by the model
type AnalysisResult struct {
	Summary    []string `json:"summary"`
	Department string   `json:"department"`
	Analysis   string   `json:"analysis"`
	Solutions  []string `json:"solutions"`
}

// HistoryItem is one completed analysis. Never mutated after creation.
type HistoryItem struct {
	ID             HistoryID      `json:"id"`
	ComplaintText  string         `json:"complaintText"`
	AnalysisResult AnalysisResult `json:"analysisResult"`
	Timestamp      string         `json:"timestamp"`
}

// Document is an uploaded scan waiting for transcription
type Document struct {
	Name      string
	MediaType string
	Data      []byte
}
