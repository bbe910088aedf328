package archive

import "time"

// Record is the audit copy of a completed analysis. Sessions never read it back.
type Record struct {
	ID            int64     `json:"id,string"`
	SessionID     string    `json:"session_id"`
	ComplaintText string    `json:"complaint_text"`
	Department    string    `json:"department"`
	Result        string    `json:"result"` // JSON string of the analysis
	DocumentURL   string    `json:"document_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Page of records, newest first
type Page struct {
	Data     []*Record `json:"data"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}
