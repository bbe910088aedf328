package sessions

import (
	"errors"
	"strings"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
)

var (
	// ErrBusy a request arrived while an analysis or extraction is in flight.
	ErrBusy = errors.New("session is busy")

	ErrSessionNotFound = errors.New("session not found")
	ErrHistoryNotFound = errors.New("history item not found")
)

// ID of a session, one per browser tab
type ID string

// Phase of the request lifecycle
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
)

// Outcome of the last finished analysis. Success and Failed settle back to Idle at once.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// State is the whole session state. All transitions are pure; callers serialize access.
type State struct {
	History      *History
	ActiveID     *complaints.HistoryID
	Draft        string
	Phase        Phase
	LastOutcome  Outcome
	Error        *string
	Extracting   bool
	ExtractError *string

	// QuotaExceeded is set when the last failure was the provider's rate limit.
	QuotaExceeded bool

	// DocumentURL is set when the draft came from a retained upload.
	DocumentURL string
}

func NewState() *State {
	return &State{History: NewHistory(), Phase: PhaseIdle}
}

func (s *State) IsLoading() bool { return s.Phase == PhaseAnalyzing }

func (s *State) busy() bool { return s.IsLoading() || s.Extracting }

// Active returns the item shown in the result pane, if any.
func (s *State) Active() (complaints.HistoryItem, bool) {
	if s.ActiveID == nil {
		return complaints.HistoryItem{}, false
	}
	return s.History.Get(*s.ActiveID)
}

// SetDraft replaces the draft unconditionally.
func (s *State) SetDraft(text string) {
	s.Draft = text
	s.DocumentURL = ""
}

// BeginAnalysis moves Idle -> Analyzing and returns the exact text submitted.
// A blank draft leaves the state untouched.
func (s *State) BeginAnalysis() (string, error) {
	if strings.TrimSpace(s.Draft) == "" {
		return "", complaints.ErrEmptyInput
	}
	if s.busy() {
		return "", ErrBusy
	}
	s.Phase = PhaseAnalyzing
	s.LastOutcome = OutcomeNone
	s.QuotaExceeded = false
	s.Error = nil
	s.ActiveID = nil
	return s.Draft, nil
}

// CompleteAnalysis moves Analyzing -> Success -> Idle; item becomes the active one.
func (s *State) CompleteAnalysis(item complaints.HistoryItem) {
	s.Phase = PhaseIdle
	if !s.History.Prepend(item) {
		s.fail("duplicate history id")
		return
	}
	id := item.ID
	s.ActiveID = &id
	s.Error = nil
	s.LastOutcome = OutcomeSuccess
}

// FailAnalysis moves Analyzing -> Failed -> Idle. History is untouched.
func (s *State) FailAnalysis(message string) {
	s.Phase = PhaseIdle
	s.fail(message)
}

func (s *State) fail(message string) {
	if strings.TrimSpace(message) == "" {
		message = ai.GenericFailureMessage
	}
	s.Error = &message
	s.ActiveID = nil
	s.LastOutcome = OutcomeFailed
}

// BeginExtraction validates the media type and enters the extracting sub-state.
// Unsupported types record the inline error and never reach the AI service.
func (s *State) BeginExtraction(mediaType string) error {
	if s.busy() {
		return ErrBusy
	}
	if !complaints.IsSupportedMediaType(mediaType) {
		msg := complaints.UnsupportedFileTypeMessage
		s.ExtractError = &msg
		return complaints.ErrUnsupportedFileType
	}
	s.Extracting = true
	s.QuotaExceeded = false
	s.ExtractError = nil
	s.Draft = ""
	s.DocumentURL = ""
	return nil
}

// CompleteExtraction replaces the draft with the transcription, verbatim.
func (s *State) CompleteExtraction(text, documentURL string) {
	s.Extracting = false
	s.Draft = text
	s.DocumentURL = documentURL
}

// FailExtraction records the message; the draft stays empty.
func (s *State) FailExtraction(message string) {
	s.Extracting = false
	if strings.TrimSpace(message) == "" {
		message = "An unknown error occurred during text extraction."
	}
	s.ExtractError = &message
}

// Select restores a past analysis without re-running it.
// Returns false, with the state unchanged, when id is not in history.
func (s *State) Select(id complaints.HistoryID) (bool, error) {
	if s.busy() {
		return false, ErrBusy
	}
	item, ok := s.History.Get(id)
	if !ok {
		return false, nil
	}
	s.ActiveID = &item.ID
	s.Draft = item.ComplaintText
	s.DocumentURL = ""
	s.Error = nil
	return true, nil
}

// Clear resets the input and result pane. History is kept.
func (s *State) Clear() {
	s.ActiveID = nil
	s.Error = nil
	s.ExtractError = nil
	s.QuotaExceeded = false
	s.Draft = ""
	s.DocumentURL = ""
	s.LastOutcome = OutcomeNone
}

// LoadExample puts a bundled sample complaint in the draft.
func (s *State) LoadExample(lang complaints.Language) bool {
	text, ok := complaints.Example(lang)
	if !ok {
		return false
	}
	s.Draft = text
	s.DocumentURL = ""
	s.ExtractError = nil
	return true
}
