package sessions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/complaint-analyst/internal/application"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/archive"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	domain "github.com/bryanwahyu/complaint-analyst/internal/domain/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/observability"
)

// TimestampLayout renders "now" the way the browser's toLocaleString did (en-US).
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// ErrUnknownLanguage no bundled example for the requested language.
var ErrUnknownLanguage = errors.New("unknown example language")

// Archiver records finished analyses for auditing. Optional.
type Archiver interface {
	Record(ctx context.Context, sessionID string, item complaints.HistoryItem, documentURL string) error
}

// Recorder counts analysis and extraction outcomes. Optional.
type Recorder interface {
	Analysis(failed bool)
	Extraction(failed bool)
	RejectedUpload()
}

// Service implements the session use-cases: request lifecycle, input and history.
// Service is safe for concurrent use; each session is serialized by its own mutex
// and AI calls run outside of it.
type Service struct {
	AI        ai.Client
	Clock     application.Clock
	IDs       application.IDGenerator
	Location  *time.Location
	Archive   Archiver              // nil disables the audit archive
	Documents archive.DocumentStore // nil disables retention of uploads
	Metrics   Recorder

	mu       sync.RWMutex
	sessions map[domain.ID]*entry
}

type entry struct {
	mu        sync.Mutex
	state     *domain.State
	createdAt time.Time
}

func NewService(client ai.Client, clock application.Clock, ids application.IDGenerator) *Service {
	return &Service{
		AI:       client,
		Clock:    clock,
		IDs:      ids,
		Location: time.Local,
		sessions: make(map[domain.ID]*entry),
	}
}

// Upload is a file handed in for extraction
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

//
// ==== USE CASES ====
//

// Create opens a new session with empty history and no active item.
func (s *Service) Create(ctx context.Context) (*View, error) {
	id := domain.ID(uuid.NewString())
	e := &entry{state: domain.NewState(), createdAt: s.Clock.Now()}

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	observability.LoggerFromContext(ctx).Info("session created", "session_id", id)
	return render(id, e.state), nil
}

// End drops the session and its history.
func (s *Service) End(ctx context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	observability.LoggerFromContext(observability.WithSessionID(ctx, string(id))).Info("session ended",
		"history_len", e.state.History.Len(),
		"age", s.Clock.Now().Sub(e.createdAt).Round(time.Second).String())
	return nil
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) get(id domain.ID) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

// update runs fn under the session lock and renders the resulting state.
func (s *Service) update(id domain.ID, fn func(st *domain.State) error) (*View, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ferr := fn(e.state)
	return render(id, e.state), ferr
}

// View renders the current state.
func (s *Service) View(ctx context.Context, id domain.ID) (*View, error) {
	return s.update(id, func(*domain.State) error { return nil })
}

// SetDraft replaces the draft text unconditionally.
func (s *Service) SetDraft(ctx context.Context, id domain.ID, text string) (*View, error) {
	return s.update(id, func(st *domain.State) error {
		st.SetDraft(text)
		return nil
	})
}

// Analyze runs the request lifecycle: Idle -> Analyzing -> Success|Failed -> Idle.
// A blank draft is silently ignored. Service failures end up in the view, not in err.
func (s *Service) Analyze(ctx context.Context, id domain.ID) (*View, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ctx = observability.WithSessionID(ctx, string(id))
	log := observability.LoggerFromContext(ctx)

	e.mu.Lock()
	submitted, err := e.state.BeginAnalysis()
	documentURL := e.state.DocumentURL
	if err != nil {
		v := render(id, e.state)
		e.mu.Unlock()
		if errors.Is(err, complaints.ErrEmptyInput) {
			log.Debug("analysis skipped, empty draft")
			return v, nil
		}
		return v, err
	}
	e.mu.Unlock()

	log.Info("analyzing complaint", "chars", len([]rune(submitted)))
	start := s.Clock.Now()
	result, aerr := s.AI.Analyze(ctx, submitted)

	e.mu.Lock()
	if aerr != nil {
		e.state.FailAnalysis(displayMessage(aerr))
		e.state.QuotaExceeded = errors.Is(aerr, ai.ErrQuotaExceeded)
		v := render(id, e.state)
		e.mu.Unlock()
		s.recordAnalysis(true)
		log.Error("analysis failed", "error", aerr)
		return v, nil
	}

	now := s.Clock.Now()
	item := complaints.HistoryItem{
		ID:             complaints.HistoryID(s.IDs.Next()),
		ComplaintText:  submitted,
		AnalysisResult: result,
		Timestamp:      s.timestamp(now),
	}
	e.state.CompleteAnalysis(item)
	v := render(id, e.state)
	e.mu.Unlock()
	s.recordAnalysis(false)

	log.Info("analysis completed",
		"history_id", item.ID,
		"department", result.Department,
		"duration_ms", now.Sub(start).Milliseconds())

	if s.Archive != nil {
		if err := s.Archive.Record(context.WithoutCancel(ctx), string(id), item, documentURL); err != nil {
			log.Warn("archive record failed", "history_id", item.ID, "error", err)
		}
	}
	return v, nil
}

// Extract transcribes an uploaded image or PDF into the draft.
// Unsupported types return ErrUnsupportedFileType together with the view carrying
// the inline message; the AI service is not contacted.
func (s *Service) Extract(ctx context.Context, id domain.ID, up Upload) (*View, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ctx = observability.WithSessionID(ctx, string(id))
	log := observability.LoggerFromContext(ctx).With("file", up.Name, "media_type", up.MediaType)

	mediaType := complaints.NormalizeMediaType(up.MediaType)
	e.mu.Lock()
	if err := e.state.BeginExtraction(mediaType); err != nil {
		v := render(id, e.state)
		e.mu.Unlock()
		if errors.Is(err, complaints.ErrUnsupportedFileType) && s.Metrics != nil {
			s.Metrics.RejectedUpload()
		}
		log.Info("extraction refused", "error", err)
		return v, err
	}
	e.mu.Unlock()

	doc := complaints.Document{Name: up.Name, MediaType: mediaType, Data: up.Data}
	text, xerr := s.AI.ExtractText(ctx, doc)

	var documentURL string
	if xerr == nil && s.Documents != nil {
		documentURL = s.retain(ctx, id, doc)
	}

	if s.Metrics != nil {
		s.Metrics.Extraction(xerr != nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if xerr != nil {
		e.state.FailExtraction(xerr.Error())
		e.state.QuotaExceeded = errors.Is(xerr, ai.ErrQuotaExceeded)
		log.Error("extraction failed", "error", xerr)
		return render(id, e.state), nil
	}
	e.state.CompleteExtraction(text, documentURL)
	log.Info("extraction completed", "chars", len([]rune(text)))
	return render(id, e.state), nil
}

func (s *Service) retain(ctx context.Context, id domain.ID, doc complaints.Document) string {
	key := fmt.Sprintf("%s/%s%s", id, uuid.NewString(), filepath.Ext(doc.Name))
	url, err := s.Documents.Put(context.WithoutCancel(ctx), key, doc.MediaType, bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("document retention failed", "key", key, "error", err)
		return ""
	}
	return url
}

// Select makes a past analysis active and restores its text, without re-running it.
// Unknown ids leave the state unchanged and return ErrHistoryNotFound.
func (s *Service) Select(ctx context.Context, id domain.ID, itemID complaints.HistoryID) (*View, error) {
	return s.update(id, func(st *domain.State) error {
		ok, err := st.Select(itemID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrHistoryNotFound
		}
		return nil
	})
}

// Clear resets draft, error and active item. History is kept.
func (s *Service) Clear(ctx context.Context, id domain.ID) (*View, error) {
	return s.update(id, func(st *domain.State) error {
		st.Clear()
		return nil
	})
}

// LoadExample puts one of the bundled sample complaints into the draft.
func (s *Service) LoadExample(ctx context.Context, id domain.ID, lang complaints.Language) (*View, error) {
	return s.update(id, func(st *domain.State) error {
		if st.IsLoading() || st.Extracting {
			return domain.ErrBusy
		}
		if !st.LoadExample(lang) {
			return fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
		}
		return nil
	})
}

// History lists completed analyses, most recent first.
func (s *Service) History(ctx context.Context, id domain.ID) ([]complaints.HistoryItem, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.History.Items(), nil
}

// HistoryItem looks up one completed analysis.
func (s *Service) HistoryItem(ctx context.Context, id domain.ID, itemID complaints.HistoryID) (complaints.HistoryItem, error) {
	e, err := s.get(id)
	if err != nil {
		return complaints.HistoryItem{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.state.History.Get(itemID)
	if !ok {
		return complaints.HistoryItem{}, domain.ErrHistoryNotFound
	}
	return item, nil
}

func (s *Service) recordAnalysis(failed bool) {
	if s.Metrics != nil {
		s.Metrics.Analysis(failed)
	}
}

func (s *Service) timestamp(t time.Time) string {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

// displayMessage folds service and malformed-response failures into one message.
func displayMessage(err error) string {
	var aerr *ai.Error
	if errors.As(err, &aerr) {
		return aerr.Error()
	}
	if err == nil || err.Error() == "" {
		return ai.GenericFailureMessage
	}
	return err.Error()
}
