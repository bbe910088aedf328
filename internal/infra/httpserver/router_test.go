package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bryanwahyu/complaint-analyst/internal/application"
	apparchive "github.com/bryanwahyu/complaint-analyst/internal/application/archive"
	appsessions "github.com/bryanwahyu/complaint-analyst/internal/application/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
	domarchive "github.com/bryanwahyu/complaint-analyst/internal/domain/archive"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/ai/fake"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/httpserver"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/id"
)

// stubAI delegates to the offline client unless a hook is set.
type stubAI struct {
	fake.Client
	analyze func(ctx context.Context, text string) (complaints.AnalysisResult, error)
}

func (s *stubAI) Analyze(ctx context.Context, text string) (complaints.AnalysisResult, error) {
	if s.analyze != nil {
		return s.analyze(ctx, text)
	}
	return s.Client.Analyze(ctx, text)
}

type memoryArchive struct {
	records []*domarchive.Record
}

func (m *memoryArchive) Save(_ context.Context, r *domarchive.Record) error {
	m.records = append([]*domarchive.Record{r}, m.records...)
	return nil
}

func (m *memoryArchive) Paginate(_ context.Context, page, pageSize int) ([]*domarchive.Record, error) {
	start := (page - 1) * pageSize
	if start >= len(m.records) {
		return nil, nil
	}
	return m.records[start:min(len(m.records), start+pageSize)], nil
}

type view struct {
	SessionID       string  `json:"session_id"`
	Draft           string  `json:"draft"`
	IsLoading       bool    `json:"is_loading"`
	Error           *string `json:"error"`
	ExtractionError *string `json:"extraction_error"`
	QuotaExceeded   bool    `json:"quota_exceeded"`
	ActiveID        *string `json:"active_id"`
	Active          *struct {
		Department string `json:"department"`
	} `json:"active"`
	History []struct {
		ID      string `json:"id"`
		Preview string `json:"preview"`
	} `json:"history"`
	CanAnalyze bool `json:"can_analyze"`
}

var _ = Describe("Router", func() {
	var (
		client  *stubAI
		store   *memoryArchive
		handler http.Handler
		sid     string
	)

	do := func(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, body)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	decodeView := func(rec *httptest.ResponseRecorder) view {
		var v view
		Expect(json.Unmarshal(rec.Body.Bytes(), &v)).To(Succeed(), rec.Body.String())
		return v
	}

	setDraft := func(text string) view {
		body, _ := json.Marshal(map[string]string{"text": text})
		rec := do(http.MethodPut, "/v1/sessions/"+sid+"/draft", bytes.NewReader(body), "application/json")
		Expect(rec.Code).To(Equal(http.StatusOK))
		return decodeView(rec)
	}

	upload := func(filename, contentType string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write(data)
		Expect(mw.Close()).To(Succeed())
		return do(http.MethodPost, "/v1/sessions/"+sid+"/extract", &buf, mw.FormDataContentType())
	}

	BeforeEach(func() {
		gen, err := id.New(7)
		Expect(err).NotTo(HaveOccurred())

		client = &stubAI{}
		store = &memoryArchive{}
		svc := appsessions.NewService(client, application.SystemClock{}, gen)
		svc.Location = time.UTC
		archiveSvc := apparchive.NewService(store, application.SystemClock{})
		svc.Archive = archiveSvc

		handler = httpserver.NewRouter(httpserver.Options{
			Sessions:       svc,
			Archive:        archiveSvc,
			MaxUploadBytes: 1 << 10,
		})

		rec := do(http.MethodPost, "/v1/sessions", nil, "")
		Expect(rec.Code).To(Equal(http.StatusCreated))
		sid = decodeView(rec).SessionID
	})

	It("starts with an empty view", func() {
		v := decodeView(do(http.MethodGet, "/v1/sessions/"+sid, nil, ""))
		Expect(v.History).To(BeEmpty())
		Expect(v.ActiveID).To(BeNil())
		Expect(v.CanAnalyze).To(BeFalse())
	})

	It("analyzes the draft and lists it in history", func() {
		setDraft("Garbage has not been collected for weeks")
		rec := do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		v := decodeView(rec)
		Expect(v.Error).To(BeNil())
		Expect(v.Active.Department).To(Equal("Public Works Department"))
		Expect(v.History).To(HaveLen(1))
		Expect(*v.ActiveID).To(Equal(v.History[0].ID))

		rec = do(http.MethodGet, "/v1/sessions/"+sid+"/history/"+v.History[0].ID, nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var item complaints.HistoryItem
		Expect(json.Unmarshal(rec.Body.Bytes(), &item)).To(Succeed())
		Expect(item.ComplaintText).To(Equal("Garbage has not been collected for weeks"))
		Expect(item.Timestamp).NotTo(BeEmpty())

		rec = do(http.MethodGet, "/v1/archive?page=1&page_size=5", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var page domarchive.Page
		Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
		Expect(page.Data).To(HaveLen(1))
		Expect(page.PageSize).To(Equal(5))
	})

	It("returns service failures inside a 200 view", func() {
		client.analyze = func(context.Context, string) (complaints.AnalysisResult, error) {
			return complaints.AnalysisResult{}, &ai.Error{
				Kind:    ai.ErrExternalService,
				Message: "Failed to analyze complaint due to an API error: quota",
				Err:     ai.ErrQuotaExceeded,
			}
		}
		setDraft("Streetlight broken")
		rec := do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		v := decodeView(rec)
		Expect(*v.Error).To(Equal("Failed to analyze complaint due to an API error: quota"))
		Expect(v.QuotaExceeded).To(BeTrue())
		Expect(v.History).To(BeEmpty())

		client.analyze = nil
		v = decodeView(do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, ""))
		Expect(v.Error).To(BeNil())
		Expect(v.QuotaExceeded).To(BeFalse())
	})

	It("answers 409 with the view while an analysis is in flight", func() {
		started := make(chan struct{})
		release := make(chan struct{})
		client.analyze = func(context.Context, string) (complaints.AnalysisResult, error) {
			close(started)
			<-release
			return complaints.AnalysisResult{Department: "Water Authority", Summary: []string{}, Solutions: []string{}}, nil
		}
		setDraft("Pipe burst")

		done := make(chan int)
		go func() {
			defer GinkgoRecover()
			done <- do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "").Code
		}()
		Eventually(started).Should(BeClosed())

		rec := do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "")
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(decodeView(rec).IsLoading).To(BeTrue())

		close(release)
		Eventually(done).Should(Receive(Equal(http.StatusOK)))
	})

	It("transcribes an uploaded image into the draft", func() {
		png := []byte("\x89PNG\r\n\x1a\n0000")
		rec := upload("scan.png", "", png)
		Expect(rec.Code).To(Equal(http.StatusOK))
		v := decodeView(rec)
		Expect(v.Draft).To(ContainSubstring("scan.png"))
		Expect(v.ExtractionError).To(BeNil())
	})

	It("rejects unsupported uploads with 415 and the inline message", func() {
		setDraft("keep me")
		rec := upload("notes.txt", "text/plain", []byte("hello"))
		Expect(rec.Code).To(Equal(http.StatusUnsupportedMediaType))
		v := decodeView(rec)
		Expect(*v.ExtractionError).To(Equal(complaints.UnsupportedFileTypeMessage))
		Expect(v.Draft).To(Equal("keep me"))
	})

	It("rejects uploads over the size limit", func() {
		rec := upload("big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 4<<10))
		Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
	})

	It("selects a past analysis without calling the model again", func() {
		setDraft("First: pothole on the main road")
		first := decodeView(do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "")).History[0].ID
		setDraft("Second: water leak")
		do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "")

		calls := 0
		client.analyze = func(context.Context, string) (complaints.AnalysisResult, error) {
			calls++
			return complaints.AnalysisResult{}, errors.New("must not be called")
		}
		rec := do(http.MethodPost, "/v1/sessions/"+sid+"/history/"+first+"/select", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		v := decodeView(rec)
		Expect(*v.ActiveID).To(Equal(first))
		Expect(v.Draft).To(Equal("First: pothole on the main road"))
		Expect(v.Active.Department).To(Equal("Department of Transportation"))
		Expect(calls).To(Equal(0))

		rec = do(http.MethodPost, "/v1/sessions/"+sid+"/history/12345/select", nil, "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("clears input but keeps history", func() {
		setDraft("Mosquito breeding in the drain")
		do(http.MethodPost, "/v1/sessions/"+sid+"/analyze", nil, "")
		v := decodeView(do(http.MethodPost, "/v1/sessions/"+sid+"/clear", nil, ""))
		Expect(v.Draft).To(BeEmpty())
		Expect(v.ActiveID).To(BeNil())
		Expect(v.History).To(HaveLen(1))
	})

	It("loads bundled examples", func() {
		rec := do(http.MethodPost, "/v1/sessions/"+sid+"/examples/ml", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decodeView(rec).Draft).To(ContainSubstring("മുനിസിപ്പൽ"))

		rec = do(http.MethodPost, "/v1/sessions/"+sid+"/examples/fr", nil, "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	DescribeTable("request errors",
		func(method, path, body string, want int) {
			var r io.Reader
			if body != "" {
				r = bytes.NewBufferString(body)
			}
			path = strings.ReplaceAll(path, "{sid}", sid)
			Expect(do(method, path, r, "application/json").Code).To(Equal(want))
		},
		Entry("malformed session id", http.MethodGet, "/v1/sessions/abc", "", http.StatusBadRequest),
		Entry("unknown session", http.MethodGet, "/v1/sessions/3f2504e0-4f89-41d3-9a0c-0305e82c3301", "", http.StatusNotFound),
		Entry("bad draft JSON", http.MethodPut, "/v1/sessions/{sid}/draft", "{", http.StatusBadRequest),
		Entry("missing draft text", http.MethodPut, "/v1/sessions/{sid}/draft", "{}", http.StatusBadRequest),
		Entry("bad history id", http.MethodGet, "/v1/sessions/{sid}/history/x", "", http.StatusBadRequest),
	)

	It("ends sessions", func() {
		Expect(do(http.MethodDelete, "/v1/sessions/"+sid, nil, "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/v1/sessions/"+sid, nil, "").Code).To(Equal(http.StatusNotFound))
	})

	It("serves probes and metrics", func() {
		Expect(do(http.MethodGet, "/health", nil, "").Body.String()).To(Equal("ok"))
		Expect(do(http.MethodGet, "/healthz", nil, "").Code).To(Equal(http.StatusOK))
		rec := do(http.MethodGet, "/metrics", nil, "")
		var m map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &m)).To(Succeed())
		Expect(m).To(HaveKeyWithValue("sessions_open", BeNumerically("==", 1)))
	})
})
