package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	aiopenai "github.com/bryanwahyu/complaint-analyst/internal/infra/ai/openai"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gemini-2.5-flash",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
	return string(b)
}

var _ = Describe("Client", func() {
	var (
		srv      *httptest.Server
		handler  http.HandlerFunc
		lastBody map[string]any
		client   *aiopenai.Client
	)

	BeforeEach(func() {
		lastBody = nil
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))
			b, _ := io.ReadAll(r.Body)
			Expect(json.Unmarshal(b, &lastBody)).To(Succeed())
			handler(w, r)
		}))
		var err error
		client, err = aiopenai.NewClient(aiopenai.Options{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		srv.Close()
	})

	It("requires an API key", func() {
		_, err := aiopenai.NewClient(aiopenai.Options{})
		Expect(err).To(MatchError(ai.ErrMissingCredential))
	})

	It("defaults to gemini-2.5-flash", func() {
		Expect(client.Model).To(Equal(aiopenai.DefaultModel))
	})

	Describe("Analyze", func() {
		It("requests structured output and parses the four fields", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, completion(`{"summary":["Garbage overflow"],"department":"Public Works","analysis":"...","solutions":["Increase pickup frequency"]}`))
			}

			got, err := client.Analyze(context.Background(), "Garbage not collected on Park Street")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Department).To(Equal("Public Works"))
			Expect(got.Solutions).To(Equal([]string{"Increase pickup frequency"}))

			Expect(lastBody["model"]).To(Equal("gemini-2.5-flash"))
			rf := lastBody["response_format"].(map[string]any)
			Expect(rf["type"]).To(Equal("json_schema"))
			js := rf["json_schema"].(map[string]any)
			Expect(js["name"]).To(Equal("complaint_analysis"))
			Expect(js["strict"]).To(BeTrue())

			msgs := lastBody["messages"].([]any)
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].(map[string]any)["content"]).To(ContainSubstring("Garbage not collected on Park Street"))
		})

		It("reports a malformed response", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, completion(`{"summary":["x"],"department":"Roads"}`))
			}
			_, err := client.Analyze(context.Background(), "pothole")
			Expect(err).To(MatchError(ai.ErrMalformedResponse))
			Expect(err.Error()).To(HavePrefix("Failed to analyze complaint due to an API error: "))
			Expect(err.Error()).To(ContainSubstring(`"analysis"`))
		})

		It("passes the service message through", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"error":{"message":"API key not valid","type":"invalid_request_error"}}`)
			}
			_, err := client.Analyze(context.Background(), "pothole")
			Expect(err).To(MatchError(ai.ErrExternalService))
			Expect(err).NotTo(MatchError(ai.ErrQuotaExceeded))
			Expect(err.Error()).To(Equal("Failed to analyze complaint due to an API error: API key not valid"))
		})

		It("tags rate limiting as quota exceeded", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				io.WriteString(w, `{"error":{"message":"Resource has been exhausted","type":"rate_limit"}}`)
			}
			_, err := client.Analyze(context.Background(), "pothole")
			Expect(err).To(MatchError(ai.ErrExternalService))
			Expect(err).To(MatchError(ai.ErrQuotaExceeded))
		})
	})

	Describe("ExtractText", func() {
		It("sends the file as a base64 data URL and returns the text verbatim", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, completion("  Line one\n\nLine two  "))
			}
			text, err := client.ExtractText(context.Background(), complaints.Document{
				Name:      "letter.png",
				MediaType: "image/png",
				Data:      []byte("png-bytes"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("  Line one\n\nLine two  "))

			msgs := lastBody["messages"].([]any)
			parts := msgs[0].(map[string]any)["content"].([]any)
			Expect(parts).To(HaveLen(2))
			img := parts[0].(map[string]any)["image_url"].(map[string]any)
			Expect(img["url"]).To(Equal("data:image/png;base64,cG5nLWJ5dGVz"))
			Expect(parts[1].(map[string]any)["text"]).To(ContainSubstring("Malayalam"))
		})

		It("wraps transport failures", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, `{"error":{"message":"internal","type":"server_error"}}`)
			}
			_, err := client.ExtractText(context.Background(), complaints.Document{MediaType: "application/pdf"})
			Expect(err).To(MatchError(ai.ErrExternalService))
			Expect(err.Error()).To(Equal("Failed to extract text from file due to an API error: internal"))
		})
	})
})
