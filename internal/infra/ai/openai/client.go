package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/ai/prompt"
	"github.com/bryanwahyu/complaint-analyst/internal/observability"
)

const (
	maxTokens = 4096

	// DefaultBaseURL is the Gemini OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.5-flash"

	analyzePrefix = "Failed to analyze complaint due to an API error: "
	extractPrefix = "Failed to extract text from file due to an API error: "
)

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type Client struct {
	*openai.Client
	Model string
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ai.ErrMissingCredential
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}, nil
}

// Analyze asks for the four-field structured analysis of a complaint.
func (c *Client) Analyze(ctx context.Context, complaintText string) (complaints.AnalysisResult, error) {
	req := c.request([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(complaintText)},
	})
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   prompt.SchemaName,
			Schema: prompt.ResponseSchema(),
			Strict: true,
		},
	}

	content, err := c.complete(ctx, req, "analyze")
	if err != nil {
		return complaints.AnalysisResult{}, serviceError(analyzePrefix, err)
	}

	result, err := prompt.ParseAnalysis(content)
	if err != nil {
		return complaints.AnalysisResult{}, &ai.Error{
			Kind:    ai.ErrMalformedResponse,
			Message: analyzePrefix + err.Error(),
			Err:     err,
		}
	}
	return result, nil
}

// ExtractText transcribes an image or PDF. The text is returned verbatim.
func (c *Client) ExtractText(ctx context.Context, doc complaints.Document) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", doc.MediaType, base64.StdEncoding.EncodeToString(doc.Data))
	req := c.request([]openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh},
				},
				{Type: openai.ChatMessagePartTypeText, Text: prompt.ExtractionInstruction},
			},
		},
	})

	content, err := c.complete(ctx, req, "extract")
	if err != nil {
		return "", serviceError(extractPrefix, err)
	}
	return content, nil
}

func (c *Client) request(messages []openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: messages,
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	return req
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest, op string) (string, error) {
	start := time.Now()
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	observability.LoggerFromContext(ctx).Debug("chat completion done",
		"op", op,
		"model", c.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// serviceError keeps the provider's message and tags quota errors.
func serviceError(prefix string, err error) error {
	msg := err.Error()
	var wrapped error = err

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			wrapped = errors.Join(ai.ErrQuotaExceeded, err)
		}
	case errors.As(err, &reqErr):
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			wrapped = errors.Join(ai.ErrQuotaExceeded, err)
		}
	}
	return &ai.Error{
		Kind:    ai.ErrExternalService,
		Message: prefix + msg,
		Err:     wrapped,
	}
}
