// Package extraction turns uploaded PDF reports into structured results
// using a document-understanding model.
package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/models"
)

// Extractor reads a PDF report into an extraction
type Extractor interface {
	Extract(ctx context.Context, pdf []byte, fileName string) (*models.Extraction, error)
}

// Doer executes HTTP requests. httpclient.RateLimitedClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// GeminiConfig configures the generateContent call
type GeminiConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	TopK        int
	TopP        float64
}

// GeminiClient extracts reports with the Gemini generateContent API
type GeminiClient struct {
	cfg    GeminiConfig
	client Doer
	logger *logrus.Entry
}

// NewGeminiClient creates a client using the given transport
func NewGeminiClient(cfg GeminiConfig, client Doer, logger *logrus.Logger) *GeminiClient {
	return &GeminiClient{
		cfg:    cfg,
		client: client,
		logger: logger.WithField("component", "gemini"),
	}
}

// Configured reports whether the client has an API key
func (g *GeminiClient) Configured() bool {
	return strings.TrimSpace(g.cfg.APIKey) != ""
}

// Model returns the configured model name
func (g *GeminiClient) Model() string {
	return g.cfg.Model
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type generateRequest struct {
	Contents []struct {
		Parts []requestPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopK             int     `json:"topK"`
	TopP             float64 `json:"topP"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type responsePart struct {
	Text         *string `json:"text"`
	FunctionCall *struct {
		Args json.RawMessage `json:"args"`
	} `json:"functionCall"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []responsePart `json:"parts"`
			Text  string         `json:"text"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract sends the PDF to the model and decodes its answer
func (g *GeminiClient) Extract(ctx context.Context, pdf []byte, fileName string) (extraction *models.Extraction, err error) {
	if !g.Configured() {
		return nil, ErrMissingAPIKey
	}

	start := time.Now()
	defer func() { metrics.RecordExtraction(time.Since(start).Seconds(), err == nil) }()

	body, err := json.Marshal(g.buildRequest(pdf, fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model, url.QueryEscape(g.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Body: string(data)}
	}

	payload, err := responsePayload(data)
	if err != nil {
		return nil, err
	}

	extraction, err = DecodeExtraction(payload)
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"file_name":   fileName,
		"bets":        len(extraction.Bets),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Extraction decoded")
	return extraction, nil
}

func (g *GeminiClient) buildRequest(pdf []byte, fileName string) generateRequest {
	var req generateRequest
	req.Contents = make([]struct {
		Parts []requestPart `json:"parts"`
	}, 1)
	req.Contents[0].Parts = []requestPart{
		{Text: buildPrompt(fileName)},
		{InlineData: &inlineData{MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString(pdf)}},
	}
	req.GenerationConfig = generationConfig{
		Temperature:      g.cfg.Temperature,
		TopK:             g.cfg.TopK,
		TopP:             g.cfg.TopP,
		ResponseMimeType: "application/json",
	}
	return req
}

// responsePayload assembles the model answer from the first candidate:
// concatenated text parts, else function-call arguments, else content text
func responsePayload(data []byte) ([]byte, error) {
	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	content := resp.Candidates[0].Content
	var payload strings.Builder
	var args json.RawMessage
	for _, part := range content.Parts {
		if part.Text != nil {
			payload.WriteString(*part.Text)
		}
		if part.FunctionCall != nil && len(part.FunctionCall.Args) > 0 && args == nil && payload.Len() == 0 {
			args = part.FunctionCall.Args
		}
	}

	switch {
	case payload.Len() > 0:
		return []byte(payload.String()), nil
	case args != nil:
		return args, nil
	case content.Text != "":
		return []byte(content.Text), nil
	default:
		return nil, ErrEmptyResponse
	}
}
