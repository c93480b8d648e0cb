package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crowlands/internal/domain"
)

const (
	geminiDefaultTimeout = 60 * time.Second
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-2.0-flash-preview-image-generation"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator asks a multimodal Gemini model for a single inline image.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiImageRequest struct {
	Contents         []geminiImageContent   `json:"contents"`
	GenerationConfig geminiImageGenerConfig `json:"generationConfig"`
}

type geminiImageContent struct {
	Role  string            `json:"role"`
	Parts []geminiImagePart `json:"parts"`
}

type geminiImagePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiImageGenerConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type geminiImageResponse struct {
	Candidates []struct {
		Content geminiImageContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiGenerator{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	payload := geminiImageRequest{
		Contents: []geminiImageContent{{
			Role:  "user",
			Parts: []geminiImagePart{{Text: req.Prompt}},
		}},
		GenerationConfig: geminiImageGenerConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("gemini image: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("gemini image: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini image: %v: %w", err, domain.ErrProviderFailure)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini image: status %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	var out geminiImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini image: decode response: %w", domain.ErrProviderFailure)
	}
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return &Asset{Base64: part.InlineData.Data, MIME: mime}, nil
			}
		}
	}
	return nil, fmt.Errorf("gemini image: no inline image in response: %w", domain.ErrProviderFailure)
}

var _ Generator = (*GeminiGenerator)(nil)
