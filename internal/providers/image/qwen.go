package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crowlands/internal/domain"
)

type QwenOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// QwenGenerator drives DashScope's multimodal generation endpoint. Unlike
// Gemini, the API answers with a hosted image URL, so the generator fetches
// and inlines the bytes to keep the Asset contract uniform.
type QwenGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewQwenGenerator(opts QwenOptions) (*QwenGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("qwen api key is required")
	}
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	model := opts.Model
	if model == "" {
		model = "qwen-image"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &QwenGenerator{apiKey: opts.APIKey, model: model, baseURL: base, client: client}, nil
}

type qwenMessage struct {
	Role    string           `json:"role"`
	Content []map[string]any `json:"content"`
}

type qwenPayload struct {
	Model string `json:"model"`
	Input struct {
		Messages []qwenMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Watermark bool `json:"watermark"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []map[string]string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *QwenGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	var payload qwenPayload
	payload.Model = g.model
	payload.Input.Messages = []qwenMessage{{
		Role:    "user",
		Content: []map[string]any{{"text": req.Prompt}},
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode qwen request: %w", err)
	}

	endpoint := g.baseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("build qwen request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call qwen: %w", domain.ErrProviderFailure)
	}
	defer resp.Body.Close()

	var out qwenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode qwen response: %w", domain.ErrProviderFailure)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Message != "" {
			return nil, fmt.Errorf("qwen %s (%s): %w", out.Message, out.Code, domain.ErrProviderFailure)
		}
		return nil, fmt.Errorf("qwen status %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	if len(out.Output.Choices) == 0 || len(out.Output.Choices[0].Message.Content) == 0 {
		return nil, fmt.Errorf("qwen returned no image: %w", domain.ErrProviderFailure)
	}
	imageURL := strings.TrimSpace(out.Output.Choices[0].Message.Content[0]["image"])
	if imageURL == "" {
		return nil, fmt.Errorf("qwen returned no image url: %w", domain.ErrProviderFailure)
	}

	return g.fetch(ctx, imageURL)
}

// fetch downloads the hosted result and inlines it. DashScope URLs expire
// after a day, so the bytes have to be captured immediately.
func (g *QwenGenerator) fetch(ctx context.Context, imageURL string) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image fetch: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch qwen image: %w", domain.ErrProviderFailure)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch qwen image status %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read qwen image: %w", domain.ErrProviderFailure)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return &Asset{Base64: base64.StdEncoding.EncodeToString(data), MIME: mime}, nil
}
