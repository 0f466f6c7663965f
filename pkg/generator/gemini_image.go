package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGeminiImageModel = "gemini-2.5-flash-image-preview"

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type GeminiImageProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func NewGeminiImageProvider(apiKey, model string, timeout time.Duration) *GeminiImageProvider {
	if model == "" {
		model = defaultGeminiImageModel
	}
	return &GeminiImageProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint points the client at a different base URL (tests, proxies).
func (p *GeminiImageProvider) WithEndpoint(endpoint string) *GeminiImageProvider {
	p.endpoint = endpoint
	return p
}

func (p *GeminiImageProvider) Name() string {
	return "gemini:" + p.model
}

func (p *GeminiImageProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := req.Prompt
	if req.Style != "" {
		prompt = fmt.Sprintf("%s, in %s style", prompt, req.Style)
	}
	if req.Width > 0 && req.Height > 0 {
		prompt = fmt.Sprintf("%s (%dx%d)", prompt, req.Width, req.Height)
	}

	body, err := json.Marshal(geminiGenerateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: map[string]interface{}{
			"responseModalities": []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s:generateContent", p.endpoint, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-goog-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resBytes))
	}

	var parsed geminiGenerateResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, err
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("prompt blocked: %s", parsed.PromptFeedback.BlockReason)
	}

	for _, c := range parsed.Candidates {
		for _, part := range c.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return &Result{
					OutputURI: fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data),
					MimeType:  part.InlineData.MimeType,
					Model:     p.model,
				}, nil
			}
		}
	}

	return nil, errors.New("no image data in gemini response")
}
