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

// RelayProvider forwards a request to an HTTP endpoint that fronts a
// long-running provider (video, music) and answers with a JSON envelope:
//
//	{"success": true, "output_uri": "...", "mime_type": "...", "model": "..."}
//	{"success": false, "error": "..."}
type RelayProvider struct {
	name     string
	endpoint string
	apiKey   string
	client   *http.Client
}

type relayRequest struct {
	Prompt         string   `json:"prompt"`
	Duration       int      `json:"duration,omitempty"`
	AspectRatio    string   `json:"aspect_ratio,omitempty"`
	ReferenceImage string   `json:"reference_image,omitempty"`
	Style          string   `json:"style,omitempty"`
	BPM            int      `json:"bpm,omitempty"`
	Genre          string   `json:"genre,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

type relayResponse struct {
	Success   bool   `json:"success"`
	OutputURI string `json:"output_uri"`
	MimeType  string `json:"mime_type"`
	Model     string `json:"model"`
	Error     string `json:"error"`
}

func NewRelayProvider(name, endpoint, apiKey string, timeout time.Duration) *RelayProvider {
	return &RelayProvider{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *RelayProvider) Name() string {
	return p.name
}

func (p *RelayProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(relayRequest{
		Prompt:         req.Prompt,
		Duration:       req.Duration,
		AspectRatio:    req.AspectRatio,
		ReferenceImage: req.ReferenceImage,
		Style:          req.Style,
		BPM:            req.BPM,
		Genre:          req.Genre,
		Temperature:    req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	res, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var parsed relayResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, fmt.Errorf("error from %s response, code %d, body %s", p.name, res.StatusCode, string(resBytes))
	}
	if res.StatusCode != http.StatusOK || !parsed.Success {
		if parsed.Error != "" {
			return nil, errors.New(parsed.Error)
		}
		return nil, fmt.Errorf("error from %s response, code %d", p.name, res.StatusCode)
	}
	if parsed.OutputURI == "" {
		return nil, fmt.Errorf("%s returned no output", p.name)
	}

	return &Result{
		OutputURI: parsed.OutputURI,
		MimeType:  parsed.MimeType,
		Model:     parsed.Model,
	}, nil
}
