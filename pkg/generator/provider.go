// Package generator holds the clients for the external content-generation
// providers. Callers only care about success, the output reference and the
// error text; how a provider produces its output is its own business.
package generator

import (
	"context"
	"errors"
	"fmt"
)

var ErrProviderNotConfigured = errors.New("generation provider not configured")

type Request struct {
	Prompt string

	Width   int
	Height  int
	Quality int
	Style   string

	Duration       int
	AspectRatio    string
	ReferenceImage string

	BPM         int
	Genre       string
	Temperature *float64
}

type Result struct {
	OutputURI string
	MimeType  string
	Model     string
}

type Provider interface {
	Generate(ctx context.Context, req Request) (*Result, error)
	Name() string
}

type unconfigured struct {
	kind string
}

// NewUnconfigured returns a provider that fails every call. It keeps the
// generation flow wired when no credentials are present for a type.
func NewUnconfigured(kind string) Provider {
	return &unconfigured{kind: kind}
}

func (u *unconfigured) Generate(context.Context, Request) (*Result, error) {
	return nil, fmt.Errorf("%s: %w", u.kind, ErrProviderNotConfigured)
}

func (u *unconfigured) Name() string {
	return "unconfigured-" + u.kind
}
