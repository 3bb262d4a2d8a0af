// Package contentgen produces post text through pluggable AI backends and
// degrades to a labelled sample when no backend is usable.
package contentgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Provider string

const (
	Gemini  Provider = "gemini"
	ChatGPT Provider = "chatgpt"
)

var ErrUnknownProvider = errors.New("unknown content provider")

// ParseProvider accepts the provider names users type. "openai" is an alias
// of chatgpt.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini":
		return Gemini, nil
	case "chatgpt", "openai":
		return ChatGPT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

func (p Provider) Valid() bool {
	return p == Gemini || p == ChatGPT
}

// Prompt is one generation request.
type Prompt struct {
	Topic    string
	Sequence int
	Total    int
	Text     string
}

// Result carries the text and whether it came from the sample fallback.
type Result struct {
	Text     string   `json:"text"`
	Provider Provider `json:"provider"`
	Fallback bool     `json:"fallback"`
}

// Backend is a single AI provider.
type Backend interface {
	Provider() Provider
	Generate(ctx context.Context, prompt string) (string, error)
}

type Generator struct {
	backends map[Provider]Backend
	timeout  time.Duration
}

// New registers the given backends. Providers without a backend answer with
// sample text.
func New(timeout time.Duration, backends ...Backend) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	g := &Generator{backends: make(map[Provider]Backend), timeout: timeout}
	for _, b := range backends {
		if b != nil {
			g.backends[b.Provider()] = b
		}
	}
	return g
}

// Configured reports whether a real backend is registered for p.
func (g *Generator) Configured(p Provider) bool {
	_, ok := g.backends[p]
	return ok
}

// Generate never surfaces backend failures: they are logged and replaced by
// the sample. The only error is an unknown provider.
func (g *Generator) Generate(ctx context.Context, provider Provider, prompt Prompt) (Result, error) {
	if !provider.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	backend, ok := g.backends[provider]
	if !ok {
		logrus.WithField("provider", provider).Debug("[CONTENTGEN] no credential configured, using sample text")
		return Result{Text: Sample(provider, prompt), Provider: provider, Fallback: true}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := backend.Generate(callCtx, prompt.Text)
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = errors.New("empty completion")
		}
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"provider": provider,
			"topic":    prompt.Topic,
			"elapsed":  time.Since(start).Round(time.Millisecond),
		}).Warn("[CONTENTGEN] generation failed, falling back to sample text")
		return Result{Text: Sample(provider, prompt), Provider: provider, Fallback: true}, nil
	}

	return Result{Text: text, Provider: provider}, nil
}
