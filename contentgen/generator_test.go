package contentgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	provider Provider
	text     string
	err      error
	delay    time.Duration
	prompts  []string
}

func (f *fakeBackend) Provider() Provider { return f.provider }

func (f *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

var prompt = Prompt{Topic: "remote work", Sequence: 2, Total: 5, Text: "Write a post about remote work"}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("Gemini")
	require.NoError(t, err)
	assert.Equal(t, Gemini, p)

	p, err = ParseProvider("openai")
	require.NoError(t, err)
	assert.Equal(t, ChatGPT, p)

	_, err = ParseProvider("claude")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestGenerate_UsesBackend(t *testing.T) {
	backend := &fakeBackend{provider: Gemini, text: "  Real post  "}
	g := New(time.Second, backend)

	res, err := g.Generate(context.Background(), Gemini, prompt)
	require.NoError(t, err)
	assert.Equal(t, "Real post", res.Text)
	assert.False(t, res.Fallback)
	assert.Equal(t, []string{prompt.Text}, backend.prompts)
}

func TestGenerate_NoCredentialGivesSample(t *testing.T) {
	g := New(time.Second, &fakeBackend{provider: Gemini, text: "x"})

	res, err := g.Generate(context.Background(), ChatGPT, prompt)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.True(t, IsSample(res.Text))
	assert.False(t, g.Configured(ChatGPT))

	again, _ := g.Generate(context.Background(), ChatGPT, prompt)
	assert.Equal(t, res.Text, again.Text, "sample text is deterministic")
}

func TestGenerate_BackendFailureFallsBack(t *testing.T) {
	g := New(time.Second, &fakeBackend{provider: ChatGPT, err: errors.New("HTTP 500")})

	res, err := g.Generate(context.Background(), ChatGPT, prompt)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.Text, "remote work")
}

func TestGenerate_EmptyCompletionFallsBack(t *testing.T) {
	g := New(time.Second, &fakeBackend{provider: Gemini, text: "   "})

	res, err := g.Generate(context.Background(), Gemini, prompt)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
}

func TestGenerate_TimeoutFallsBack(t *testing.T) {
	g := New(20*time.Millisecond, &fakeBackend{provider: Gemini, text: "late", delay: time.Second})

	start := time.Now()
	res, err := g.Generate(context.Background(), Gemini, prompt)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGenerate_UnknownProvider(t *testing.T) {
	g := New(time.Second)
	_, err := g.Generate(context.Background(), Provider("claude"), prompt)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
