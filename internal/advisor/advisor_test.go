package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	prompt string
	answer string
	err    error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("When to sow chilli?", nil)
	assert.True(t, strings.HasPrefix(p, SystemPrompt+"\n\n"))
	assert.True(t, strings.HasSuffix(p, "Farmer Question: When to sow chilli?"))
	assert.NotContains(t, p, "Context:")

	p = BuildPrompt("When to sow chilli?", &Context{Weather: "31°C, haze"})
	assert.Contains(t, p, "Context: Current Weather is 31°C, haze. Market Price is None.\n")
}

func TestAdvisor_Ask(t *testing.T) {
	fp := &fakeProvider{answer: "Sow in July."}
	a := New(fp, time.Second, nil)

	got := a.Ask(context.Background(), "When to sow chilli?", &Context{Price: "7500 INR/Quintal"})
	assert.Equal(t, "Sow in July.", got)
	assert.Contains(t, fp.prompt, "Market Price is 7500 INR/Quintal.")
}

func TestAdvisor_AskFallsBackToApology(t *testing.T) {
	a := New(&fakeProvider{err: errors.New("quota exceeded")}, 0, nil)
	got := a.Ask(context.Background(), "q", nil)
	assert.Equal(t, "I'm sorry, I'm having trouble connecting to my knowledge base. Error: quota exceeded", got)

	got = New(nil, 0, nil).Ask(context.Background(), "q", nil)
	assert.Contains(t, got, ErrNotConfigured.Error())
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), "gemini", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewProvider(context.Background(), "claude", "key", "", "")
	assert.Error(t, err)

	p, err = NewProvider(context.Background(), "openai", "key", "", "")
	require.NoError(t, err)
	assert.Equal(t, "openai:"+DefaultOpenAIModel, p.Name())
}

func TestOpenAIProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Use neem oil."},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("test-key", "gpt-4o-mini", srv.URL+"/v1")
	require.NoError(t, err)

	got, err := p.Generate(context.Background(), "white spots on chilli leaves")
	require.NoError(t, err)
	assert.Equal(t, "Use neem oil.", got)
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Irrigate in the evening."}]}}]}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), "test-key", "", srv.URL+"/")
	require.NoError(t, err)

	got, err := p.Generate(context.Background(), "extreme heat")
	require.NoError(t, err)
	assert.Equal(t, "Irrigate in the evening.", got)
}
