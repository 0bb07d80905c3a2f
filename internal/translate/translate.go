package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL - публичный эндпоинт Google Translate (клиент gtx).
const DefaultBaseURL = "https://translate.googleapis.com"

// DefaultSupported - языки, на которые переводит сервис.
var DefaultSupported = []string{"en", "hi", "te"}

// Translator переводит текст; при любой ошибке возвращает исходный текст.
type Translator struct {
	baseURL   string
	supported map[string]bool
	http      *http.Client
	log       *zap.Logger
}

// New создает переводчика.
func New(baseURL string, supported []string, timeout time.Duration, log *zap.Logger) *Translator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if len(supported) == 0 {
		supported = DefaultSupported
	}
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]bool, len(supported))
	for _, lang := range supported {
		set[lang] = true
	}
	return &Translator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		supported: set,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Supports сообщает, поддерживается ли целевой язык.
func (t *Translator) Supports(lang string) bool {
	return t.supported[lang]
}

// Translate переводит text на target; неподдерживаемый язык или ошибка - исходный текст.
func (t *Translator) Translate(ctx context.Context, text, target string) string {
	if !t.Supports(target) || strings.TrimSpace(text) == "" {
		return text
	}
	translated, err := t.fetch(ctx, text, target)
	if err != nil {
		t.log.Warn("translation failed", zap.String("target", target), zap.Error(err))
		return text
	}
	return translated
}

// TranslateBatch переводит каждый элемент с тем же правилом отката.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string, target string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = t.Translate(ctx, text, target)
	}
	return out
}

func (t *Translator) fetch(ctx context.Context, text, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	// Ответ - вложенные массивы: [[["перевод","оригинал",...], ...], ...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("translate: decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate: no translated segments")
	}
	return b.String(), nil
}
