package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SystemPrompt задает роль модели для всех запросов.
const SystemPrompt = "You are WikiKisan AI, an expert agricultural advisor. " +
	"Your goal is to provide accurate, sustainable, and practical farming advice " +
	"to Indian farmers. Focus on crop health, soil quality, and pest management. " +
	"If a query is not related to farming, politely decline to answer."

// ErrNotConfigured возвращается провайдером-заглушкой, когда ключ API не задан.
var ErrNotConfigured = errors.New("advisor provider is not configured")

// Provider - генератор текста (Gemini, OpenAI).
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Context - дополнительные данные для промпта: погода и цена на рынке.
type Context struct {
	Weather string
	Price   string
}

// Advisor формирует промпт и превращает ошибки провайдера в ответ-извинение.
type Advisor struct {
	provider Provider
	timeout  time.Duration
	log      *zap.Logger
}

// New создает советника. provider может быть nil - тогда Ask всегда вернет извинение.
func New(provider Provider, timeout time.Duration, log *zap.Logger) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{provider: provider, timeout: timeout, log: log}
}

// BuildPrompt собирает полный промпт для модели.
func BuildPrompt(question string, c *Context) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\n")
	if c != nil {
		fmt.Fprintf(&b, "Context: Current Weather is %s. ", orNone(c.Weather))
		fmt.Fprintf(&b, "Market Price is %s.\n", orNone(c.Price))
	}
	b.WriteString("Farmer Question: ")
	b.WriteString(question)
	return b.String()
}

// Ask возвращает совет модели. Ошибка не пробрасывается: вместо нее - текст извинения.
func (a *Advisor) Ask(ctx context.Context, question string, c *Context) string {
	if a.provider == nil {
		return apology(ErrNotConfigured)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.provider.Generate(ctx, BuildPrompt(question, c))
	if err != nil {
		a.log.Warn("advisor request failed", zap.String("provider", a.provider.Name()), zap.Error(err))
		return apology(err)
	}
	return text
}

func apology(err error) string {
	return fmt.Sprintf("I'm sorry, I'm having trouble connecting to my knowledge base. Error: %v", err)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
