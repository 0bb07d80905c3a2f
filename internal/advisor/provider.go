package advisor

import (
	"context"
	"fmt"
)

// NewProvider выбирает провайдера по имени. Пустой ключ дает nil без ошибки:
// советник продолжит работать, отвечая извинением.
func NewProvider(ctx context.Context, name, apiKey, model, baseURL string) (Provider, error) {
	if apiKey == "" {
		return nil, nil
	}
	switch name {
	case "gemini", "":
		p, err := NewGeminiProvider(ctx, apiKey, model, baseURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		p, err := NewOpenAIProvider(apiKey, model, baseURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", name)
	}
}
