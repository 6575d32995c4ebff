package emotion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stellar/internal/config"
)

// FromConfig builds the configured provider wrapped in WithFallback. A provider whose
// key is missing degrades to Static neutral output instead of failing startup.
func FromConfig(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Analyzer, error) {
	var (
		inner Analyzer
		err   error
	)
	switch cfg.Provider {
	case "openai":
		inner, err = NewChatAnalyzer(ChatConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Model: cfg.OpenAIModel})
	case "zhipu":
		inner, err = NewChatAnalyzer(ChatConfig{APIKey: cfg.ZhipuAPIKey, BaseURL: cfg.ZhipuBaseURL, Model: cfg.ZhipuModel})
	case "gemini":
		inner, err = NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "")
	case "none", "":
		inner = Static{Result: Neutral()}
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
	if err != nil {
		logger.Warn("emotion provider unavailable, analysis will be neutral",
			zap.String("provider", cfg.Provider), zap.Error(err))
		inner = Static{Result: Neutral()}
	}
	return WithFallback(inner, logger), nil
}
