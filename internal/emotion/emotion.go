// Package emotion scores free text on the valence/arousal plane using an LLM.
package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Analysis is the result attached to a mood record.
type Analysis struct {
	Valence        float64            `json:"valence"`
	Arousal        float64            `json:"arousal"`
	PrimaryEmotion string             `json:"primary_emotion"`
	EmotionScores  map[string]float64 `json:"emotion_scores"`
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

// Neutral is substituted whenever analysis fails.
func Neutral() Analysis {
	return Analysis{
		Valence:        0.5,
		Arousal:        0.5,
		PrimaryEmotion: "neutral",
		EmotionScores: map[string]float64{
			"joy":        0.3,
			"calm":       0.5,
			"sadness":    0.2,
			"anxiety":    0.2,
			"anger":      0.1,
			"excitement": 0.2,
		},
	}
}

const systemPrompt = "你是一个专业的情感分析助手。"

func userPrompt(text string) string {
	return fmt.Sprintf(`分析以下文本的情感，返回JSON格式：

文本："%s"

请分析并返回：
1. valence（效价）：0-1之间的小数，0=消极，1=积极
2. arousal（唤起度）：0-1之间的小数，0=平静，1=激动
3. primary_emotion（主要情绪）：选择一个最主要的情绪词（英文）
4. emotion_scores（各情绪得分）：对以下情绪分别打分（0-1）：joy, calm, sadness, anxiety, anger, excitement

只返回JSON，不要其他解释。格式：
{"valence": 0.0, "arousal": 0.0, "primary_emotion": "xxx", "emotion_scores": {"joy": 0.0}}`, text)
}

// parseAnalysis reads the model reply. Markdown code fences are tolerated and every
// score is clamped to [0,1].
func parseAnalysis(reply string) (Analysis, error) {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	if i, j := strings.Index(body, "{"), strings.LastIndex(body, "}"); i >= 0 && j > i {
		body = body[i : j+1]
	}

	var raw struct {
		Valence        *float64           `json:"valence"`
		Arousal        *float64           `json:"arousal"`
		PrimaryEmotion string             `json:"primary_emotion"`
		EmotionScores  map[string]float64 `json:"emotion_scores"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if raw.Valence == nil || raw.Arousal == nil {
		return Analysis{}, fmt.Errorf("analysis missing valence or arousal")
	}

	a := Analysis{
		Valence:        clamp01(*raw.Valence),
		Arousal:        clamp01(*raw.Arousal),
		PrimaryEmotion: strings.TrimSpace(raw.PrimaryEmotion),
		EmotionScores:  make(map[string]float64, len(raw.EmotionScores)),
	}
	if a.PrimaryEmotion == "" {
		a.PrimaryEmotion = "neutral"
	}
	for k, v := range raw.EmotionScores {
		a.EmotionScores[k] = clamp01(v)
	}
	return a, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// Static always returns the same analysis. It backs AI_PROVIDER=none.
type Static struct {
	Result Analysis
}

func (s Static) Analyze(context.Context, string) (Analysis, error) {
	return s.Result, nil
}

type fallback struct {
	inner  Analyzer
	logger *zap.Logger
}

// WithFallback never fails: errors from inner are logged and replaced by Neutral.
func WithFallback(inner Analyzer, logger *zap.Logger) Analyzer {
	return &fallback{inner: inner, logger: logger}
}

func (f *fallback) Analyze(ctx context.Context, text string) (Analysis, error) {
	a, err := f.inner.Analyze(ctx, text)
	if err != nil {
		f.logger.Warn("emotion analysis failed, using neutral", zap.Error(err))
		return Neutral(), nil
	}
	return a, nil
}
