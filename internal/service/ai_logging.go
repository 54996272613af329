package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/snuggli/internal/logger"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 以 debug 级别输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(ctx context.Context, log *logger.Logger, kind, phase, content string) {
	if log == nil {
		return
	}
	trimmed := strings.TrimSpace(content)
	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxAILogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	if snippet == "" {
		snippet = "<empty>"
	}
	log.Debug(log.WithFields(ctx, map[string]any{
		"ai_kind": kind,
		"phase":   phase,
		"runes":   runeCount,
		"content": snippet,
	}), "ai exchange")
}
