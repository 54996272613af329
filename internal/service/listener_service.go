package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/metrics"
)

const (
	defaultListenerSystemPrompt = "You are a compassionate AI listener trained to provide support and gather information about mental health concerns. Respond empathetically and ask gentle follow-up questions."
	summarySystemPrompt         = "You are an AI trained to summarize mental health conversations and identify key concerns."
	listenerMaxTokens           = 150
	summaryMaxTokens            = 250
	purposeListenerChat         = "listener_chat"
	purposeListenerSummary      = "listener_summary"
	maxListenerTurns            = 50
)

// ChatTurn 是倾听对话中的一轮发言，Role 为 user 或 assistant。
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ListenerService 提供 AI 倾听对话与对话摘要。
// 对话历史由调用方保存并随请求提交，服务端只持久化摘要报告。
type ListenerService struct {
	client   *aiChatClient
	settings *SystemSettingService
	reports  *ReportService
}

// NewListenerService 构造 ListenerService。
func NewListenerService(settings *SystemSettingService, reports *ReportService, cfg config.AIConfig, m *metrics.GenerationMetrics, log *logger.Logger) *ListenerService {
	return &ListenerService{
		client:   newAIChatClient(settings, cfg, m, log),
		settings: settings,
		reports:  reports,
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，主要面向测试场景。
func (s *ListenerService) SetHTTPClient(client HTTPDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址。
func (s *ListenerService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址。
func (s *ListenerService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// Chat 基于历史对话与新消息返回倾听者的回复。
func (s *ListenerService) Chat(ctx context.Context, history []ChatTurn, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperr.New(apperr.CodeValidation, "message must not be empty")
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeServiceUnavailable, err, "load ai settings")
	}
	systemPrompt := strings.TrimSpace(settings.ListenerPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultListenerSystemPrompt
	}

	if len(history) > maxListenerTurns {
		history = history[len(history)-maxListenerTurns:]
	}
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "user" && role != "assistant" {
			return "", apperr.Newf(apperr.CodeValidation, "invalid chat role %q", turn.Role)
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	resp, err := s.client.callWithSettingsObserved(ctx, settings, aiChatRequest{
		Purpose:   purposeListenerChat,
		Profile:   ModelFast,
		Messages:  messages,
		MaxTokens: listenerMaxTokens,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeServiceUnavailable, err, "listener service unavailable")
	}
	return resp.Content, nil
}

// Summarize 用高容量模型总结对话并保存为待审阅报告；生成失败时不写入任何数据。
func (s *ListenerService) Summarize(ctx context.Context, userID string, conversation []ChatTurn) (*db.Report, error) {
	if len(conversation) == 0 {
		return nil, apperr.New(apperr.CodeEmptyPrecondition, "conversation is empty")
	}

	var transcript strings.Builder
	for _, turn := range conversation {
		fmt.Fprintf(&transcript, "%s: %s\n", turn.Role, strings.TrimSpace(turn.Content))
	}

	resp, err := s.client.complete(ctx, aiChatRequest{
		Purpose: purposeListenerSummary,
		Profile: ModelCapacity,
		Messages: []chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: "Summarize the following conversation and identify key mental health concerns:\n\n" + transcript.String()},
		},
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeServiceUnavailable, err, "summary service unavailable")
	}

	return s.reports.Create(ctx, userID, resp.Content)
}
