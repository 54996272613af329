package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/metrics"
)

const (
	defaultRecommendationSystemPrompt = "You are an AI trained to recommend mental health activities, taking into account professional input."
	recommendationMaxTokens           = 300
	purposeRecommendation             = "recommendation"
)

// RecommendationInput 是生成推荐所需的三部分上下文。
type RecommendationInput struct {
	Profile           db.User
	RecentMoods       []db.MoodEntry
	ProfessionalInput string
}

// RecommendationGenerator 根据上下文生成三条活动建议的纯文本。
type RecommendationGenerator interface {
	Generate(ctx context.Context, input RecommendationInput) (string, error)
}

// RecommendationService 调用文本生成服务产出活动建议，不写入任何数据。
type RecommendationService struct {
	client   *aiChatClient
	settings *SystemSettingService
}

// NewRecommendationService 构造 RecommendationService。
func NewRecommendationService(settings *SystemSettingService, cfg config.AIConfig, m *metrics.GenerationMetrics, log *logger.Logger) *RecommendationService {
	return &RecommendationService{
		client:   newAIChatClient(settings, cfg, m, log),
		settings: settings,
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，主要面向测试场景。
func (s *RecommendationService) SetHTTPClient(client HTTPDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址。
func (s *RecommendationService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址。
func (s *RecommendationService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// SetTimeout 调整生成调用的等待上限。
func (s *RecommendationService) SetTimeout(timeout time.Duration) {
	s.client.SetTimeout(timeout)
}

// Generate 组装提示词并调用快速模型；任何调用失败都归为 SERVICE_UNAVAILABLE。
func (s *RecommendationService) Generate(ctx context.Context, input RecommendationInput) (string, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeServiceUnavailable, err, "load ai settings")
	}

	systemPrompt := strings.TrimSpace(settings.RecommendationPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultRecommendationSystemPrompt
	}

	resp, err := s.client.callWithSettingsObserved(ctx, settings, aiChatRequest{
		Purpose: purposeRecommendation,
		Profile: ModelFast,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildRecommendationPrompt(input)},
		},
		MaxTokens: recommendationMaxTokens,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeServiceUnavailable, err, "recommendation service unavailable")
	}
	return resp.Content, nil
}

// BuildRecommendationPrompt 生成确定性的提示词，逐字嵌入资料、心情与专业建议。
func BuildRecommendationPrompt(input RecommendationInput) string {
	professional := input.ProfessionalInput
	if strings.TrimSpace(professional) == "" {
		professional = NoProfessionalInput
	}

	var b strings.Builder
	b.WriteString("Based on the following user data, recent moods, and professional input, ")
	b.WriteString("suggest 3 activities that could help improve the user's mental health:\n\n")
	b.WriteString("User Data: ")
	b.WriteString(formatProfile(input.Profile))
	b.WriteString("\nRecent Moods:\n")
	b.WriteString(formatMoods(input.RecentMoods))
	b.WriteString("Professional Input: ")
	b.WriteString(professional)
	b.WriteString("\n\nPlease provide the recommendations in the following format:\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "%d. Activity Name: [activity]\n   Description: [brief description]\n   Benefit: [how it can help]\n", i)
	}
	return b.String()
}

func formatProfile(user db.User) string {
	created := ""
	if !user.CreatedAt.IsZero() {
		created = user.CreatedAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("id=%s email=%s user_type=%s status=%s created_at=%s",
		user.ID, user.Email, user.Role, user.Status, created)
}

func formatMoods(moods []db.MoodEntry) string {
	if len(moods) == 0 {
		return "- none\n"
	}
	var b strings.Builder
	for _, mood := range moods {
		fmt.Fprintf(&b, "- %s mood=%d/%d journal=%s\n",
			mood.CreatedAt.UTC().Format(time.RFC3339), mood.Mood, MaxMood, mood.JournalEntry)
	}
	return b.String()
}
