package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"
)

var supportedAIProviders = []string{AIProviderOpenAI, AIProviderDeepSeek}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// SystemSettings 描述后台可配置的 AI 相关设置。
type SystemSettings struct {
	AIProvider           string
	OpenAIAPIKey         string
	DeepSeekAPIKey       string
	RecommendationPrompt string
	ListenerPrompt       string
}

// SystemSettingsInput 用于更新系统设置。
type SystemSettingsInput struct {
	AIProvider           string
	OpenAIAPIKey         string
	DeepSeekAPIKey       string
	RecommendationPrompt string
	ListenerPrompt       string
}

// SystemSettingService 提供系统设置的读取与更新能力。
// 数据库中未设置的项回退到环境变量提供的默认值。
type SystemSettingService struct {
	db              *gorm.DB
	defaults        config.AIConfig
	httpClient      HTTPDoer
	openAIBaseURL   string
	deepSeekBaseURL string
}

// HTTPDoer 是访问第三方 HTTP 接口所需的最小客户端能力。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, defaults config.AIConfig) *SystemSettingService {
	openAIBase := strings.TrimRight(strings.TrimSpace(defaults.OpenAIBaseURL), "/")
	if openAIBase == "" {
		openAIBase = "https://api.openai.com/v1"
	}
	deepSeekBase := strings.TrimRight(strings.TrimSpace(defaults.DeepSeekBaseURL), "/")
	if deepSeekBase == "" {
		deepSeekBase = "https://api.deepseek.com/v1"
	}
	return &SystemSettingService{
		db:              gdb,
		defaults:        defaults,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		openAIBaseURL:   openAIBase,
		deepSeekBaseURL: deepSeekBase,
	}
}

var settingKeys = []string{
	db.SettingKeyAIProvider,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
	db.SettingKeyRecommendationPrompt,
	db.SettingKeyListenerPrompt,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings(ctx context.Context) (SystemSettings, error) {
	result := SystemSettings{
		AIProvider:     normalizeAIProvider(s.defaults.Provider),
		OpenAIAPIKey:   strings.TrimSpace(s.defaults.OpenAIAPIKey),
		DeepSeekAPIKey: strings.TrimSpace(s.defaults.DeepSeekAPIKey),
	}
	if result.AIProvider == "" {
		result.AIProvider = AIProviderOpenAI
	}

	var records []db.SystemSetting
	if err := s.db.WithContext(ctx).Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = value
		case db.SettingKeyRecommendationPrompt:
			result.RecommendationPrompt = value
		case db.SettingKeyListenerPrompt:
			result.ListenerPrompt = value
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置；空值表示回退到环境变量默认值。
func (s *SystemSettingService) UpdateSettings(ctx context.Context, input SystemSettingsInput) (SystemSettings, error) {
	provider := strings.TrimSpace(input.AIProvider)
	if provider != "" && normalizeAIProvider(provider) == "" {
		return SystemSettings{}, fmt.Errorf("unsupported ai provider %q", input.AIProvider)
	}

	values := map[string]string{
		db.SettingKeyAIProvider:           normalizeAIProvider(provider),
		db.SettingKeyOpenAIAPIKey:         strings.TrimSpace(input.OpenAIAPIKey),
		db.SettingKeyDeepSeekAPIKey:       strings.TrimSpace(input.DeepSeekAPIKey),
		db.SettingKeyRecommendationPrompt: strings.TrimSpace(input.RecommendationPrompt),
		db.SettingKeyListenerPrompt:       strings.TrimSpace(input.ListenerPrompt),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.GetSettings(ctx)
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client HTTPDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetDeepSeekBaseURL(base string) {
	s.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestAIConnection 调用指定 AI 平台的模型列表接口验证 API Key 的有效性。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	prov := normalizeAIProvider(provider)
	if prov == "" {
		prov = AIProviderOpenAI
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	base, label := s.openAIBaseURL, "OpenAI"
	if prov == AIProviderDeepSeek {
		base, label = s.deepSeekBaseURL, "DeepSeek"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/models", nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("User-Agent", "snuggli-admin/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s returned %s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s returned %s", label, resp.Status)
	}

	return nil
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
