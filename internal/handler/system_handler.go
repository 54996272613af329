package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/service"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	if err := db.Ping(c.Request.Context(), a.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type systemSettingsRequest struct {
	AIProvider           string `json:"aiProvider"`
	OpenAIAPIKey         string `json:"openaiApiKey"`
	DeepSeekAPIKey       string `json:"deepseekApiKey"`
	RecommendationPrompt string `json:"recommendationPrompt"`
	ListenerPrompt       string `json:"listenerPrompt"`
}

type aiTestRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings(c.Request.Context())
	if err != nil {
		a.respondError(c, apperr.Wrap(apperr.CodePersistence, err, "load system settings"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	ctx := c.Request.Context()
	current, err := a.system.GetSettings(ctx)
	if err != nil {
		a.respondError(c, apperr.Wrap(apperr.CodePersistence, err, "load system settings"))
		return
	}

	settings, err := a.system.UpdateSettings(ctx, payload.toInput(current))
	if err != nil {
		a.respondError(c, apperr.Wrap(apperr.CodeValidation, err, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "settings saved",
		"settings": systemSettingsPayload(settings),
	})
}

// toInput 将回显的掩码密钥替换为当前值，避免掩码被当作新密钥保存。
func (r systemSettingsRequest) toInput(current service.SystemSettings) service.SystemSettingsInput {
	return service.SystemSettingsInput{
		AIProvider:           r.AIProvider,
		OpenAIAPIKey:         unmaskKey(r.OpenAIAPIKey, current.OpenAIAPIKey),
		DeepSeekAPIKey:       unmaskKey(r.DeepSeekAPIKey, current.DeepSeekAPIKey),
		RecommendationPrompt: r.RecommendationPrompt,
		ListenerPrompt:       r.ListenerPrompt,
	}
}

func systemSettingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"aiProvider":           settings.AIProvider,
		"openaiApiKey":         maskKey(settings.OpenAIAPIKey),
		"deepseekApiKey":       maskKey(settings.DeepSeekAPIKey),
		"recommendationPrompt": settings.RecommendationPrompt,
		"listenerPrompt":       settings.ListenerPrompt,
	}
}

const maskPrefix = "****"

// maskKey 只保留末尾四位，避免在响应中回显完整密钥。
func maskKey(key string) string {
	if len(key) <= 4 {
		if key == "" {
			return ""
		}
		return maskPrefix
	}
	return maskPrefix + key[len(key)-4:]
}

func unmaskKey(submitted, current string) string {
	if strings.HasPrefix(submitted, maskPrefix) {
		return current
	}
	return submitted
}

// TestAIConnection 测试不同 AI 平台 API Key 的连通性。
func (a *API) TestAIConnection(c *gin.Context) {
	var payload aiTestRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	if err := a.system.TestAIConnection(c.Request.Context(), payload.Provider, payload.APIKey); err != nil {
		switch {
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			a.respondError(c, apperr.New(apperr.CodeValidation, "api key is required"))
		default:
			a.respondError(c, apperr.Wrap(apperr.CodeServiceUnavailable, err, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ai connection ok"})
}
