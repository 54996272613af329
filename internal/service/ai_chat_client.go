package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/metrics"
)

// ModelProfile 选择文本生成所用的模型档位。
type ModelProfile string

const (
	// ModelFast 低延迟档位，用于活动推荐与倾听对话。
	ModelFast ModelProfile = "fast"
	// ModelCapacity 高容量档位，用于对话摘要。
	ModelCapacity ModelProfile = "capacity"
)

const defaultAITimeout = 30 * time.Second

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiChatRequest struct {
	Purpose     string
	Profile     ModelProfile
	Messages    []chatMessage
	MaxTokens   int
	Temperature float64
}

type aiChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

type aiChatClient struct {
	settings *SystemSettingService
	http     HTTPDoer
	cfg      config.AIConfig
	timeout  time.Duration
	metrics  *metrics.GenerationMetrics
	log      *logger.Logger
}

func newAIChatClient(settings *SystemSettingService, cfg config.AIConfig, m *metrics.GenerationMetrics, log *logger.Logger) *aiChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &aiChatClient{
		settings: settings,
		http:     &http.Client{Timeout: timeout},
		cfg:      cfg,
		timeout:  timeout,
		metrics:  m,
		log:      log,
	}
}

func (c *aiChatClient) SetHTTPClient(client HTTPDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: c.timeout}
		return
	}
	c.http = client
}

func (c *aiChatClient) SetOpenAIBaseURL(base string) {
	c.cfg.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *aiChatClient) SetDeepSeekBaseURL(base string) {
	c.cfg.DeepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetTimeout 调整单次调用的等待上限，非正值被忽略。
func (c *aiChatClient) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.timeout = timeout
	}
}

func (c *aiChatClient) modelFor(provider string, profile ModelProfile) string {
	if provider == AIProviderDeepSeek {
		if model := strings.TrimSpace(c.cfg.DeepSeekModel); model != "" {
			return model
		}
		return "deepseek-chat"
	}
	if profile == ModelCapacity {
		if model := strings.TrimSpace(c.cfg.CapacityModel); model != "" {
			return model
		}
		return "gpt-4"
	}
	if model := strings.TrimSpace(c.cfg.FastModel); model != "" {
		return model
	}
	return "gpt-4o-mini"
}

// complete 读取当前系统设置并调用对应平台，调用结果计入指标。
func (c *aiChatClient) complete(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	started := time.Now()
	resp, err := c.doComplete(ctx, req)
	c.metrics.ObserveCall(req.Purpose, time.Since(started), err)
	return resp, err
}

func (c *aiChatClient) doComplete(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	if c.settings == nil {
		return aiChatResponse{}, fmt.Errorf("ai settings not configured")
	}
	settings, err := c.settings.GetSettings(ctx)
	if err != nil {
		return aiChatResponse{}, err
	}
	return c.callWithSettings(ctx, settings, req)
}

func (c *aiChatClient) callWithSettings(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	provider := normalizeAIProvider(settings.AIProvider)
	if provider == "" {
		provider = AIProviderOpenAI
	}

	var apiKey, base, label string
	switch provider {
	case AIProviderDeepSeek:
		apiKey = strings.TrimSpace(settings.DeepSeekAPIKey)
		base = c.cfg.DeepSeekBaseURL
		if strings.TrimSpace(base) == "" {
			base = "https://api.deepseek.com/v1"
		}
		label = "DeepSeek"
	default:
		apiKey = strings.TrimSpace(settings.OpenAIAPIKey)
		base = c.cfg.OpenAIBaseURL
		if strings.TrimSpace(base) == "" {
			base = "https://api.openai.com/v1"
		}
		label = "OpenAI"
	}

	if apiKey == "" {
		return aiChatResponse{}, ErrAIAPIKeyMissing
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = 0
	}

	model := c.modelFor(provider, req.Profile)
	payload := chatCompletionRequest{
		Model:       model,
		Messages:    req.Messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := strings.TrimRight(base, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "snuggli-ai/1.0")

	if len(req.Messages) > 0 {
		logAIExchange(ctx, c.log, req.Purpose, "request", req.Messages[len(req.Messages)-1].Content)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("request %s: %w", label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("read %s response: %w", label, err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return aiChatResponse{}, fmt.Errorf("%s returned %s", label, resp.Status)
		}
		return aiChatResponse{}, fmt.Errorf("decode %s response: %w", label, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiChatResponse{}, fmt.Errorf("%s returned %s", label, errMsg)
	}

	if len(completion.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("%s returned no choices", label)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return aiChatResponse{}, fmt.Errorf("%s returned empty content", label)
	}
	logAIExchange(ctx, c.log, req.Purpose, "response", content)

	return aiChatResponse{
		Content:          content,
		Model:            model,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}

// callWithSettingsObserved 使用调用方已读取的设置发起请求，并记录调用指标。
func (c *aiChatClient) callWithSettingsObserved(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	started := time.Now()
	resp, err := c.callWithSettings(ctx, settings, req)
	c.metrics.ObserveCall(req.Purpose, time.Since(started), err)
	return resp, err
}
