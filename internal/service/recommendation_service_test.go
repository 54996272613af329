package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/logger"
)

func newTestRecommendationService(t *testing.T, client HTTPDoer) *RecommendationService {
	t.Helper()
	gdb := setupServiceTestDB(t)
	settings := NewSystemSettingService(gdb, testAIConfig())
	svc := NewRecommendationService(settings, testAIConfig(), nil, logger.Nop())
	svc.SetHTTPClient(client)
	return svc
}

func sampleRecommendationInput() RecommendationInput {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return RecommendationInput{
		Profile: db.User{ID: "u-1", Email: "sam@example.com", PasswordHash: "secret-hash", Role: enums.UserRolePatient, Status: enums.UserStatusActive, CreatedAt: now},
		RecentMoods: []db.MoodEntry{
			{UserID: "u-1", Mood: 3, JournalEntry: "Felt tired after work", CreatedAt: now},
			{UserID: "u-1", Mood: 6, JournalEntry: "Good walk in the park", CreatedAt: now.Add(-24 * time.Hour)},
		},
		ProfessionalInput: "Encourage outdoor exercise.",
	}
}

func TestBuildRecommendationPromptEmbedsInputs(t *testing.T) {
	input := sampleRecommendationInput()
	prompt := BuildRecommendationPrompt(input)

	for _, want := range []string{
		"sam@example.com",
		"user_type=patient",
		"Felt tired after work",
		"Good walk in the park",
		"mood=3/10",
		"Encourage outdoor exercise.",
		"1. Activity Name: [activity]",
		"3. Activity Name: [activity]",
		"Benefit: [how it can help]",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "secret-hash") {
		t.Fatalf("prompt must not contain the password hash")
	}
	if prompt != BuildRecommendationPrompt(input) {
		t.Fatalf("prompt should be deterministic")
	}

	input.ProfessionalInput = ""
	if !strings.Contains(BuildRecommendationPrompt(input), NoProfessionalInput) {
		t.Fatalf("expected sentinel when professional input empty")
	}
}

func TestRecommendationServiceGenerate(t *testing.T) {
	client := &countingHTTPClient{content: "1. Activity Name: Walk\n   Description: 20 minutes\n   Benefit: clears the mind"}
	svc := newTestRecommendationService(t, client)

	text, err := svc.Generate(context.Background(), sampleRecommendationInput())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(text, "1. Activity Name: Walk") {
		t.Fatalf("unexpected text %q", text)
	}
	if client.Calls() != 1 {
		t.Fatalf("expected one call, got %d", client.Calls())
	}

	req := client.requests[0]
	if req.Model != "gpt-4o-mini" {
		t.Fatalf("expected fast model, got %s", req.Model)
	}
	if req.MaxTokens != 300 {
		t.Fatalf("expected 300 max tokens, got %d", req.MaxTokens)
	}
	if len(req.Messages) != 2 || req.Messages[0].Content != defaultRecommendationSystemPrompt {
		t.Fatalf("unexpected messages %#v", req.Messages)
	}
}

func TestRecommendationServiceUsesConfiguredPrompt(t *testing.T) {
	gdb := setupServiceTestDB(t)
	settings := NewSystemSettingService(gdb, testAIConfig())
	if _, err := settings.UpdateSettings(context.Background(), SystemSettingsInput{RecommendationPrompt: "Be gentle."}); err != nil {
		t.Fatalf("seed settings failed: %v", err)
	}
	client := &countingHTTPClient{content: "ok"}
	svc := NewRecommendationService(settings, testAIConfig(), nil, logger.Nop())
	svc.SetHTTPClient(client)

	if _, err := svc.Generate(context.Background(), sampleRecommendationInput()); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if client.requests[0].Messages[0].Content != "Be gentle." {
		t.Fatalf("expected configured system prompt, got %q", client.requests[0].Messages[0].Content)
	}
}

func TestRecommendationServiceFailures(t *testing.T) {
	tests := []struct {
		name   string
		client HTTPDoer
	}{
		{name: "transport error", client: &countingHTTPClient{err: errors.New("connection refused")}},
		{name: "upstream 500", client: &countingHTTPClient{status: http.StatusInternalServerError}},
		{name: "empty choices", client: fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestRecommendationService(t, tt.client)
			_, err := svc.Generate(context.Background(), sampleRecommendationInput())
			if !apperr.HasCode(err, apperr.CodeServiceUnavailable) {
				t.Fatalf("expected service unavailable, got %v", err)
			}
		})
	}
}

func TestRecommendationServiceTimeout(t *testing.T) {
	blocking := fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	}}
	svc := newTestRecommendationService(t, blocking)
	svc.SetTimeout(20 * time.Millisecond)

	started := time.Now()
	_, err := svc.Generate(context.Background(), sampleRecommendationInput())
	if !apperr.HasCode(err, apperr.CodeServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded cause, got %v", err)
	}
	if time.Since(started) > 2*time.Second {
		t.Fatalf("timeout was not enforced")
	}
}

func TestRecommendationServiceMissingKey(t *testing.T) {
	gdb := setupServiceTestDB(t)
	cfg := testAIConfig()
	cfg.OpenAIAPIKey = ""
	settings := NewSystemSettingService(gdb, cfg)
	client := &countingHTTPClient{content: "never"}
	svc := NewRecommendationService(settings, cfg, nil, logger.Nop())
	svc.SetHTTPClient(client)

	_, err := svc.Generate(context.Background(), sampleRecommendationInput())
	if !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected missing key cause, got %v", err)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected no http call without a key")
	}
}

func TestRecommendationServiceDeepSeekBaseURL(t *testing.T) {
	gdb := setupServiceTestDB(t)
	settings := NewSystemSettingService(gdb, testAIConfig())
	if _, err := settings.UpdateSettings(context.Background(), SystemSettingsInput{AIProvider: "deepseek", DeepSeekAPIKey: "ds-key"}); err != nil {
		t.Fatalf("seed settings failed: %v", err)
	}

	var gotURL string
	svc := NewRecommendationService(settings, testAIConfig(), nil, logger.Nop())
	svc.SetDeepSeekBaseURL(" https://proxy.deepseek.test/v2/ ")
	svc.SetHTTPClient(fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		if req.Header.Get("Authorization") != "Bearer ds-key" {
			t.Fatalf("unexpected authorization header %q", req.Header.Get("Authorization"))
		}
		return jsonResponse(http.StatusOK, completionJSON("1. Activity Name: Walk")), nil
	}})

	if _, err := svc.Generate(context.Background(), sampleRecommendationInput()); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if gotURL != "https://proxy.deepseek.test/v2/chat/completions" {
		t.Fatalf("unexpected endpoint %s", gotURL)
	}
}
