package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

// countingHTTPClient 记录调用次数，并始终返回给定的补全内容。
type countingHTTPClient struct {
	mu       sync.Mutex
	calls    int
	requests []chatCompletionRequest
	status   int
	content  string
	err      error
}

func (c *countingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	var payload chatCompletionRequest
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&payload)
	}
	c.requests = append(c.requests, payload)
	if c.err != nil {
		return nil, c.err
	}
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	if status >= http.StatusBadRequest {
		return jsonResponse(status, `{"error":{"message":"upstream failure"}}`), nil
	}
	return jsonResponse(status, completionJSON(c.content)), nil
}

func (c *countingHTTPClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func completionJSON(content string) string {
	buf, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		"usage":   map[string]int{"prompt_tokens": 12, "completion_tokens": 34},
	})
	return string(buf)
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(uuid.NewString(), "-", "") + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Provider:        AIProviderOpenAI,
		OpenAIAPIKey:    "sk-test",
		OpenAIBaseURL:   "https://openai.test/v1",
		DeepSeekBaseURL: "https://deepseek.test/v1",
		FastModel:       "gpt-4o-mini",
		CapacityModel:   "gpt-4",
		DeepSeekModel:   "deepseek-chat",
		Timeout:         5 * time.Second,
	}
}

func createTestUser(t *testing.T, gdb *gorm.DB, email string, role enums.UserRole) db.User {
	t.Helper()
	user := db.User{Email: email, PasswordHash: "x", Role: role, Status: enums.UserStatusActive}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func countRows(t *testing.T, gdb *gorm.DB, model interface{}) int64 {
	t.Helper()
	var total int64
	if err := gdb.Model(model).Count(&total).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return total
}
