package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix 是所有环境变量的统一前缀，例如 SNUGGLI_PORT。
const EnvPrefix = "SNUGGLI"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `envconfig:"LISTEN_ADDR"`
	Port          string `envconfig:"PORT" default:"8080"`
	GinMode       string `envconfig:"GIN_MODE" default:"release"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	SessionSecret string `envconfig:"SESSION_SECRET" default:"snuggli-dev-secret"`

	DB    DBConfig
	AI    AIConfig
	Admin AdminConfig
}

// DBConfig 描述记录存储的连接方式；sqlite 用于本地开发与测试，postgres 对接托管数据库。
type DBConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"sqlite"`
	Path            string        `envconfig:"SQLITE_PATH" default:"snuggli.db"`
	DSN             string        `envconfig:"DSN"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

// AIConfig 提供文本生成服务的默认配置，系统设置表中的值优先。
type AIConfig struct {
	Provider        string        `envconfig:"PROVIDER" default:"openai"`
	OpenAIAPIKey    string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	DeepSeekAPIKey  string        `envconfig:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string        `envconfig:"DEEPSEEK_BASE_URL" default:"https://api.deepseek.com/v1"`
	FastModel       string        `envconfig:"FAST_MODEL" default:"gpt-4o-mini"`
	CapacityModel   string        `envconfig:"CAPACITY_MODEL" default:"gpt-4"`
	DeepSeekModel   string        `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	Timeout         time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// AdminConfig 用于启动时引导创建管理员账号，两项均为空时跳过。
type AdminConfig struct {
	Email    string `envconfig:"BOOTSTRAP_EMAIL"`
	Password string `envconfig:"BOOTSTRAP_PASSWORD"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	c.Admin.Email = strings.ToLower(strings.TrimSpace(c.Admin.Email))
}

// Validate 检查互相依赖的配置项。
func (c AppConfig) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DB.DSN) == "" {
			return errors.New("postgres driver requires SNUGGLI_DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}

	if c.AI.Timeout <= 0 {
		return errors.New("ai timeout must be positive")
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		return errors.New("session secret is required")
	}
	return nil
}
