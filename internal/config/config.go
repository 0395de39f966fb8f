package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	AppSecret   string `env:"APP_SECRET" envDefault:"your-secret-key-change-in-production"`
	DatabaseURL string `env:"DATABASE_URL"`
	Port        string `env:"PORT" envDefault:"5005"`
	SiteName    string `env:"SITE_NAME" envDefault:"Deadpan"`
	SiteUrl     string `env:"SITE_URL" envDefault:"http://localhost:5005"`

	JWTExpiryHours int `env:"JWT_EXPIRY_HOURS" envDefault:"72"`
	JWTExpiry      time.Duration

	DB       DBConfig
	Log      LogConfig
	TMDB     TMDBConfig
	Identity IdentityConfig
	Google   GoogleConfig

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@deadpan.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"AdminPassword123!"`
}

// DBConfig 数据库连接参数，DATABASE_URL 未设置时用于拼接连接串
type DBConfig struct {
	User    string `env:"DB_USER" envDefault:"postgres"`
	Pass    string `env:"DB_PASSWORD" envDefault:"postgres"`
	Host    string `env:"DB_HOST" envDefault:"localhost"`
	Port    string `env:"DB_PORT" envDefault:"5432"`
	Name    string `env:"DB_NAME" envDefault:"deadpan"`
	SSLMode string `env:"DB_SSLMODE" envDefault:"disable"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// TMDBConfig 电影元数据接口配置
type TMDBConfig struct {
	APIKey       string        `env:"TMDB_API_KEY"`
	Token        string        `env:"TMDB_TOKEN"`
	BaseURL      string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	ImageBaseURL string        `env:"TMDB_IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p/original"`
	Timeout      time.Duration `env:"TMDB_TIMEOUT" envDefault:"15s"`
	CacheSize    int           `env:"TMDB_CACHE_SIZE" envDefault:"256"`
	CacheTTL     time.Duration `env:"TMDB_CACHE_TTL" envDefault:"1h"`
}

// IdentityConfig 登录锁定与两步验证策略
type IdentityConfig struct {
	LockoutEnabled    bool          `env:"LOCKOUT_ENABLED" envDefault:"false"`
	MaxFailedAttempts int           `env:"LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`
	LockoutDuration   time.Duration `env:"LOCKOUT_DURATION" envDefault:"5m"`
	TwoFactorCodeTTL  time.Duration `env:"TWO_FACTOR_CODE_TTL" envDefault:"5m"`
}

type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:5005/account/external-login/callback"`
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, cfg.DB.SSLMode)
	}
	cfg.JWTExpiry = time.Duration(cfg.JWTExpiryHours) * time.Hour

	return cfg, nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDefaultSecret 是否仍在使用默认密钥
func (c *Config) UsesDefaultSecret() bool {
	return c.AppSecret == defaultSecret
}

// GoogleEnabled 是否配置了 Google 外部登录
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}
