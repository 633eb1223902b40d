package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SEO_AUDIT"

// LoadConfig reads the YAML file at filename (optional) on top of the
// defaults. Environment variables prefixed with SEO_AUDIT_ override both,
// e.g. SEO_AUDIT_REDIS_HOST. A .env file in the working directory is
// loaded first when present.
func LoadConfig(filename string) (*AuditorConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v, GetDefaultConfig())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read the file %w", err)
		}
	}

	var config AuditorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error reading the config file %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func GetDefaultConfig() *AuditorConfig {
	return &AuditorConfig{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Mozilla/5.0 (compatible; SEOAuditBot/1.0)",
			MaxBodyBytes: 10 << 20,
		},
		Redis: RedisConfig{
			Host:      "localhost:6379",
			KeyPrefix: "seo_audit",
			BloomName: "seo_audit:seen_urls",
		},
		DB: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "admin",
			Password: "secret",
			DBName:   "seo_audit",
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			DBName:     "seo_audit",
			ReportColl: "audit_reports",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			OutputPaths: []string{"stdout"},
		},
		Audit: AuditConfig{
			MinImpressions: 100,
			MinClicks:      10,
			AnalyticsTTL:   15 * time.Minute,
			AnalyticsCache: 128,
		},
		Monitor: MonitorConfig{
			MaxChain:       5,
			ErrorThreshold: 2,
		},
		Tasks: TaskConfig{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Minute,
			PollInterval: 2 * time.Second,
			Concurrency: map[string]int{
				"discovery": 1,
				"audit":     2,
				"content":   1,
				"backlink":  1,
			},
			RefreshCron: "0 * * * *",
			RefreshURLs: []string{
				"https://example.com/page1",
				"https://example.com/page2",
				"https://example.com/page3",
			},
			RefreshPrompt: "Suggest updated content for %s",
		},
		API: APIConfig{
			HTTPAddr:      ":8080",
			SettingsToken: "secrettoken",
		},
		Secrets: SecretsConfig{
			Region:          "us-east-1",
			AnalyticsSecret: "google-oauth2-tokens",
		},
		Content: ContentConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o",
			MaxTokens: 256,
			MinLength: 100,
		},
	}
}

func (c *AuditorConfig) Validate() error {
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Tasks.MaxAttempts < 1 {
		return errors.New("tasks.max_attempts must be at least 1")
	}
	if c.Monitor.MaxChain < 1 {
		return errors.New("monitor.max_chain must be at least 1")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}

func (p PostgresConfig) DSN() string {
	sslMode := "disable"
	if p.SSL {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslMode)
}

func setDefaults(v *viper.Viper, d *AuditorConfig) {
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.proxy_url", d.HTTP.ProxyUrl)
	v.SetDefault("http.proxy_enabled", d.HTTP.ProxyEnabled)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)

	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)
	v.SetDefault("redis.bloom_name", d.Redis.BloomName)
	v.SetDefault("redis.bloom_enabled", d.Redis.BloomEnabled)

	v.SetDefault("db.host", d.DB.Host)
	v.SetDefault("db.port", d.DB.Port)
	v.SetDefault("db.user", d.DB.User)
	v.SetDefault("db.password", d.DB.Password)
	v.SetDefault("db.ssl", d.DB.SSL)
	v.SetDefault("db.db_name", d.DB.DBName)

	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.db_name", d.Mongo.DBName)
	v.SetDefault("mongo.report_coll", d.Mongo.ReportColl)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_paths", d.Logging.OutputPaths)

	v.SetDefault("audit.min_impressions", d.Audit.MinImpressions)
	v.SetDefault("audit.min_clicks", d.Audit.MinClicks)
	v.SetDefault("audit.analytics_ttl", d.Audit.AnalyticsTTL)
	v.SetDefault("audit.analytics_cache", d.Audit.AnalyticsCache)

	v.SetDefault("monitor.max_chain", d.Monitor.MaxChain)
	v.SetDefault("monitor.error_threshold", d.Monitor.ErrorThreshold)

	v.SetDefault("tasks.max_attempts", d.Tasks.MaxAttempts)
	v.SetDefault("tasks.initial_delay", d.Tasks.InitialDelay)
	v.SetDefault("tasks.max_delay", d.Tasks.MaxDelay)
	v.SetDefault("tasks.poll_interval", d.Tasks.PollInterval)
	v.SetDefault("tasks.concurrency", d.Tasks.Concurrency)
	v.SetDefault("tasks.refresh_cron", d.Tasks.RefreshCron)
	v.SetDefault("tasks.refresh_urls", d.Tasks.RefreshURLs)
	v.SetDefault("tasks.refresh_prompt", d.Tasks.RefreshPrompt)

	v.SetDefault("api.http_addr", d.API.HTTPAddr)
	v.SetDefault("api.settings_token", d.API.SettingsToken)

	v.SetDefault("secrets.region", d.Secrets.Region)
	v.SetDefault("secrets.analytics_secret", d.Secrets.AnalyticsSecret)

	v.SetDefault("content.base_url", d.Content.BaseURL)
	v.SetDefault("content.model", d.Content.Model)
	v.SetDefault("content.api_key", d.Content.APIKey)
	v.SetDefault("content.max_tokens", d.Content.MaxTokens)
	v.SetDefault("content.min_length", d.Content.MinLength)
	v.SetDefault("content.required_keywords", d.Content.RequiredKeywords)
}
