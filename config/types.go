package config

import "time"

type AuditorConfig struct {
	HTTP    HTTPConfig     `mapstructure:"http"`
	Redis   RedisConfig    `mapstructure:"redis"`
	DB      PostgresConfig `mapstructure:"db"`
	Mongo   MongoConfig    `mapstructure:"mongo"`
	Logging LoggingConfig  `mapstructure:"logging"`
	Audit   AuditConfig    `mapstructure:"audit"`
	Monitor MonitorConfig  `mapstructure:"monitor"`
	Tasks   TaskConfig     `mapstructure:"tasks"`
	API     APIConfig      `mapstructure:"api"`
	Secrets SecretsConfig  `mapstructure:"secrets"`
	Content ContentConfig  `mapstructure:"content"`
}

type HTTPConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	ProxyUrl     string        `mapstructure:"proxy_url"`
	ProxyEnabled bool          `mapstructure:"proxy_enabled"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	BloomName    string `mapstructure:"bloom_name"`
	BloomEnabled bool   `mapstructure:"bloom_enabled"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
	DBName   string `mapstructure:"db_name"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	DBName     string `mapstructure:"db_name"`
	ReportColl string `mapstructure:"report_coll"`
}

type LoggingConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

type AuditConfig struct {
	MinImpressions int           `mapstructure:"min_impressions"`
	MinClicks      int           `mapstructure:"min_clicks"`
	AnalyticsTTL   time.Duration `mapstructure:"analytics_ttl"`
	AnalyticsCache int           `mapstructure:"analytics_cache"`
}

type MonitorConfig struct {
	MaxChain       int `mapstructure:"max_chain"`
	ErrorThreshold int `mapstructure:"error_threshold"`
}

type TaskConfig struct {
	MaxAttempts   int            `mapstructure:"max_attempts"`
	InitialDelay  time.Duration  `mapstructure:"initial_delay"`
	MaxDelay      time.Duration  `mapstructure:"max_delay"`
	PollInterval  time.Duration  `mapstructure:"poll_interval"`
	Concurrency   map[string]int `mapstructure:"concurrency"`
	RefreshCron   string         `mapstructure:"refresh_cron"`
	RefreshURLs   []string       `mapstructure:"refresh_urls"`
	RefreshPrompt string         `mapstructure:"refresh_prompt"`
}

type APIConfig struct {
	HTTPAddr      string `mapstructure:"http_addr"`
	SettingsToken string `mapstructure:"settings_token"`
}

type SecretsConfig struct {
	Region          string `mapstructure:"region"`
	AnalyticsSecret string `mapstructure:"analytics_secret"`
}

type ContentConfig struct {
	BaseURL          string   `mapstructure:"base_url"`
	Model            string   `mapstructure:"model"`
	APIKey           string   `mapstructure:"api_key"`
	MaxTokens        int      `mapstructure:"max_tokens"`
	MinLength        int      `mapstructure:"min_length"`
	RequiredKeywords []string `mapstructure:"required_keywords"`
}
