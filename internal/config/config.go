package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "SOULTHREAD_CONFIG"
	portEnv             = "PORT"
	databaseDSNEnv      = "DATABASE_DSN"
	redisAddrEnv        = "REDIS_ADDR"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	openAIModelEnv      = "OPENAI_MODEL"
	newsAPIKeyEnv       = "NEWS_API_KEY"
	perplexityAPIKeyEnv = "PERPLEXITY_API_KEY"
	resendAPIKeyEnv     = "RESEND_API_KEY"
	cronSecretEnv       = "CRON_SECRET"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Providers ProvidersConfig `yaml:"providers"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Email     EmailConfig     `yaml:"email"`
	Cron      CronConfig      `yaml:"cron"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the news cache when Addr is set.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

// TTL resolves the cache lifetime with a one hour default.
func (r RedisConfig) TTL() time.Duration {
	if r.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.TTLMinutes) * time.Minute
}

// ProvidersConfig groups settings for the news sources.
type ProvidersConfig struct {
	NewsAPI    NewsAPIConfig    `yaml:"newsApi"`
	Reddit     RedditConfig     `yaml:"reddit"`
	HackerNews HackerNewsConfig `yaml:"hackerNews"`
	GitHub     GitHubConfig     `yaml:"github"`
	Perplexity PerplexityConfig `yaml:"perplexity"`
	RSSFeeds   []RSSFeedConfig  `yaml:"rssFeeds"`
}

// NewsAPIConfig wires the keyed headlines provider.
type NewsAPIConfig struct {
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseUrl"`
	Category string `yaml:"category"`
	PageSize int    `yaml:"pageSize"`
}

// RedditConfig wires the unkeyed Reddit hot-posts provider.
type RedditConfig struct {
	BaseURL   string `yaml:"baseUrl"`
	Subreddit string `yaml:"subreddit"`
	Limit     int    `yaml:"limit"`
}

// HackerNewsConfig wires the Firebase top-stories provider.
type HackerNewsConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Limit   int    `yaml:"limit"`
}

// GitHubConfig wires the trending-repositories provider.
type GitHubConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	Language string `yaml:"language"`
	Limit    int    `yaml:"limit"`
}

// PerplexityConfig wires the keyed real-time search provider.
type PerplexityConfig struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// RSSFeedConfig describes one syndication feed to pull.
type RSSFeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// OpenAIConfig defines how to contact the chat-completions API.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	AuxModel string `yaml:"auxModel"`
	APIKey   string `yaml:"apiKey"`
}

// EmailConfig wires the Resend delivery provider and batch pacing.
type EmailConfig struct {
	APIKey           string `yaml:"apiKey"`
	Endpoint         string `yaml:"endpoint"`
	From             string `yaml:"from"`
	BatchSize        int    `yaml:"batchSize"`
	BatchDelayMillis int    `yaml:"batchDelayMillis"`
}

// BatchDelay resolves the pause between send batches.
func (e EmailConfig) BatchDelay() time.Duration {
	if e.BatchDelayMillis <= 0 {
		return time.Second
	}
	return time.Duration(e.BatchDelayMillis) * time.Millisecond
}

// CronConfig controls the scheduled newsletter dispatch.
type CronConfig struct {
	Secret  string `yaml:"secret"`
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Providers.NewsAPI.APIKey = v
	}

	if v := os.Getenv(perplexityAPIKeyEnv); v != "" {
		c.Providers.Perplexity.APIKey = v
	}

	if v := os.Getenv(resendAPIKeyEnv); v != "" {
		c.Email.APIKey = v
	}

	if v := os.Getenv(cronSecretEnv); v != "" {
		c.Cron.Secret = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server = override.Server
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Redis.Addr != "" {
		base.Redis.Addr = override.Redis.Addr
	}
	if override.Redis.TTLMinutes > 0 {
		base.Redis.TTLMinutes = override.Redis.TTLMinutes
	}

	base.Providers = mergeProviders(base.Providers, override.Providers)

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.AuxModel != "" {
		base.OpenAI.AuxModel = override.OpenAI.AuxModel
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.Email.APIKey != "" {
		base.Email.APIKey = override.Email.APIKey
	}
	if override.Email.Endpoint != "" {
		base.Email.Endpoint = override.Email.Endpoint
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}
	if override.Email.BatchSize > 0 {
		base.Email.BatchSize = override.Email.BatchSize
	}
	if override.Email.BatchDelayMillis > 0 {
		base.Email.BatchDelayMillis = override.Email.BatchDelayMillis
	}

	if override.Cron.Secret != "" {
		base.Cron.Secret = override.Cron.Secret
	}
	if override.Cron.Enabled {
		base.Cron.Enabled = true
	}
	if override.Cron.Spec != "" {
		base.Cron.Spec = override.Cron.Spec
	}

	return base
}

func mergeProviders(base, override ProvidersConfig) ProvidersConfig {
	if override.NewsAPI.APIKey != "" {
		base.NewsAPI.APIKey = override.NewsAPI.APIKey
	}
	if override.NewsAPI.BaseURL != "" {
		base.NewsAPI.BaseURL = override.NewsAPI.BaseURL
	}
	if override.NewsAPI.Category != "" {
		base.NewsAPI.Category = override.NewsAPI.Category
	}
	if override.NewsAPI.PageSize > 0 {
		base.NewsAPI.PageSize = override.NewsAPI.PageSize
	}

	if override.Reddit.BaseURL != "" {
		base.Reddit.BaseURL = override.Reddit.BaseURL
	}
	if override.Reddit.Subreddit != "" {
		base.Reddit.Subreddit = override.Reddit.Subreddit
	}
	if override.Reddit.Limit > 0 {
		base.Reddit.Limit = override.Reddit.Limit
	}

	if override.HackerNews.BaseURL != "" {
		base.HackerNews.BaseURL = override.HackerNews.BaseURL
	}
	if override.HackerNews.Limit > 0 {
		base.HackerNews.Limit = override.HackerNews.Limit
	}

	if override.GitHub.BaseURL != "" {
		base.GitHub.BaseURL = override.GitHub.BaseURL
	}
	if override.GitHub.Language != "" {
		base.GitHub.Language = override.GitHub.Language
	}
	if override.GitHub.Limit > 0 {
		base.GitHub.Limit = override.GitHub.Limit
	}

	if override.Perplexity.APIKey != "" {
		base.Perplexity.APIKey = override.Perplexity.APIKey
	}
	if override.Perplexity.Endpoint != "" {
		base.Perplexity.Endpoint = override.Perplexity.Endpoint
	}
	if override.Perplexity.Model != "" {
		base.Perplexity.Model = override.Perplexity.Model
	}

	if len(override.RSSFeeds) > 0 {
		base.RSSFeeds = override.RSSFeeds
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: "8080"},
		Logging: LoggingConfig{Level: "info"},
		Redis:   RedisConfig{TTLMinutes: 60},
		Providers: ProvidersConfig{
			NewsAPI: NewsAPIConfig{
				BaseURL:  "https://newsapi.org/v2",
				Category: "technology",
				PageSize: 5,
			},
			Reddit: RedditConfig{
				BaseURL:   "https://www.reddit.com",
				Subreddit: "technology",
				Limit:     5,
			},
			HackerNews: HackerNewsConfig{
				BaseURL: "https://hacker-news.firebaseio.com",
				Limit:   5,
			},
			GitHub: GitHubConfig{
				BaseURL:  "https://api.github.com",
				Language: "javascript",
				Limit:    10,
			},
			Perplexity: PerplexityConfig{
				Endpoint: "https://api.perplexity.ai/chat/completions",
				Model:    "sonar",
			},
		},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			AuxModel: "gpt-3.5-turbo",
		},
		Email: EmailConfig{
			Endpoint:         "https://api.resend.com/emails",
			From:             "SoulThread Newsletter <newsletter@soulthread.app>",
			BatchSize:        10,
			BatchDelayMillis: 1000,
		},
		Cron: CronConfig{Spec: "0 * * * *"},
	}
}
