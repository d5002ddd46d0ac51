package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "WIKIANSWERS_CONFIG"
	serverAddrEnv      = "SERVER_ADDR"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	openAIEndpointEnv  = "OPENAI_ENDPOINT"
	wikiAPIURLEnv      = "WIKI_API_URL"
	stagingBucketEnv   = "STAGING_BUCKET"
	stagingRegionEnv   = "AWS_REGION"
	rankingStrategyEnv = "RANKING_STRATEGY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Wiki    WikiConfig    `yaml:"wiki"`
	Staging StagingConfig `yaml:"staging"`
	Ranking RankingConfig `yaml:"ranking"`
	Fetch   FetchConfig   `yaml:"fetch"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OpenAIConfig defines how to contact the chat-completion API.
type OpenAIConfig struct {
	Endpoint         string  `yaml:"endpoint"`
	APIKey           string  `yaml:"apiKey"`
	TopicModel       string  `yaml:"topicModel"`
	SummaryModel     string  `yaml:"summaryModel"`
	Temperature      float64 `yaml:"temperature"`
	TopicMaxTokens   int     `yaml:"topicMaxTokens"`
	SummaryMaxTokens int     `yaml:"summaryMaxTokens"`
	TimeoutSeconds   int     `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-call deadline for oracle requests.
func (c OpenAIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WikiConfig points at the encyclopedia API.
type WikiConfig struct {
	APIURL         string `yaml:"apiUrl"`
	UserAgent      string `yaml:"userAgent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-call deadline for content-service requests.
func (c WikiConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StagingConfig wires the transient object store. An empty bucket disables
// staging; downloaded images are then served by their source URLs.
type StagingConfig struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// RankingConfig selects the relevance-ranking strategy by name.
type RankingConfig struct {
	Strategy string `yaml:"strategy"`
}

// FetchConfig bounds concurrent image metadata lookups and downloads.
type FetchConfig struct {
	Workers       int `yaml:"workers"`
	MaxImageBytes int `yaml:"maxImageBytes"`
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
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIEndpointEnv); v != "" {
		c.OpenAI.Endpoint = v
	}

	if v := os.Getenv(wikiAPIURLEnv); v != "" {
		c.Wiki.APIURL = v
	}

	if v := os.Getenv(stagingBucketEnv); v != "" {
		c.Staging.Bucket = v
	}

	if v := os.Getenv(stagingRegionEnv); v != "" {
		c.Staging.Region = v
	}

	if v := os.Getenv(rankingStrategyEnv); v != "" {
		c.Ranking.Strategy = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.TopicModel != "" {
		base.OpenAI.TopicModel = override.OpenAI.TopicModel
	}
	if override.OpenAI.SummaryModel != "" {
		base.OpenAI.SummaryModel = override.OpenAI.SummaryModel
	}
	if override.OpenAI.Temperature > 0 {
		base.OpenAI.Temperature = override.OpenAI.Temperature
	}
	if override.OpenAI.TopicMaxTokens > 0 {
		base.OpenAI.TopicMaxTokens = override.OpenAI.TopicMaxTokens
	}
	if override.OpenAI.SummaryMaxTokens > 0 {
		base.OpenAI.SummaryMaxTokens = override.OpenAI.SummaryMaxTokens
	}
	if override.OpenAI.TimeoutSeconds > 0 {
		base.OpenAI.TimeoutSeconds = override.OpenAI.TimeoutSeconds
	}

	if override.Wiki.APIURL != "" {
		base.Wiki.APIURL = override.Wiki.APIURL
	}
	if override.Wiki.UserAgent != "" {
		base.Wiki.UserAgent = override.Wiki.UserAgent
	}
	if override.Wiki.TimeoutSeconds > 0 {
		base.Wiki.TimeoutSeconds = override.Wiki.TimeoutSeconds
	}

	if override.Staging.Bucket != "" {
		base.Staging.Bucket = override.Staging.Bucket
	}
	if override.Staging.Region != "" {
		base.Staging.Region = override.Staging.Region
	}
	if override.Staging.PublicBaseURL != "" {
		base.Staging.PublicBaseURL = override.Staging.PublicBaseURL
	}

	if override.Ranking.Strategy != "" {
		base.Ranking.Strategy = override.Ranking.Strategy
	}

	if override.Fetch.Workers > 0 {
		base.Fetch.Workers = override.Fetch.Workers
	}
	if override.Fetch.MaxImageBytes > 0 {
		base.Fetch.MaxImageBytes = override.Fetch.MaxImageBytes
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		OpenAI: OpenAIConfig{
			Endpoint:         "https://api.openai.com/v1/chat/completions",
			TopicModel:       "gpt-4o",
			SummaryModel:     "gpt-3.5-turbo",
			Temperature:      0.5,
			TopicMaxTokens:   150,
			SummaryMaxTokens: 300,
			TimeoutSeconds:   30,
		},
		Wiki: WikiConfig{
			APIURL:         "https://en.wikipedia.org/w/api.php",
			UserAgent:      "WikiAnswers/1.0",
			TimeoutSeconds: 15,
		},
		Staging: StagingConfig{Region: "us-east-1"},
		Ranking: RankingConfig{Strategy: "fuzzy"},
		Fetch:   FetchConfig{Workers: 8, MaxImageBytes: 20 << 20},
	}
}
