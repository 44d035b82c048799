package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	LLMBatchSize    int    `yaml:"llm_batch_size"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	MaxTranscriptChars int `yaml:"max_transcript_chars"`
	MaxSummaryChars    int `yaml:"max_summary_chars"`

	DBPath         string `yaml:"db_path"`
	DraftOutputDir string `yaml:"draft_output_dir"`

	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	CleanupSchedule   string `yaml:"cleanup_schedule"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	NotifyChannelID string `yaml:"notify_channel_id"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMBatchSize, "LLM_BATCH_SIZE")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverrideInt(&cfg.MaxTranscriptChars, "MAX_TRANSCRIPT_CHARS")
	envOverrideInt(&cfg.MaxSummaryChars, "MAX_SUMMARY_CHARS")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.DraftOutputDir, "DRAFT_OUTPUT_DIR")
	envOverrideInt(&cfg.SessionTTLMinutes, "SESSION_TTL_MINUTES")
	envOverride(&cfg.CleanupSchedule, "CLEANUP_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.NotifyChannelID, "NOTIFY_CHANNEL_ID")

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.LLMBatchSize == 0 {
		cfg.LLMBatchSize = 10
	}
	if cfg.MaxTranscriptChars == 0 {
		cfg.MaxTranscriptChars = 30000
	}
	if cfg.MaxSummaryChars == 0 {
		cfg.MaxSummaryChars = 10000
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./dssreview.db"
	}
	if cfg.DraftOutputDir == "" {
		cfg.DraftOutputDir = "./output"
	}
	if cfg.SessionTTLMinutes == 0 {
		cfg.SessionTTLMinutes = 240
	}
	if cfg.CleanupSchedule == "" {
		cfg.CleanupSchedule = "0 * * * *"
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.LLMBatchSize < 1 {
		log.Fatalf("invalid llm_batch_size '%d': must be >= 1", cfg.LLMBatchSize)
	}
	if cfg.MaxTranscriptChars < 1000 {
		log.Fatalf("invalid max_transcript_chars '%d': must be >= 1000", cfg.MaxTranscriptChars)
	}
	if cfg.MaxSummaryChars < 500 {
		log.Fatalf("invalid max_summary_chars '%d': must be >= 500", cfg.MaxSummaryChars)
	}
	if cfg.SessionTTLMinutes < 1 {
		log.Fatalf("invalid session_ttl_minutes '%d': must be >= 1", cfg.SessionTTLMinutes)
	}
	if cfg.SlackBotToken == "" && cfg.NotifyChannelID != "" {
		log.Fatalf("notify_channel_id is set but slack_bot_token is empty")
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// NotifyConfigured reports whether Slack notifications should be sent.
func (c Config) NotifyConfigured() bool {
	return strings.TrimSpace(c.SlackBotToken) != "" && strings.TrimSpace(c.NotifyChannelID) != ""
}
