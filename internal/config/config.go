package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"OpportunityScout/internal/model"
)

// ProducerConfig describes one research producer endpoint.
type ProducerConfig struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Research struct {
		TimeWindowDays  int              `yaml:"time_window_days"`
		TimeoutSeconds  int              `yaml:"timeout_seconds"`
		FocusCategories []string         `yaml:"focus_categories"`
		Producers       []ProducerConfig `yaml:"producers"`
	} `yaml:"research"`
	Synthesis struct {
		MinConfidence        float64 `yaml:"min_confidence"`
		SimilarityThreshold  float64 `yaml:"similarity_threshold"`
		ActionabilityWeights struct {
			Specificity float64 `yaml:"specificity"`
			Urgency     float64 `yaml:"urgency"`
			Impact      float64 `yaml:"impact"`
			Feasibility float64 `yaml:"feasibility"`
		} `yaml:"actionability_weights"`
	} `yaml:"synthesis"`
	Matching struct {
		MinMatchScore float64 `yaml:"min_match_score"`
		Workers       int     `yaml:"workers"`
	} `yaml:"matching"`
	Clients struct {
		File string `yaml:"file"`
	} `yaml:"clients"`
	Schedule struct {
		ResearchCron  string `yaml:"research_cron"`
		ExecutionCron string `yaml:"execution_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		URL        string `yaml:"url"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("RESEARCH_API_KEY"); v != "" {
		for i := range cfg.Research.Producers {
			if cfg.Research.Producers[i].APIKey == "" {
				cfg.Research.Producers[i].APIKey = v
			}
		}
	}
	if v := os.Getenv("CLIENTS_FILE"); v != "" {
		cfg.Clients.File = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MIN_MATCH_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.MinMatchScore = f
		}
	}
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Synthesis.MinConfidence = f
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Research.TimeWindowDays == 0 {
		cfg.Research.TimeWindowDays = 30
	}
	if cfg.Research.TimeoutSeconds == 0 {
		cfg.Research.TimeoutSeconds = 60
	}
	if cfg.Synthesis.MinConfidence == 0 {
		cfg.Synthesis.MinConfidence = 0.6
	}
	if cfg.Synthesis.SimilarityThreshold == 0 {
		cfg.Synthesis.SimilarityThreshold = 0.8
	}
	if cfg.Matching.MinMatchScore == 0 {
		cfg.Matching.MinMatchScore = 60.0
	}
	if cfg.Matching.Workers == 0 {
		cfg.Matching.Workers = 4
	}
	if cfg.Clients.File == "" {
		cfg.Clients.File = "data/clients.json"
	}
	if cfg.Schedule.ResearchCron == "" {
		cfg.Schedule.ResearchCron = "0 0 7 * * 1"
	}
	if cfg.Schedule.ExecutionCron == "" {
		cfg.Schedule.ExecutionCron = "0 30 7 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/opportunity_scout.db"
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 7 * 24 * 3600
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Clients.File == "" {
		return fmt.Errorf("clients.file is required")
	}
	if c.Matching.MinMatchScore < 0 || c.Matching.MinMatchScore > 100 {
		return fmt.Errorf("matching.min_match_score must be in [0,100]")
	}
	if c.Matching.Workers < 1 {
		return fmt.Errorf("matching.workers must be at least 1")
	}
	if c.Synthesis.MinConfidence < 0 || c.Synthesis.MinConfidence > 1 {
		return fmt.Errorf("synthesis.min_confidence must be in [0,1]")
	}
	if c.Synthesis.SimilarityThreshold <= 0 || c.Synthesis.SimilarityThreshold > 1 {
		return fmt.Errorf("synthesis.similarity_threshold must be in (0,1]")
	}
	for i, p := range c.Research.Producers {
		if p.Name == "" {
			return fmt.Errorf("research.producers[%d].name is required", i)
		}
		if p.BaseURL == "" {
			return fmt.Errorf("research.producers[%d].base_url is required", i)
		}
		if _, err := model.ParseCategory(p.Category); err != nil {
			return fmt.Errorf("research.producers[%d]: %w", i, err)
		}
	}
	for _, cat := range c.Research.FocusCategories {
		if _, err := model.ParseCategory(cat); err != nil {
			return fmt.Errorf("research.focus_categories: %w", err)
		}
	}
	return nil
}

// FocusCategories converts the configured focus list into model categories.
// An empty list means all categories.
func (c *Config) FocusCategories() []model.Category {
	out := make([]model.Category, 0, len(c.Research.FocusCategories))
	for _, s := range c.Research.FocusCategories {
		out = append(out, model.Category(s))
	}
	return out
}
