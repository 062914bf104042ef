package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"ai"`
	Survey struct {
		TaxonomyPath         string `yaml:"taxonomy_path"`         // optional override of the embedded label table
		ConsolidateThreshold int    `yaml:"consolidate_threshold"` // singleton sections above this get merged
	} `yaml:"survey"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	var cfg Config

	// 2. Load YAML config when present; a missing file falls back to defaults.
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("SURVEYENGINE_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("SURVEYENGINE_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("SURVEYENGINE_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if threshold := os.Getenv("SURVEYENGINE_CONSOLIDATE_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			cfg.Survey.ConsolidateThreshold = n
		}
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "surveys.db"
	}
	return &cfg, nil
}
