package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string        `envconfig:"OPENAI_API_KEY"`
	NLUModel     string        `envconfig:"NLU_MODEL" default:"gpt-4o-mini"`
	NLUTimeout   time.Duration `envconfig:"NLU_TIMEOUT" default:"3s"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"dukaan-archive"`
	S3Region    string `envconfig:"S3_REGION" default:"ap-south-1"`

	// Interaction archival: rows older than ArchiveAfter are exported to
	// S3 and removed on each ArchiveInterval tick.
	ArchiveAfter    time.Duration `envconfig:"ARCHIVE_AFTER" default:"2160h"`
	ArchiveInterval time.Duration `envconfig:"ARCHIVE_INTERVAL" default:"24h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DUKAAN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
