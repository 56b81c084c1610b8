package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets; never read from the YAML file
const (
	EnvGeminiKeys   = "GEMINI_API_KEYS"
	EnvRemoteAPIKey = "REMOTE_VIDEO_API_KEY"
	EnvMinIOAccess  = "MINIO_ACCESS_KEY"
	EnvMinIOSecret  = "MINIO_SECRET_KEY"
)

// Load reads the YAML config at path, merges secrets from the environment
// (after loading an optional .env file) and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if keys := os.Getenv(EnvGeminiKeys); keys != "" {
		c.Summarizer.APIKeys = splitList(keys)
	}
	if key := os.Getenv(EnvRemoteAPIKey); key != "" {
		c.Video.Remote.APIKey = key
	}
	if v := os.Getenv(EnvMinIOAccess); v != "" {
		c.Storage.MinIO.AccessKeyID = v
	}
	if v := os.Getenv(EnvMinIOSecret); v != "" {
		c.Storage.MinIO.SecretAccessKey = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
