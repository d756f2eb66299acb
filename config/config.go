// Package config loads application settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmoralesp95/Proyecto-IA/llm"
	"github.com/mmoralesp95/Proyecto-IA/modules/api"
	"github.com/mmoralesp95/Proyecto-IA/storage"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort        = 3000
	DefaultDataDir     = "data"
	DefaultAPIVersion  = "2024-02-01"
	DefaultAITimeout   = 60 * time.Second
	DefaultAIRateLimit = 20
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	AppSecret string `yaml:"app_secret"`
}

type StorageConfig struct {
	// Backend is "file" or "sql". Empty picks sql when a database URL is
	// set and file otherwise.
	Backend     string `yaml:"backend"`
	DataDir     string `yaml:"data_dir"`
	DatabaseURL string `yaml:"database_url"`
	Debug       bool   `yaml:"debug"`
}

type AIConfig struct {
	APIKey     string        `yaml:"api_key"`
	Endpoint   string        `yaml:"endpoint"`
	APIVersion string        `yaml:"api_version"`
	Deployment string        `yaml:"deployment"`
	Timeout    time.Duration `yaml:"timeout"`
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int `yaml:"rate_limit"`
}

// Default returns the settings used when nothing else is provided.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: DefaultPort},
		Storage: StorageConfig{
			DataDir: DefaultDataDir,
		},
		AI: AIConfig{
			APIVersion: DefaultAPIVersion,
			Timeout:    DefaultAITimeout,
			RateLimit:  DefaultAIRateLimit,
		},
	}
}

// Load builds the configuration. path may be empty, in which case CONFIG_FILE
// is consulted; a missing file path means defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	setString(&c.Server.AppSecret, "APP_SECRET")

	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.DataDir, "DATA_DIR")
	setString(&c.Storage.DatabaseURL, "DATABASE_URL")
	if v := os.Getenv("DB_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DB_DEBUG: %w", err)
		}
		c.Storage.Debug = debug
	}

	setString(&c.AI.APIKey, "AZURE_OPENAI_KEY")
	setString(&c.AI.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.AI.APIVersion, "AZURE_OPENAI_API_VERSION")
	setString(&c.AI.Deployment, "AZURE_OPENAI_DEPLOYMENT")
	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("AI_TIMEOUT: %w", err)
		}
		c.AI.Timeout = timeout
	}
	if v := os.Getenv("AI_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AI_RATE_LIMIT: %w", err)
		}
		c.AI.RateLimit = limit
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// parseTimeout accepts a Go duration ("90s") or a whole number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// resolve fills settings derived from others.
func (c *Config) resolve() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.BackendFile
		if c.Storage.DatabaseURL != "" {
			c.Storage.Backend = storage.BackendSQL
		}
	}

	if c.Server.AppSecret == "" {
		log.Println("[config] Warning: APP_SECRET not set, using an ephemeral secret; flash messages will not survive a restart")
		c.Server.AppSecret = ephemeralSecret()
	}

	if !c.LLM().Configured() {
		log.Println("[config] Azure OpenAI settings incomplete, AI endpoints will answer 503")
	}
}

func ephemeralSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("generate secret: %v", err))
	}
	return hex.EncodeToString(b)
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case storage.BackendFile:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("file storage requires a data directory")
		}
	case storage.BackendSQL:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("sql storage requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, storage.BackendFile, storage.BackendSQL)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.AI.RateLimit < 0 {
		return fmt.Errorf("AI rate limit must not be negative")
	}
	return nil
}

// StorageOptions returns the settings for storage.Open.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.Storage.Backend,
		DataDir:     c.Storage.DataDir,
		DatabaseURL: c.Storage.DatabaseURL,
		Debug:       c.Storage.Debug,
	}
}

// LLM returns the Azure OpenAI client settings.
func (c Config) LLM() llm.Config {
	return llm.Config{
		APIKey:     c.AI.APIKey,
		Endpoint:   c.AI.Endpoint,
		APIVersion: c.AI.APIVersion,
		Deployment: c.AI.Deployment,
		Timeout:    c.AI.Timeout,
	}
}

// API returns the HTTP module settings.
func (c Config) API() api.Config {
	return api.Config{
		Port:        c.Server.Port,
		AppSecret:   c.Server.AppSecret,
		AITimeout:   c.AI.Timeout,
		AIRateLimit: c.AI.RateLimit,
	}
}
