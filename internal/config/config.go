package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderFake   = "fake"
)

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslMode"`
}

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		MaxUploadMB    int64    `yaml:"maxUploadMB"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | text
	} `yaml:"log"`

	AI struct {
		Provider string `yaml:"provider"` // gemini | openai | fake
		APIKey   string `yaml:"apiKey"`
		BaseURL  string `yaml:"baseURL"`
		Model    string `yaml:"model"`
	} `yaml:"ai"`

	Session struct {
		Timezone string `yaml:"timezone"`
		NodeID   int64  `yaml:"nodeID"`
	} `yaml:"session"`

	Auth struct {
		// official name -> API key; empty disables auth
		Keys map[string]string `yaml:"keys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Archive struct {
		Driver   string   `yaml:"driver"` // "" | mysql | postgres
		Database Database `yaml:"database"`
	} `yaml:"archive"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.MaxUploadMB = 20
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.AI.Provider = ProviderGemini
	cfg.Session.Timezone = "Local"
	cfg.Session.NodeID = 1
	cfg.RateLimit.Capacity = 30
	cfg.RateLimit.RefillRate = 1
	cfg.Minio.BucketName = "complaint-documents"
	return &cfg
}

// Load baca file config.yaml lalu override dari environment.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ARCHIVE_DRIVER"); v != "" {
		cfg.Archive.Driver = v
	}
	if v := os.Getenv("ARCHIVE_DB_PASSWORD"); v != "" {
		cfg.Archive.Database.Password = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Minio.SecretKey = v
	}
}

// Validate checks the loaded config. A missing credential is fatal at startup.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
		if strings.TrimSpace(c.AI.APIKey) == "" {
			return ai.ErrMissingCredential
		}
	case ProviderFake:
	default:
		return fmt.Errorf("ai.provider %q is not supported (gemini, openai, fake)", c.AI.Provider)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Session.NodeID < 0 || c.Session.NodeID > 1023 {
		return fmt.Errorf("session.nodeID %d out of range (0-1023)", c.Session.NodeID)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("session.timezone: %w", err)
	}

	switch c.Archive.Driver {
	case "":
	case "mysql", "postgres":
		if c.Archive.Database.Host == "" || c.Archive.Database.Name == "" {
			return fmt.Errorf("archive.database host and name must be set for driver %s", c.Archive.Driver)
		}
	default:
		return fmt.Errorf("archive.driver %q is not supported (mysql, postgres)", c.Archive.Driver)
	}

	if c.Minio.Endpoint != "" && c.Minio.BucketName == "" {
		return errors.New("minio.bucketName must be set when minio.endpoint is set")
	}
	return nil
}

// Location resolves session.timezone for history timestamps.
func (c *Config) Location() (*time.Location, error) {
	if c.Session.Timezone == "" || c.Session.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Session.Timezone)
}

// MaxUploadBytes is the multipart limit for extraction uploads.
func (c *Config) MaxUploadBytes() int64 {
	if c.Server.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return c.Server.MaxUploadMB << 20
}

// AIBaseURL picks the endpoint for the configured provider.
func (c *Config) AIBaseURL() string {
	if c.AI.BaseURL != "" {
		return c.AI.BaseURL
	}
	if c.AI.Provider == ProviderOpenAI {
		return "https://api.openai.com/v1"
	}
	return "" // client default, Gemini OpenAI-compatible endpoint
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	d := c.Archive.Database
	port := d.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User, d.Password, d.Host, port, d.Name)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	d := c.Archive.Database
	port := d.Port
	if port == 0 {
		port = 5432
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}
