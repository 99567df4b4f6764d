package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath         = "config.yaml"
	defaultLLMProvider        = "openai"
	defaultOpenAIModel        = "gpt-4o-mini"
	defaultGroqModel          = "llama-3.3-70b-versatile"
	defaultGeminiModel        = "gemini-2.0-flash"
	defaultGeminiLocation     = "us-central1"
	defaultTemperature        = 0.7
	defaultRegenTemperature   = 0.8
	defaultAppName            = "slidesmith"
	defaultImageTimeout       = 8 * time.Second
	defaultImageCacheTTL      = 24 * time.Hour
	defaultStoreDriver        = "sqlite"
	defaultSQLitePath         = "./data/slidesmith.db"
	defaultOutputDir          = "./output"
	defaultExportSink         = "local"
	defaultGCSPrefix          = "exports"
	defaultExportTimeout      = 30 * time.Second
	defaultServerAddr         = ":8080"
	defaultServerReadTimeout  = 15 * time.Second
	defaultServerWriteTimeout = 120 * time.Second
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SinkLocal = "local"
	SinkGCS   = "gcs"
)

type Config struct {
	OpenAIAPIKey      string
	GroqAPIKey        string
	UnsplashAccessKey string
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	GCSBucket         string
	GCPProject        string

	LLM     LLMConfig     `yaml:"llm"`
	Images  ImagesConfig  `yaml:"images"`
	Store   StoreConfig   `yaml:"store"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
	Secrets SecretsConfig `yaml:"secrets"`
}

type LLMConfig struct {
	Provider              string        `yaml:"provider"` // "openai", "groq", "gemini" or "mock"
	Model                 string        `yaml:"model"`
	Temperature           float64       `yaml:"temperature"`
	RegenerateTemperature float64       `yaml:"regenerate_temperature"`
	GeminiLocation        string        `yaml:"gemini_location"`
	MockDelay             time.Duration `yaml:"mock_delay"`
}

type ImagesConfig struct {
	Disabled bool          `yaml:"disabled"`
	AppName  string        `yaml:"app_name"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"` // "sqlite" or "postgres"
	SQLitePath string `yaml:"sqlite_path"`
}

type ExportConfig struct {
	OutputDir string        `yaml:"output_dir"`
	Sink      string        `yaml:"sink"` // "local" or "gcs"
	GCSPrefix string        `yaml:"gcs_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type SecretsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads .env and config.yaml from the working directory. Both files are
// optional; secrets missing from the environment are looked up in Secret
// Manager when enabled.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := load(defaultConfigPath, true)
	if err != nil {
		return nil, err
	}
	return finish(ctx, cfg)
}

// LoadFrom is Load with an explicit config file, which must exist.
func LoadFrom(ctx context.Context, path string) (*Config, error) {
	cfg, err := load(path, false)
	if err != nil {
		return nil, err
	}
	return finish(ctx, cfg)
}

func load(path string, optional bool) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		GCPProject:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	if err := loadYAMLConfig(cfg, path); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		slog.Debug("No config.yaml found, using defaults")
	}

	applyDefaults(cfg)
	return cfg, nil
}

func finish(ctx context.Context, cfg *Config) (*Config, error) {
	if cfg.Secrets.Enabled && cfg.GCPProject != "" {
		source, err := NewSecretManagerSource(ctx, cfg.GCPProject)
		if err != nil {
			return nil, err
		}
		defer func() { _ = source.Close() }()

		if err := ResolveSecrets(ctx, cfg, source); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks the enumerated settings. Missing credentials are reported
// when the component that needs them is built.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGroq, ProviderGemini, ProviderMock:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Export.Sink {
	case SinkLocal, SinkGCS:
	default:
		return fmt.Errorf("unknown export sink %q", c.Export.Sink)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	applyLLMDefaults(cfg)
	applyImagesDefaults(cfg)
	applyStoreDefaults(cfg)
	applyExportDefaults(cfg)
	applyServerDefaults(cfg)
}

func applyLLMDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaultLLMProvider
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case ProviderGroq:
			cfg.LLM.Model = defaultGroqModel
		case ProviderGemini:
			cfg.LLM.Model = defaultGeminiModel
		default:
			cfg.LLM.Model = defaultOpenAIModel
		}
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = defaultTemperature
	}
	if cfg.LLM.RegenerateTemperature == 0 {
		cfg.LLM.RegenerateTemperature = defaultRegenTemperature
	}
	if cfg.LLM.GeminiLocation == "" {
		cfg.LLM.GeminiLocation = defaultGeminiLocation
	}
}

func applyImagesDefaults(cfg *Config) {
	if cfg.Images.AppName == "" {
		cfg.Images.AppName = defaultAppName
	}
	if cfg.Images.Timeout == 0 {
		cfg.Images.Timeout = defaultImageTimeout
	}
	if cfg.Images.CacheTTL == 0 {
		cfg.Images.CacheTTL = defaultImageCacheTTL
	}
}

func applyStoreDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		if cfg.DatabaseURL != "" {
			cfg.Store.Driver = DriverPostgres
		} else {
			cfg.Store.Driver = defaultStoreDriver
		}
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = defaultSQLitePath
	}
}

func applyExportDefaults(cfg *Config) {
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = defaultOutputDir
	}
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = defaultExportSink
	}
	if cfg.Export.GCSPrefix == "" {
		cfg.Export.GCSPrefix = defaultGCSPrefix
	}
	if cfg.Export.Timeout == 0 {
		cfg.Export.Timeout = defaultExportTimeout
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerWriteTimeout
	}
}
