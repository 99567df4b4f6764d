package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"slidesmith/internal/assembler"
	"slidesmith/internal/imagecache"
	"slidesmith/internal/llm"
	"slidesmith/internal/llm/gemini"
	"slidesmith/internal/llm/groq"
	"slidesmith/internal/llm/openai"
	"slidesmith/internal/pptx"
	"slidesmith/internal/storage"
	"slidesmith/internal/store"
	"slidesmith/internal/store/postgres"
	"slidesmith/internal/store/sqlite"
	"slidesmith/internal/unsplash"
	"slidesmith/pkg/config"
	"slidesmith/pkg/httputil"
	"slidesmith/pkg/prompts"
)

// BuildService wires every component selected by cfg. The caller owns the
// returned service and must Close it.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	engine, err := buildEngine(ctx, cfg, p)
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	images, cacheClient := buildImages(ctx, cfg)
	if cacheClient != nil {
		closers = append(closers, cacheClient)
	}

	sink, sinkCloser, err := buildSink(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, err
	}
	if sinkCloser != nil {
		closers = append(closers, sinkCloser)
	}

	st, err := buildStore(cfg)
	if err != nil {
		cleanup()
		return nil, err
	}

	exporter := pptx.New(httputil.NewClient(nil, 0), pptx.WithTimeout(cfg.Export.Timeout))

	return NewService(ServiceOptions{
		Config:    cfg,
		Engine:    engine,
		Images:    images,
		Assembler: assembler.New(images, assembler.WithImageTimeout(cfg.Images.Timeout)),
		Store:     st,
		Exporter:  exporter,
		Sink:      sink,
		Closers:   closers,
	}), nil
}

func buildEngine(ctx context.Context, cfg *config.Config, p *prompts.Prompts) (llm.Engine, error) {
	temps := llm.Temperatures{
		Generate:   cfg.LLM.Temperature,
		Regenerate: cfg.LLM.RegenerateTemperature,
	}

	slog.Debug("Building engine", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		engine, err := openai.NewEngine(openai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.LLM.Model}, p, temps)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case config.ProviderGroq:
		engine, err := groq.NewEngine(cfg.GroqAPIKey, cfg.LLM.Model, p, temps)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case config.ProviderGemini:
		engine, err := gemini.NewEngine(ctx, gemini.Config{
			Project:  cfg.GCPProject,
			Location: cfg.LLM.GeminiLocation,
			Model:    cfg.LLM.Model,
		}, p, temps)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case config.ProviderMock:
		return &llm.Mock{Delay: cfg.LLM.MockDelay}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// buildImages returns nil when images are disabled or no access key is set.
// An unreachable cache is logged and skipped.
func buildImages(ctx context.Context, cfg *config.Config) (unsplash.Provider, io.Closer) {
	if cfg.Images.Disabled {
		slog.Info("Slide images disabled")
		return nil, nil
	}
	if cfg.UnsplashAccessKey == "" {
		slog.Warn("Unsplash not configured (missing UNSPLASH_ACCESS_KEY), slides will have no images")
		return nil, nil
	}

	client := unsplash.NewClient(cfg.UnsplashAccessKey, cfg.Images.AppName)
	if cfg.RedisAddr == "" {
		return client, nil
	}

	rdb, err := imagecache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Image cache unavailable, continuing without it", "addr", cfg.RedisAddr, "error", err)
		return client, nil
	}
	slog.Debug("Image cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.Images.CacheTTL)
	return imagecache.New(rdb, client, cfg.Images.CacheTTL), rdb
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
		st, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildSink(ctx context.Context, cfg *config.Config) (storage.Sink, io.Closer, error) {
	switch cfg.Export.Sink {
	case config.SinkLocal:
		return storage.NewLocalStorage(cfg.Export.OutputDir), nil, nil
	case config.SinkGCS:
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.Export.GCSPrefix)
		if err != nil {
			return nil, nil, err
		}
		return gcs, gcs, nil
	default:
		return nil, nil, fmt.Errorf("unknown export sink %q", cfg.Export.Sink)
	}
}
