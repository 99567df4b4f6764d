package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(orig) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	return tmp
}

func TestLoadFromYAML(t *testing.T) {
	tmp := chdirTemp(t)

	yaml := `
llm:
  provider: groq
  model: test-model
  temperature: 0.3
images:
  app_name: deckbot
  timeout: 3s
store:
  driver: sqlite
  sqlite_path: ./test.db
export:
  sink: local
  output_dir: ./decks
`
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(yaml), 0644)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LLM.Provider != "groq" {
		t.Errorf("LLM.Provider = %q, want groq", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "test-model" {
		t.Errorf("LLM.Model = %q, want test-model", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("LLM.Temperature = %v, want 0.3", cfg.LLM.Temperature)
	}
	if cfg.LLM.RegenerateTemperature != defaultRegenTemperature {
		t.Errorf("LLM.RegenerateTemperature = %v, want %v", cfg.LLM.RegenerateTemperature, defaultRegenTemperature)
	}
	if cfg.Images.AppName != "deckbot" {
		t.Errorf("Images.AppName = %q, want deckbot", cfg.Images.AppName)
	}
	if cfg.Images.Timeout != 3*time.Second {
		t.Errorf("Images.Timeout = %v, want 3s", cfg.Images.Timeout)
	}
	if cfg.Export.OutputDir != "./decks" {
		t.Errorf("Export.OutputDir = %q, want ./decks", cfg.Export.OutputDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("OPENAI_API_KEY", "test-openai")
	t.Setenv("UNSPLASH_ACCESS_KEY", "test-unsplash")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.OpenAIAPIKey != "test-openai" {
		t.Errorf("OpenAIAPIKey = %q, want test-openai", cfg.OpenAIAPIKey)
	}
	if cfg.UnsplashAccessKey != "test-unsplash" {
		t.Errorf("UnsplashAccessKey = %q, want test-unsplash", cfg.UnsplashAccessKey)
	}
	if cfg.GCPProject != "test-project" {
		t.Errorf("GCPProject = %q, want test-project", cfg.GCPProject)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LLM.Provider != ProviderOpenAI || cfg.LLM.Model != defaultOpenAIModel {
		t.Errorf("LLM = %+v, want openai defaults", cfg.LLM)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Export.Sink != SinkLocal {
		t.Errorf("Export.Sink = %q, want local", cfg.Export.Sink)
	}
	if cfg.Server.Addr != defaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, defaultServerAddr)
	}
}

func TestLoadDatabaseURLSelectsPostgres(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/slidesmith")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("Store.Driver = %q, want postgres", cfg.Store.Driver)
	}
}

func TestLoadFromMissingConfigFile(t *testing.T) {
	tmp := chdirTemp(t)

	_, err := LoadFrom(context.Background(), filepath.Join(tmp, "missing.yaml"))
	if err == nil {
		t.Error("LoadFrom() should fail when the config file is missing")
	}
}

func TestLoadRejectsUnknownSettings(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknownProvider", yaml: "llm:\n  provider: claude-in-a-box"},
		{name: "unknownDriver", yaml: "store:\n  driver: mongo"},
		{name: "unknownSink", yaml: "export:\n  sink: ftp"},
		{name: "malformed", yaml: "llm: [oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := chdirTemp(t)
			_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(tt.yaml), 0644)

			if _, err := Load(context.Background()); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

type fakeSecrets struct {
	values map[string]string
	err    error
	asked  []string
}

func (f *fakeSecrets) Secret(_ context.Context, name string) (string, error) {
	f.asked = append(f.asked, name)
	if f.err != nil {
		return "", f.err
	}
	return f.values[name], nil
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "from-env"}
	source := &fakeSecrets{values: map[string]string{
		"OPENAI_API_KEY":      "from-secret-manager",
		"UNSPLASH_ACCESS_KEY": "unsplash-secret",
	}}

	if err := ResolveSecrets(context.Background(), cfg, source); err != nil {
		t.Fatalf("ResolveSecrets() error = %v", err)
	}

	if cfg.OpenAIAPIKey != "from-env" {
		t.Errorf("OpenAIAPIKey = %q, environment value should win", cfg.OpenAIAPIKey)
	}
	if cfg.UnsplashAccessKey != "unsplash-secret" {
		t.Errorf("UnsplashAccessKey = %q, want unsplash-secret", cfg.UnsplashAccessKey)
	}
	if cfg.GroqAPIKey != "" {
		t.Errorf("GroqAPIKey = %q, want empty", cfg.GroqAPIKey)
	}
	for _, name := range source.asked {
		if name == "OPENAI_API_KEY" {
			t.Error("ResolveSecrets() looked up a secret already set in the environment")
		}
	}
}

func TestResolveSecretsError(t *testing.T) {
	boom := errors.New("permission denied")
	err := ResolveSecrets(context.Background(), &Config{}, &fakeSecrets{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("ResolveSecrets() error = %v, want %v", err, boom)
	}
}
