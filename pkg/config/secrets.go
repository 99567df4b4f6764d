package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SecretSource looks up a secret by name. An unknown secret yields "" and no error.
type SecretSource interface {
	Secret(ctx context.Context, name string) (string, error)
}

type SecretManagerSource struct {
	client  *secretmanager.Client
	project string
}

func NewSecretManagerSource(ctx context.Context, project string) (*SecretManagerSource, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	return &SecretManagerSource{client: client, project: project}, nil
}

func (s *SecretManagerSource) Close() error {
	return s.client.Close()
}

func (s *SecretManagerSource) Secret(ctx context.Context, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.project, name),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

// ResolveSecrets fills credentials left empty by the environment. Secrets are
// named after their environment variables.
func ResolveSecrets(ctx context.Context, cfg *Config, source SecretSource) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"OPENAI_API_KEY", &cfg.OpenAIAPIKey},
		{"GROQ_API_KEY", &cfg.GroqAPIKey},
		{"UNSPLASH_ACCESS_KEY", &cfg.UnsplashAccessKey},
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"REDIS_PASSWORD", &cfg.RedisPassword},
	}

	for _, field := range fields {
		if *field.value != "" {
			continue
		}
		value, err := source.Secret(ctx, field.name)
		if err != nil {
			return err
		}
		if value != "" {
			slog.Debug("Resolved secret", "name", field.name)
			*field.value = value
		}
	}
	return nil
}
