package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"slidesmith/internal/llm"
	"slidesmith/pkg/prompts"
)

const dailyLimit = 1500

var _ llm.Completer = (*Client)(nil)

type Client struct {
	client *genai.Client
	model  string
	usage  *usageCounter
}

type Config struct {
	Project  string
	Location string
	Model    string
}

var slideSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString, Description: "Compelling slide title, at most 8 words"},
		"bullets": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Exactly 4 concise bullet points"},
		"notes":   {Type: genai.TypeString, Description: "Speaker notes with delivery guidance"},
	},
	Required: []string{"title", "bullets", "notes"},
}

var deckSlideSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":        slideSchema.Properties["title"],
		"bullets":      slideSchema.Properties["bullets"],
		"notes":        slideSchema.Properties["notes"],
		"imageKeyword": {Type: genai.TypeString, Description: "1-3 word stock photo search term"},
	},
	Required: []string{"title", "bullets", "notes", "imageKeyword"},
}

var deckSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"slides": {Type: genai.TypeArray, Items: deckSlideSchema, Description: "Exactly 5 slides in presentation order"},
	},
	Required: []string{"slides"},
}

func schemaFor(shape llm.Shape) *genai.Schema {
	if shape == llm.ShapeSlide {
		return slideSchema
	}
	return deckSchema
}

// NewClient connects to Gemini on Vertex AI using application default
// credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("gemini requires a google cloud project")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.Project,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	home, _ := os.UserHomeDir()

	return &Client{
		client: client,
		model:  cfg.Model,
		usage:  newUsageCounter(filepath.Join(home, ".slidesmith", "gemini_usage"), dailyLimit),
	}, nil
}

func NewEngine(ctx context.Context, cfg Config, p *prompts.Prompts, temps llm.Temperatures) (*llm.ChatEngine, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewChatEngine(client, p, temps), nil
}

func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if err := c.usage.check(); err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
		Temperature:      genai.Ptr(float32(req.Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schemaFor(req.Shape),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), config)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if err := c.usage.increment(); err != nil {
		slog.Warn("Failed to record Gemini usage", "path", c.usage.path, "error", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response")
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	return text, nil
}

// usageCounter tracks requests per day in a small file of the form
// "2006-01-02:count".
type usageCounter struct {
	path  string
	limit int
	now   func() time.Time
}

func newUsageCounter(path string, limit int) *usageCounter {
	return &usageCounter{path: path, limit: limit, now: time.Now}
}

func (u *usageCounter) check() error {
	date, count := u.read()
	if date != u.today() {
		return nil
	}
	if count >= u.limit {
		return fmt.Errorf("daily limit of %d requests reached, resets tomorrow", u.limit)
	}
	return nil
}

func (u *usageCounter) increment() error {
	date, count := u.read()
	today := u.today()
	if date != today {
		count = 0
	}
	count++

	if err := os.MkdirAll(filepath.Dir(u.path), 0755); err != nil {
		return fmt.Errorf("create usage dir: %w", err)
	}
	if err := os.WriteFile(u.path, []byte(fmt.Sprintf("%s:%d", today, count)), 0644); err != nil {
		return fmt.Errorf("write usage file: %w", err)
	}
	return nil
}

func (u *usageCounter) read() (string, int) {
	data, err := os.ReadFile(u.path)
	if err != nil {
		return "", 0
	}
	parts := strings.Split(strings.TrimSpace(string(data)), ":")
	if len(parts) != 2 {
		return "", 0
	}
	count, _ := strconv.Atoi(parts[1])
	return parts[0], count
}

func (u *usageCounter) today() string {
	return u.now().Format("2006-01-02")
}
