package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed default.yaml
var defaultPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Deck   DeckPrompts   `yaml:"deck"`
}

type SystemPrompts struct {
	Deck  string `yaml:"deck"`
	Slide string `yaml:"slide"`
}

type DeckPrompts struct {
	Generate   string `yaml:"generate"`
	Regenerate string `yaml:"regenerate"`
}

type DeckParams struct {
	Topic       string
	Audience    string
	Objective   string
	Situation   string
	Insights    string
	SlideCount  int
	BulletCount int
}

type SlideParams struct {
	Title       string
	Bullets     []string
	Notes       string
	Context     string
	BulletCount int
}

// NumberedBullets lists the bullets one per line as "1. text".
func (p SlideParams) NumberedBullets() string {
	lines := make([]string, len(p.Bullets))
	for i, b := range p.Bullets {
		lines[i] = fmt.Sprintf("%d. %s", i+1, b)
	}
	return strings.Join(lines, "\n")
}

// Load reads prompts.yaml from the working directory and falls back to the
// built-in prompts when the file does not exist.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return p, err
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}

	return p, nil
}

// Default returns the built-in prompts.
func Default() *Prompts {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		panic(fmt.Sprintf("prompts: invalid embedded default.yaml: %v", err))
	}
	return &p
}

func (p *Prompts) RenderDeck(params DeckParams) (string, error) {
	return render(p.Deck.Generate, params)
}

func (p *Prompts) RenderSlide(params SlideParams) (string, error) {
	return render(p.Deck.Regenerate, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
