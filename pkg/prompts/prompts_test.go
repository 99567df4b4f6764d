package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()

	promptsContent := `
system:
  deck: "Deck system prompt"
  slide: "Slide system prompt"

deck:
  generate: "Make {{.SlideCount}} slides about {{.Topic}}"
  regenerate: "Improve {{.Title}}"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "prompts.yaml"), []byte(promptsContent), 0644); err != nil {
		t.Fatal(err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.System.Deck != "Deck system prompt" {
		t.Errorf("System.Deck = %q, want %q", p.System.Deck, "Deck system prompt")
	}
	if p.System.Slide != "Slide system prompt" {
		t.Errorf("System.Slide = %q, want %q", p.System.Slide, "Slide system prompt")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.Contains(p.System.Deck, "valid JSON only") {
		t.Errorf("System.Deck = %q, want built-in prompt", p.System.Deck)
	}
}

func TestLoadFromPartialOverride(t *testing.T) {
	tmpDir := t.TempDir()
	promptsPath := filepath.Join(tmpDir, "custom.yaml")

	promptsContent := `
system:
  deck: "Custom deck"
`
	if err := os.WriteFile(promptsPath, []byte(promptsContent), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFrom(promptsPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if p.System.Deck != "Custom deck" {
		t.Errorf("System.Deck = %q, want %q", p.System.Deck, "Custom deck")
	}
	if p.Deck.Generate == "" {
		t.Error("Deck.Generate is empty, want built-in template kept")
	}
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom("/nonexistent/path.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	promptsPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(promptsPath, []byte("system: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(promptsPath); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestRenderDeck(t *testing.T) {
	tests := []struct {
		name       string
		params     DeckParams
		wantSubstr []string
	}{
		{
			name: "withInsights",
			params: DeckParams{
				Topic: "Investor Pitch", Audience: "VCs", Objective: "Raise", Situation: "Early",
				Insights: "Strong retention", SlideCount: 5, BulletCount: 4,
			},
			wantSubstr: []string{"5-slide", "Topic: Investor Pitch", "Audience: VCs", "Key Insights: Strong retention", "4 bullet points", `"imageKeyword"`},
		},
		{
			name:       "withoutInsights",
			params:     DeckParams{Topic: "T", Audience: "A", Objective: "O", Situation: "S", SlideCount: 5, BulletCount: 4},
			wantSubstr: []string{"Key Insights: Not provided"},
		},
	}

	p := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.RenderDeck(tt.params)
			if err != nil {
				t.Fatalf("RenderDeck() error = %v", err)
			}
			for _, want := range tt.wantSubstr {
				if !strings.Contains(got, want) {
					t.Errorf("RenderDeck() missing %q", want)
				}
			}
		})
	}
}

func TestRenderSlide(t *testing.T) {
	tests := []struct {
		name        string
		params      SlideParams
		wantSubstr  []string
		wantMissing string
	}{
		{
			name: "numberedBullets",
			params: SlideParams{
				Title: "Old title", Bullets: []string{"first", "second"}, Notes: "say hi", BulletCount: 4,
			},
			wantSubstr:  []string{"Title: Old title", "1. first\n2. second", "Speaker Notes: say hi"},
			wantMissing: "Additional Context",
		},
		{
			name:       "withContext",
			params:     SlideParams{Title: "T", Bullets: []string{"b"}, Notes: "n", Context: "make it punchier", BulletCount: 4},
			wantSubstr: []string{"Additional Context: make it punchier"},
		},
	}

	p := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.RenderSlide(tt.params)
			if err != nil {
				t.Fatalf("RenderSlide() error = %v", err)
			}
			for _, want := range tt.wantSubstr {
				if !strings.Contains(got, want) {
					t.Errorf("RenderSlide() missing %q in:\n%s", want, got)
				}
			}
			if tt.wantMissing != "" && strings.Contains(got, tt.wantMissing) {
				t.Errorf("RenderSlide() unexpectedly contains %q", tt.wantMissing)
			}
		})
	}
}

func TestRenderInvalidTemplate(t *testing.T) {
	p := &Prompts{Deck: DeckPrompts{Generate: "{{.Topic"}}
	if _, err := p.RenderDeck(DeckParams{}); err == nil {
		t.Error("expected error for invalid template")
	}
}
