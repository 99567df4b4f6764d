package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"slidesmith/internal/deck"
	"slidesmith/pkg/prompts"
)

type fakeCompleter struct {
	content string
	err     error
	got     []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.got = append(f.got, req)
	return f.content, f.err
}

func investorPitch() deck.Brief {
	return deck.Brief{
		Topic:     "Investor Pitch",
		Audience:  "Seed investors",
		Objective: "Raise a $1.5M seed round",
		Situation: "Product in beta with 40 paying pilots",
		Insights:  "Pilots renew at 95%",
	}
}

func validDeckJSON() string {
	type slide struct {
		Title        string   `json:"title"`
		Bullets      []string `json:"bullets"`
		Notes        string   `json:"notes"`
		ImageKeyword string   `json:"imageKeyword"`
	}
	slides := make([]slide, deck.SlideCount)
	for i := range slides {
		slides[i] = slide{
			Title:        "Slide title",
			Bullets:      []string{"one", "two", "three", "four"},
			Notes:        "Say something useful.",
			ImageKeyword: "city skyline",
		}
	}
	return mustJSON(map[string]any{"slides": slides})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func TestChatEngineGenerateDeck(t *testing.T) {
	completer := &fakeCompleter{content: validDeckJSON()}
	engine := NewChatEngine(completer, prompts.Default(), Temperatures{Generate: 0.7, Regenerate: 0.8})

	drafts, err := engine.GenerateDeck(context.Background(), investorPitch())
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if len(drafts) != deck.SlideCount {
		t.Fatalf("GenerateDeck() returned %d drafts, want %d", len(drafts), deck.SlideCount)
	}

	if len(completer.got) != 1 {
		t.Fatalf("completer called %d times, want 1", len(completer.got))
	}
	req := completer.got[0]
	if req.Shape != ShapeDeck {
		t.Errorf("Shape = %v, want deck", req.Shape)
	}
	if req.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", req.Temperature)
	}
	for _, want := range []string{"Topic: Investor Pitch", "Audience: Seed investors", "Key Insights: Pilots renew at 95%"} {
		if !strings.Contains(req.User, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(req.System, "valid JSON only") {
		t.Errorf("System = %q, want deck system prompt", req.System)
	}
}

func TestChatEngineGenerateDeckErrors(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
	}{
		{name: "upstreamError", completer: &fakeCompleter{err: errors.New("rate limited")}},
		{name: "emptyContent", completer: &fakeCompleter{content: ""}},
		{name: "notJSON", completer: &fakeCompleter{content: "Sure! Here is your deck."}},
		{name: "wrongShape", completer: &fakeCompleter{content: `{"slides":[]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewChatEngine(tt.completer, nil, Temperatures{})
			_, err := engine.GenerateDeck(context.Background(), investorPitch())
			if !errors.Is(err, deck.ErrGeneration) {
				t.Errorf("GenerateDeck() error = %v, want ErrGeneration", err)
			}
		})
	}
}

func TestChatEngineRegenerateSlide(t *testing.T) {
	completer := &fakeCompleter{content: `{"title":"Sharper","bullets":["a","b","c","d"],"notes":"Land the point."}`}
	engine := NewChatEngine(completer, prompts.Default(), Temperatures{Generate: 0.7, Regenerate: 0.8})

	text, err := engine.RegenerateSlide(context.Background(), RegenerateRequest{
		Title:   "Old",
		Bullets: []string{"x", "y"},
		Notes:   "n",
		Context: "focus on cost",
	})
	if err != nil {
		t.Fatalf("RegenerateSlide() error = %v", err)
	}
	if text.Title != "Sharper" || len(text.Bullets) != 4 {
		t.Errorf("RegenerateSlide() = %+v", text)
	}

	req := completer.got[0]
	if req.Shape != ShapeSlide || req.Temperature != 0.8 {
		t.Errorf("request shape/temperature = %v/%v, want slide/0.8", req.Shape, req.Temperature)
	}
	if !strings.Contains(req.User, "Additional Context: focus on cost") {
		t.Errorf("prompt missing context:\n%s", req.User)
	}
}

func TestMockGenerateDeck(t *testing.T) {
	m := &Mock{}
	drafts, err := m.GenerateDeck(context.Background(), investorPitch())
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}

	if len(drafts) != deck.SlideCount {
		t.Fatalf("got %d drafts, want %d", len(drafts), deck.SlideCount)
	}
	for i, d := range drafts {
		if d.Title == "" || d.Notes == "" || d.ImageKeyword == "" {
			t.Errorf("draft %d incomplete: %+v", i, d)
		}
		if len(d.Bullets) != deck.BulletCount {
			t.Errorf("draft %d has %d bullets", i, len(d.Bullets))
		}
		for j, b := range d.Bullets {
			if strings.TrimSpace(b) == "" {
				t.Errorf("draft %d bullet %d empty", i, j)
			}
		}
	}
	if !strings.Contains(drafts[0].Title, "Investor Pitch") {
		t.Errorf("first title = %q, want topic", drafts[0].Title)
	}
}

func TestMockOutputPassesValidation(t *testing.T) {
	drafts, err := (&Mock{}).GenerateDeck(context.Background(), investorPitch())
	if err != nil {
		t.Fatal(err)
	}

	reparsed, err := ParseDeck(mustJSON(map[string]any{"slides": drafts}))
	if err != nil {
		t.Fatalf("ParseDeck(mock output) error = %v", err)
	}
	if len(reparsed) != deck.SlideCount {
		t.Errorf("got %d drafts", len(reparsed))
	}
}

func TestMockRegenerateSlide(t *testing.T) {
	text, err := (&Mock{}).RegenerateSlide(context.Background(), RegenerateRequest{
		Title:   "Budget",
		Bullets: []string{"one", "", "two"},
		Context: "mention Q4",
	})
	if err != nil {
		t.Fatalf("RegenerateSlide() error = %v", err)
	}
	if len(text.Bullets) != deck.BulletCount {
		t.Errorf("bullets = %v, want %d", text.Bullets, deck.BulletCount)
	}
	if !strings.Contains(text.Notes, "mention Q4") {
		t.Errorf("notes = %q, want context carried", text.Notes)
	}
}

func TestMockRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Mock{Delay: time.Second}).GenerateDeck(ctx, investorPitch())
	if !errors.Is(err, deck.ErrGeneration) || !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateDeck() error = %v, want ErrGeneration wrapping context.Canceled", err)
	}
}
