package llm

import (
	"context"
	"fmt"
	"log/slog"

	"slidesmith/internal/deck"
	"slidesmith/pkg/prompts"
)

// Engine turns a brief into slide drafts and rewrites single slides.
// Implementations validate model output before returning it; every failure
// wraps deck.ErrGeneration.
type Engine interface {
	GenerateDeck(ctx context.Context, brief deck.Brief) ([]deck.Draft, error)
	RegenerateSlide(ctx context.Context, req RegenerateRequest) (*deck.SlideText, error)
}

type RegenerateRequest struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes"`
	Context string   `json:"context,omitempty"`
}

// Shape identifies the JSON document a completion must produce.
type Shape int

const (
	ShapeDeck Shape = iota
	ShapeSlide
)

func (s Shape) String() string {
	if s == ShapeSlide {
		return "slide"
	}
	return "deck"
}

type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	Shape       Shape
}

// Completer sends a single chat completion constrained to JSON output and
// returns the raw text. It never retries.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Temperatures struct {
	Generate   float64
	Regenerate float64
}

var _ Engine = (*ChatEngine)(nil)

// ChatEngine implements Engine on top of any chat Completer.
type ChatEngine struct {
	completer Completer
	prompts   *prompts.Prompts
	temps     Temperatures
}

func NewChatEngine(completer Completer, p *prompts.Prompts, temps Temperatures) *ChatEngine {
	if p == nil {
		p = prompts.Default()
	}
	return &ChatEngine{completer: completer, prompts: p, temps: temps}
}

func (e *ChatEngine) GenerateDeck(ctx context.Context, brief deck.Brief) ([]deck.Draft, error) {
	prompt, err := e.prompts.RenderDeck(prompts.DeckParams{
		Topic:       brief.Topic,
		Audience:    brief.Audience,
		Objective:   brief.Objective,
		Situation:   brief.Situation,
		Insights:    brief.Insights,
		SlideCount:  deck.SlideCount,
		BulletCount: deck.BulletCount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %w", deck.ErrGeneration, err)
	}

	slog.Debug("Requesting deck", "topic", brief.Topic)
	content, err := e.completer.Complete(ctx, CompletionRequest{
		System:      e.prompts.System.Deck,
		User:        prompt,
		Temperature: e.temps.Generate,
		Shape:       ShapeDeck,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", deck.ErrGeneration, err)
	}

	return ParseDeck(content)
}

func (e *ChatEngine) RegenerateSlide(ctx context.Context, req RegenerateRequest) (*deck.SlideText, error) {
	prompt, err := e.prompts.RenderSlide(prompts.SlideParams{
		Title:       req.Title,
		Bullets:     req.Bullets,
		Notes:       req.Notes,
		Context:     req.Context,
		BulletCount: deck.BulletCount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %w", deck.ErrGeneration, err)
	}

	slog.Debug("Requesting slide rewrite", "title", req.Title)
	content, err := e.completer.Complete(ctx, CompletionRequest{
		System:      e.prompts.System.Slide,
		User:        prompt,
		Temperature: e.temps.Regenerate,
		Shape:       ShapeSlide,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", deck.ErrGeneration, err)
	}

	return ParseSlide(content)
}
