package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"slidesmith/internal/deck"
)

const maxKeywordWords = 3

type deckPayload struct {
	Slides []deck.Draft `json:"slides"`
}

// ParseDeck decodes and validates a deck completion. The result always holds
// exactly deck.SlideCount drafts with complete text.
func ParseDeck(content string) ([]deck.Draft, error) {
	var payload deckPayload
	if err := json.Unmarshal([]byte(stripFences(content)), &payload); err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", deck.ErrGeneration, err)
	}

	if len(payload.Slides) != deck.SlideCount {
		return nil, fmt.Errorf("%w: got %d slides, want %d", deck.ErrGeneration, len(payload.Slides), deck.SlideCount)
	}

	drafts := make([]deck.Draft, len(payload.Slides))
	for i, raw := range payload.Slides {
		bullets, err := cleanBullets(raw.Bullets)
		if err != nil {
			return nil, fmt.Errorf("%w: slide %d: %w", deck.ErrGeneration, i+1, err)
		}
		d := deck.Draft{
			Title:        strings.TrimSpace(raw.Title),
			Bullets:      bullets,
			Notes:        PlainText(raw.Notes),
			ImageKeyword: clipKeyword(raw.ImageKeyword),
		}
		switch {
		case d.Title == "":
			return nil, fmt.Errorf("%w: slide %d: empty title", deck.ErrGeneration, i+1)
		case d.Notes == "":
			return nil, fmt.Errorf("%w: slide %d: empty notes", deck.ErrGeneration, i+1)
		case d.ImageKeyword == "":
			return nil, fmt.Errorf("%w: slide %d: empty image keyword", deck.ErrGeneration, i+1)
		}
		drafts[i] = d
	}

	return drafts, nil
}

// ParseSlide decodes and validates a single-slide completion.
func ParseSlide(content string) (*deck.SlideText, error) {
	var raw deck.SlideText
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", deck.ErrGeneration, err)
	}

	bullets, err := cleanBullets(raw.Bullets)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", deck.ErrGeneration, err)
	}

	text := &deck.SlideText{
		Title:   strings.TrimSpace(raw.Title),
		Bullets: bullets,
		Notes:   PlainText(raw.Notes),
	}
	if text.Title == "" {
		return nil, fmt.Errorf("%w: empty title", deck.ErrGeneration)
	}
	if text.Notes == "" {
		return nil, fmt.Errorf("%w: empty notes", deck.ErrGeneration)
	}
	return text, nil
}

func cleanBullets(bullets []string) ([]string, error) {
	if len(bullets) != deck.BulletCount {
		return nil, fmt.Errorf("got %d bullets, want %d", len(bullets), deck.BulletCount)
	}
	out := make([]string, len(bullets))
	for i, b := range bullets {
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, fmt.Errorf("bullet %d is empty", i+1)
		}
		out[i] = b
	}
	return out, nil
}

func clipKeyword(keyword string) string {
	words := strings.Fields(keyword)
	if len(words) > maxKeywordWords {
		words = words[:maxKeywordWords]
	}
	return strings.Join(words, " ")
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
