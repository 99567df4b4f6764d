package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slidesmith/internal/deck"
	"slidesmith/internal/unsplash"
)

const DefaultImageTimeout = 8 * time.Second

// Assembler turns slide drafts into a deck, enriching every slide with an
// image where one can be found.
type Assembler struct {
	images       unsplash.Provider
	imageTimeout time.Duration
	now          func() time.Time
}

type Option func(*Assembler)

func WithImageTimeout(d time.Duration) Option {
	return func(a *Assembler) {
		if d > 0 {
			a.imageTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// New returns an assembler. A nil provider produces decks without images.
func New(images unsplash.Provider, opts ...Option) *Assembler {
	a := &Assembler{
		images:       images,
		imageTimeout: DefaultImageTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) Assemble(ctx context.Context, brief deck.Brief, drafts []deck.Draft) (*deck.Deck, error) {
	if len(drafts) != deck.SlideCount {
		return nil, fmt.Errorf("%w: got %d drafts, want %d", deck.ErrGeneration, len(drafts), deck.SlideCount)
	}

	images := a.fetchImages(ctx, drafts)

	d := &deck.Deck{
		ID:        uuid.NewString(),
		Topic:     brief.Topic,
		Audience:  brief.Audience,
		CreatedAt: a.now(),
		Slides:    make([]deck.Slide, len(drafts)),
	}
	for i, draft := range drafts {
		slide := deck.Slide{
			ID:           uuid.NewString(),
			Title:        draft.Title,
			Bullets:      append([]string(nil), draft.Bullets...),
			Notes:        draft.Notes,
			ImageKeyword: draft.ImageKeyword,
		}
		if img := images[i]; img != nil {
			attribution := img.Attribution
			slide.ImageURL = img.URL
			slide.ImageAttribution = &attribution
		}
		d.Slides[i] = slide
	}

	return d, nil
}

// fetchImages looks up one image per draft concurrently. Failures leave the
// slot nil and never cancel sibling lookups.
func (a *Assembler) fetchImages(ctx context.Context, drafts []deck.Draft) []*deck.ImageResult {
	results := make([]*deck.ImageResult, len(drafts))
	if a.images == nil {
		return results
	}

	var g errgroup.Group
	for i, draft := range drafts {
		g.Go(func() error {
			imageCtx, cancel := context.WithTimeout(ctx, a.imageTimeout)
			defer cancel()

			img, err := a.images.FetchImage(imageCtx, draft.ImageKeyword)
			if err != nil {
				slog.Warn("Image lookup failed, continuing without image",
					"slide", i+1, "keyword", draft.ImageKeyword, "error", err)
				return nil
			}
			if img == nil {
				slog.Debug("No image found", "slide", i+1, "keyword", draft.ImageKeyword)
				return nil
			}
			results[i] = img
			return nil
		})
	}
	_ = g.Wait()

	return results
}
