package assembler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"

	"slidesmith/internal/deck"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProvider struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	missing map[string]bool
	block   map[string]bool
}

func (f *fakeProvider) FetchImage(ctx context.Context, keyword string) (*deck.ImageResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, keyword)
	f.mu.Unlock()

	if f.block[keyword] {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", deck.ErrImageFetch, ctx.Err())
	}
	if err := f.fail[keyword]; err != nil {
		return nil, err
	}
	if f.missing[keyword] {
		return nil, nil
	}
	return &deck.ImageResult{
		URL:         "https://img.example/" + keyword + ".jpg",
		Attribution: deck.Attribution{PhotographerName: "P " + keyword},
	}, nil
}

func drafts(n int) []deck.Draft {
	out := make([]deck.Draft, n)
	for i := range out {
		out[i] = deck.Draft{
			Title:        fmt.Sprintf("Slide %d", i+1),
			Bullets:      []string{"a", "b", "c", "d"},
			Notes:        "notes",
			ImageKeyword: fmt.Sprintf("kw%d", i+1),
		}
	}
	return out
}

func brief() deck.Brief {
	return deck.Brief{Topic: "Q3 Review", Audience: "Leadership", Objective: "o", Situation: "s"}
}

func TestAssemble(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	provider := &fakeProvider{}
	a := New(provider, WithClock(func() time.Time { return fixed }))

	d, err := a.Assemble(context.Background(), brief(), drafts(deck.SlideCount))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if d.Topic != "Q3 Review" || d.Audience != "Leadership" {
		t.Errorf("deck metadata = %q/%q", d.Topic, d.Audience)
	}
	if !d.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", d.CreatedAt, fixed)
	}
	if _, err := uuid.Parse(d.ID); err != nil {
		t.Errorf("deck id %q is not a uuid", d.ID)
	}

	seen := map[string]bool{}
	for i, s := range d.Slides {
		if s.Title != fmt.Sprintf("Slide %d", i+1) {
			t.Errorf("slide %d title = %q, order not kept", i, s.Title)
		}
		if seen[s.ID] {
			t.Errorf("duplicate slide id %s", s.ID)
		}
		seen[s.ID] = true
		if !s.HasImage() || s.ImageAttribution == nil {
			t.Errorf("slide %d missing image", i)
		}
		if !strings.Contains(s.ImageURL, s.ImageKeyword) {
			t.Errorf("slide %d image %q does not match keyword %q", i, s.ImageURL, s.ImageKeyword)
		}
	}
	if len(provider.calls) != deck.SlideCount {
		t.Errorf("provider called %d times, want %d", len(provider.calls), deck.SlideCount)
	}
}

func TestAssembleWrongDraftCount(t *testing.T) {
	for _, n := range []int{0, 4, 6} {
		t.Run(fmt.Sprintf("drafts%d", n), func(t *testing.T) {
			_, err := New(&fakeProvider{}).Assemble(context.Background(), brief(), drafts(n))
			if !errors.Is(err, deck.ErrGeneration) {
				t.Errorf("Assemble() error = %v, want ErrGeneration", err)
			}
		})
	}
}

func TestAssembleImageFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{name: "upstreamError", provider: &fakeProvider{fail: map[string]error{"kw3": deck.ErrImageFetch}}},
		{name: "noResult", provider: &fakeProvider{missing: map[string]bool{"kw3": true}}},
		{name: "timeout", provider: &fakeProvider{block: map[string]bool{"kw3": true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.provider, WithImageTimeout(50*time.Millisecond))

			d, err := a.Assemble(context.Background(), brief(), drafts(deck.SlideCount))
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			for i, s := range d.Slides {
				want := i != 2
				if s.HasImage() != want {
					t.Errorf("slide %d HasImage = %v, want %v", i+1, s.HasImage(), want)
				}
				if !want && s.ImageAttribution != nil {
					t.Errorf("slide %d has attribution without image", i+1)
				}
			}
		})
	}
}

func TestAssembleWithoutProvider(t *testing.T) {
	d, err := New(nil).Assemble(context.Background(), brief(), drafts(deck.SlideCount))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	for i, s := range d.Slides {
		if s.HasImage() {
			t.Errorf("slide %d has image without provider", i+1)
		}
	}
}

func TestAssembleCopiesBullets(t *testing.T) {
	in := drafts(deck.SlideCount)
	d, err := New(nil).Assemble(context.Background(), brief(), in)
	if err != nil {
		t.Fatal(err)
	}
	in[0].Bullets[0] = "mutated"
	if d.Slides[0].Bullets[0] != "a" {
		t.Error("deck shares bullet storage with drafts")
	}
}
