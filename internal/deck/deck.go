package deck

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SlideCount  = 5
	BulletCount = 4
)

// Attribution credits the photographer of a slide image.
type Attribution struct {
	PhotographerName string `json:"photographerName"`
	PhotographerURL  string `json:"photographerUrl"`
	UnsplashURL      string `json:"unsplashUrl"`
}

type Slide struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Bullets          []string     `json:"bullets"`
	Notes            string       `json:"notes"`
	ImageKeyword     string       `json:"imageKeyword"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	ImageAttribution *Attribution `json:"imageAttribution,omitempty"`
}

// Deck is a generated presentation. Its JSON form is the snapshot format
// stored with every version.
type Deck struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Audience  string    `json:"audience"`
	CreatedAt time.Time `json:"createdAt"`
	Slides    []Slide   `json:"slides"`
}

// Draft is one slide as produced by a generative engine, before image enrichment.
type Draft struct {
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets"`
	Notes        string   `json:"notes"`
	ImageKeyword string   `json:"imageKeyword"`
}

// SlideText is the rewritten text of a single slide.
type SlideText struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes"`
}

type ImageResult struct {
	URL         string      `json:"imageUrl"`
	Attribution Attribution `json:"attribution"`
}

// Validate checks the shape every stored or exported deck must have:
// exactly SlideCount slides with non-empty, distinct ids.
func (d *Deck) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: missing deck", ErrInvalidDeck)
	}
	if len(d.Slides) != SlideCount {
		return fmt.Errorf("%w: got %d slides, want %d", ErrInvalidDeck, len(d.Slides), SlideCount)
	}
	seen := make(map[string]bool, len(d.Slides))
	for i, s := range d.Slides {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("%w: slide %d has no id", ErrInvalidDeck, i+1)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate slide id %q", ErrInvalidDeck, id)
		}
		seen[id] = true
	}
	return nil
}

func (s Slide) HasImage() bool {
	return s.ImageURL != ""
}

// SetBullets replaces the slide bullets, dropping empty entries.
func (s *Slide) SetBullets(bullets []string) {
	kept := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if strings.TrimSpace(b) == "" {
			continue
		}
		kept = append(kept, b)
	}
	s.Bullets = kept
}

// ApplyText overwrites the text fields of the slide and keeps its image.
func (s *Slide) ApplyText(text SlideText) {
	s.Title = text.Title
	s.SetBullets(text.Bullets)
	s.Notes = text.Notes
}

// BulletsFromText splits editor text into bullets, one per line.
func BulletsFromText(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		bullets = append(bullets, line)
	}
	return bullets
}

// Clone returns a deep copy that shares no slices or pointers with d.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	out := *d
	out.Slides = make([]Slide, len(d.Slides))
	for i, s := range d.Slides {
		s.Bullets = append([]string(nil), s.Bullets...)
		if s.ImageAttribution != nil {
			attr := *s.ImageAttribution
			s.ImageAttribution = &attr
		}
		out.Slides[i] = s
	}
	return &out
}

// NewVersion returns a deep copy of d with a fresh identity, used when the
// working deck is saved as a new version.
func (d *Deck) NewVersion(now time.Time) *Deck {
	out := d.Clone()
	out.ID = uuid.NewString()
	out.CreatedAt = now
	return out
}

// Slide returns the slide with the given id.
func (d *Deck) Slide(id string) (*Slide, bool) {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return &d.Slides[i], true
		}
	}
	return nil, false
}
