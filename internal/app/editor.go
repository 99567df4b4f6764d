package app

import (
	"fmt"
	"time"

	"slidesmith/internal/deck"
	"slidesmith/internal/store"
)

// Editor holds the decks of one editing session. Edits apply to the
// selected deck in place; SaveVersion snapshots it as a new selected deck.
// An Editor is not safe for concurrent use.
type Editor struct {
	decks    []*deck.Deck
	selected int
	now      func() time.Time
}

// SlideUpdate lists the text fields to overwrite. Nil fields are kept.
type SlideUpdate struct {
	Title        *string
	Notes        *string
	ImageKeyword *string
}

func NewEditor(d *deck.Deck) *Editor {
	return &Editor{
		decks: []*deck.Deck{d.Clone()},
		now:   time.Now,
	}
}

// OpenEditor starts a session over every stored version with the current
// one selected.
func OpenEditor(loaded *store.Loaded) *Editor {
	e := &Editor{now: time.Now}
	for i := range loaded.Versions {
		e.decks = append(e.decks, loaded.Versions[i].Clone())
		if loaded.Versions[i].ID == loaded.Deck.ID {
			e.selected = i
		}
	}
	if len(e.decks) == 0 {
		e.decks = []*deck.Deck{loaded.Deck.Clone()}
	}
	return e
}

// Deck returns a copy of the selected deck.
func (e *Editor) Deck() *deck.Deck {
	return e.decks[e.selected].Clone()
}

func (e *Editor) Versions() []*deck.Deck {
	out := make([]*deck.Deck, len(e.decks))
	for i, d := range e.decks {
		out[i] = d.Clone()
	}
	return out
}

func (e *Editor) UpdateSlide(slideID string, update SlideUpdate) error {
	s, err := e.slide(slideID)
	if err != nil {
		return err
	}
	if update.Title != nil {
		s.Title = *update.Title
	}
	if update.Notes != nil {
		s.Notes = *update.Notes
	}
	if update.ImageKeyword != nil {
		s.ImageKeyword = *update.ImageKeyword
	}
	return nil
}

// SetBullets replaces the bullets from editor text, one bullet per line.
// Blank lines are dropped.
func (e *Editor) SetBullets(slideID, text string) error {
	s, err := e.slide(slideID)
	if err != nil {
		return err
	}
	s.SetBullets(deck.BulletsFromText(text))
	return nil
}

func (e *Editor) ApplyRegenerated(slideID string, text deck.SlideText) error {
	s, err := e.slide(slideID)
	if err != nil {
		return err
	}
	s.ApplyText(text)
	return nil
}

// SetImage replaces the slide image. A nil result removes it.
func (e *Editor) SetImage(slideID string, img *deck.ImageResult) error {
	s, err := e.slide(slideID)
	if err != nil {
		return err
	}
	if img == nil {
		s.ImageURL = ""
		s.ImageAttribution = nil
		return nil
	}
	attr := img.Attribution
	s.ImageURL = img.URL
	s.ImageAttribution = &attr
	return nil
}

// SaveVersion appends a copy of the selected deck with a fresh id and
// timestamp and selects it.
func (e *Editor) SaveVersion() *deck.Deck {
	v := e.decks[e.selected].NewVersion(e.now())
	e.decks = append(e.decks, v)
	e.selected = len(e.decks) - 1
	return v.Clone()
}

func (e *Editor) Switch(deckID string) error {
	for i, d := range e.decks {
		if d.ID == deckID {
			e.selected = i
			return nil
		}
	}
	return fmt.Errorf("%w: deck %s", deck.ErrNotFound, deckID)
}

func (e *Editor) slide(id string) (*deck.Slide, error) {
	s, ok := e.decks[e.selected].Slide(id)
	if !ok {
		return nil, fmt.Errorf("%w: slide %s", deck.ErrNotFound, id)
	}
	return s, nil
}
