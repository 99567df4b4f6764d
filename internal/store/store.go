package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"slidesmith/internal/deck"
)

// Scope identifies the anonymous caller that owns a set of presentations.
// The store only compares scopes; it never mints them.
type Scope string

func (s Scope) Validate() error {
	if strings.TrimSpace(string(s)) == "" {
		return fmt.Errorf("%w: missing user scope", deck.ErrPersistence)
	}
	return nil
}

// Presentation is the header record that owns a chain of versions.
type Presentation struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Audience   string    `json:"audience"`
	Objective  string    `json:"objective"`
	Situation  string    `json:"situation"`
	Insights   string    `json:"insights"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (p Presentation) Brief() deck.Brief {
	return deck.Brief{
		Topic:     p.Topic,
		Audience:  p.Audience,
		Objective: p.Objective,
		Situation: p.Situation,
		Insights:  p.Insights,
	}
}

type VersionInfo struct {
	ID        string    `json:"id"`
	Number    int       `json:"versionNumber"`
	DeckID    string    `json:"deckId"`
	IsCurrent bool      `json:"isCurrent"`
	CreatedAt time.Time `json:"createdAt"`
}

// Loaded is a presentation with every version decoded.
type Loaded struct {
	Presentation Presentation  `json:"presentation"`
	Brief        deck.Brief    `json:"brief"`
	Deck         *deck.Deck    `json:"deck"`
	Versions     []deck.Deck   `json:"versions"`
	History      []VersionInfo `json:"history"`
}

// Store persists presentations as append-only chains of deck versions.
// Exactly one version per presentation is current. Records owned by another
// scope behave as if they did not exist.
type Store interface {
	CreatePresentation(ctx context.Context, scope Scope, brief deck.Brief, d *deck.Deck) (string, error)
	AddVersion(ctx context.Context, scope Scope, presentationID string, d *deck.Deck) (string, error)
	LoadPresentation(ctx context.Context, scope Scope, id string) (*Loaded, error)
	ListPresentations(ctx context.Context, scope Scope) ([]Presentation, error)
	UpdatePresentationMeta(ctx context.Context, scope Scope, id string, brief deck.Brief) error
	DeletePresentation(ctx context.Context, scope Scope, id string) error
	SetFavorite(ctx context.Context, scope Scope, id string, favorite bool) error
	Close() error
}

// VersionRecord is a stored version row with its raw snapshot.
type VersionRecord struct {
	Info     VersionInfo
	Snapshot []byte
}

func EncodeDeck(d *deck.Deck) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", deck.ErrPersistence, err)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("%w: encode deck: %w", deck.ErrPersistence, err)
	}
	return data, nil
}

// NewLoaded decodes version records into a Loaded value. A presentation
// without versions cannot be loaded. When no record is flagged current the
// highest version number wins.
func NewLoaded(p Presentation, records []VersionRecord) (*Loaded, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: presentation %s has no versions", deck.ErrNotFound, p.ID)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Info.Number < records[j].Info.Number
	})

	loaded := &Loaded{
		Presentation: p,
		Brief:        p.Brief(),
		Versions:     make([]deck.Deck, len(records)),
		History:      make([]VersionInfo, len(records)),
	}

	current := len(records) - 1
	for i, rec := range records {
		if err := json.Unmarshal(rec.Snapshot, &loaded.Versions[i]); err != nil {
			return nil, fmt.Errorf("%w: decode version %d: %w", deck.ErrPersistence, rec.Info.Number, err)
		}
		if rec.Info.IsCurrent {
			current = i
		}
		loaded.History[i] = rec.Info
		loaded.History[i].DeckID = loaded.Versions[i].ID
	}

	for i := range loaded.History {
		loaded.History[i].IsCurrent = i == current
	}
	loaded.Deck = loaded.Versions[current].Clone()

	return loaded, nil
}

// Filter narrows a presentation list for the dashboard.
type Filter struct {
	FavoritesOnly bool
	Query         string
}

// FilterPresentations keeps the order of list. Query matches topic or
// audience, case-insensitively.
func FilterPresentations(list []Presentation, f Filter) []Presentation {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Presentation, 0, len(list))
	for _, p := range list {
		if f.FavoritesOnly && !p.IsFavorite {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Topic), query) &&
			!strings.Contains(strings.ToLower(p.Audience), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
