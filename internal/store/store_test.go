package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"slidesmith/internal/deck"
)

func snapshot(t *testing.T, id string) []byte {
	t.Helper()
	d := &deck.Deck{ID: id, Topic: "T"}
	for i := range deck.SlideCount {
		d.Slides = append(d.Slides, deck.Slide{ID: fmt.Sprintf("%s-s%d", id, i+1)})
	}
	data, err := EncodeDeck(d)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestNewLoaded(t *testing.T) {
	p := Presentation{ID: "p1", Topic: "T", Audience: "A"}

	t.Run("flaggedCurrent", func(t *testing.T) {
		loaded, err := NewLoaded(p, []VersionRecord{
			{Info: VersionInfo{ID: "v2", Number: 2, IsCurrent: true}, Snapshot: snapshot(t, "d2")},
			{Info: VersionInfo{ID: "v1", Number: 1}, Snapshot: snapshot(t, "d1")},
			{Info: VersionInfo{ID: "v3", Number: 3}, Snapshot: snapshot(t, "d3")},
		})
		if err != nil {
			t.Fatalf("NewLoaded() error = %v", err)
		}
		if loaded.Deck.ID != "d2" {
			t.Errorf("current deck = %s, want d2", loaded.Deck.ID)
		}
		var order []string
		for _, v := range loaded.Versions {
			order = append(order, v.ID)
		}
		if diff := cmp.Diff([]string{"d1", "d2", "d3"}, order); diff != "" {
			t.Errorf("versions order (-want +got):\n%s", diff)
		}
		if !loaded.History[1].IsCurrent || loaded.History[2].IsCurrent {
			t.Errorf("history current flags = %+v", loaded.History)
		}
		if loaded.Brief.Topic != "T" {
			t.Errorf("brief = %+v", loaded.Brief)
		}
	})

	t.Run("fallsBackToHighest", func(t *testing.T) {
		loaded, err := NewLoaded(p, []VersionRecord{
			{Info: VersionInfo{Number: 1}, Snapshot: snapshot(t, "d1")},
			{Info: VersionInfo{Number: 2}, Snapshot: snapshot(t, "d2")},
		})
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Deck.ID != "d2" || !loaded.History[1].IsCurrent {
			t.Errorf("fallback current = %s", loaded.Deck.ID)
		}
	})

	t.Run("currentIsDetached", func(t *testing.T) {
		loaded, err := NewLoaded(p, []VersionRecord{{Info: VersionInfo{Number: 1}, Snapshot: snapshot(t, "d1")}})
		if err != nil {
			t.Fatal(err)
		}
		loaded.Deck.Topic = "changed"
		if loaded.Versions[0].Topic != "T" {
			t.Error("current deck aliases the version list")
		}
	})

	t.Run("noVersions", func(t *testing.T) {
		_, err := NewLoaded(p, nil)
		if !errors.Is(err, deck.ErrNotFound) {
			t.Errorf("NewLoaded() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("corruptSnapshot", func(t *testing.T) {
		_, err := NewLoaded(p, []VersionRecord{{Info: VersionInfo{Number: 1}, Snapshot: []byte("{")}})
		if !errors.Is(err, deck.ErrPersistence) {
			t.Errorf("NewLoaded() error = %v, want ErrPersistence", err)
		}
	})
}

func TestFilterPresentations(t *testing.T) {
	now := time.Now()
	list := []Presentation{
		{ID: "1", Topic: "Q3 Review", Audience: "Board", IsFavorite: true, UpdatedAt: now},
		{ID: "2", Topic: "Hiring plan", Audience: "Managers"},
		{ID: "3", Topic: "Roadmap", Audience: "Board members", IsFavorite: true},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all", filter: Filter{}, want: []string{"1", "2", "3"}},
		{name: "favorites", filter: Filter{FavoritesOnly: true}, want: []string{"1", "3"}},
		{name: "queryTopic", filter: Filter{Query: "hiring"}, want: []string{"2"}},
		{name: "queryAudience", filter: Filter{Query: " BOARD "}, want: []string{"1", "3"}},
		{name: "combined", filter: Filter{FavoritesOnly: true, Query: "road"}, want: []string{"3"}},
		{name: "noMatch", filter: Filter{Query: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, p := range FilterPresentations(list, tt.filter) {
				got = append(got, p.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterPresentations() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScopeValidate(t *testing.T) {
	if err := Scope("  ").Validate(); !errors.Is(err, deck.ErrPersistence) {
		t.Errorf("Validate() error = %v, want ErrPersistence", err)
	}
	if err := Scope("user-1").Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEncodeDeckRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		deck *deck.Deck
	}{
		{name: "nil", deck: nil},
		{name: "oneSlide", deck: &deck.Deck{ID: "d", Slides: []deck.Slide{{ID: "s"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeDeck(tt.deck)
			if !errors.Is(err, deck.ErrPersistence) || !errors.Is(err, deck.ErrInvalidDeck) {
				t.Errorf("EncodeDeck() error = %v, want ErrPersistence and ErrInvalidDeck", err)
			}
		})
	}
}
