// Package storetest holds the behavioural suite every store backend must pass.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidesmith/internal/deck"
	"slidesmith/internal/store"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

const (
	alice = store.Scope("alice-scope")
	bob   = store.Scope("bob-scope")
)

func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"createAndLoadRoundTrip", testCreateAndLoad},
		{"addVersionSequential", testAddVersionSequential},
		{"addVersionConcurrent", testAddVersionConcurrent},
		{"addVersionUnknown", testAddVersionUnknown},
		{"loadUnknown", testLoadUnknown},
		{"listOrderedByUpdate", testListOrder},
		{"scopeIsolation", testScopeIsolation},
		{"updateMeta", testUpdateMeta},
		{"setFavoriteIdempotent", testSetFavorite},
		{"deleteCascades", testDelete},
		{"emptyScopeRejected", testEmptyScope},
		{"malformedDeckRejected", testMalformedDeck},
		{"malformedIDNotFound", testMalformedID},
		{"longScope", testLongScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// SampleBrief is the brief used by the suite.
func SampleBrief(topic string) deck.Brief {
	return deck.Brief{
		Topic:     topic,
		Audience:  "Board",
		Objective: "Approve funding",
		Situation: "Missed Q2 targets",
	}
}

// SampleDeck builds a full five-slide deck, the third slide without image.
func SampleDeck(topic string) *deck.Deck {
	d := &deck.Deck{
		ID:        uuid.NewString(),
		Topic:     topic,
		Audience:  "Board",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	for i := range deck.SlideCount {
		s := deck.Slide{
			ID:           uuid.NewString(),
			Title:        fmt.Sprintf("Slide %d", i+1),
			Bullets:      []string{"one", "two", "three", "four"},
			Notes:        "Speak slowly.",
			ImageKeyword: "office",
		}
		if i != 2 {
			s.ImageURL = "https://images.example/" + s.ID
			s.ImageAttribution = &deck.Attribution{
				PhotographerName: "Ada",
				PhotographerURL:  "https://unsplash.com/@ada",
				UnsplashURL:      "https://unsplash.com/photos/x",
			}
		}
		d.Slides = append(d.Slides, s)
	}
	return d
}

func create(t *testing.T, s store.Store, scope store.Scope, topic string) (string, *deck.Deck) {
	t.Helper()
	d := SampleDeck(topic)
	id, err := s.CreatePresentation(context.Background(), scope, SampleBrief(topic), d)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id, d
}

func testCreateAndLoad(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, d := create(t, s, alice, "Investor Pitch")

	loaded, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)

	assert.Equal(t, SampleBrief("Investor Pitch"), loaded.Brief)
	assert.Equal(t, id, loaded.Presentation.ID)
	assert.False(t, loaded.Presentation.IsFavorite)
	require.Len(t, loaded.Versions, 1)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, 1, loaded.History[0].Number)
	assert.True(t, loaded.History[0].IsCurrent)
	if diff := cmp.Diff(d, loaded.Deck); diff != "" {
		t.Errorf("loaded deck mismatch (-want +got):\n%s", diff)
	}
}

func testAddVersionSequential(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, _ := create(t, s, alice, "Roadmap")

	const n = 4
	var last *deck.Deck
	for i := range n {
		last = SampleDeck(fmt.Sprintf("Roadmap v%d", i+2))
		_, err := s.AddVersion(ctx, alice, id, last)
		require.NoError(t, err)
	}

	loaded, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, loaded.History, n+1)

	current := 0
	for i, info := range loaded.History {
		assert.Equal(t, i+1, info.Number)
		if info.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current, "exactly one current version")
	assert.True(t, loaded.History[n].IsCurrent, "newest version is current")
	assert.Equal(t, last.ID, loaded.Deck.ID)
	assert.Equal(t, "Roadmap v2", loaded.Versions[1].Topic)
}

func testAddVersionConcurrent(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, _ := create(t, s, alice, "Race")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddVersion(ctx, alice, id, SampleDeck("Race"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	loaded, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, loaded.History, writers+1)

	current := 0
	for i, info := range loaded.History {
		assert.Equal(t, i+1, info.Number, "version numbers are gapless and unique")
		if info.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)
}

func testAddVersionUnknown(t *testing.T, s store.Store) {
	_, err := s.AddVersion(context.Background(), alice, uuid.NewString(), SampleDeck("x"))
	assert.ErrorIs(t, err, deck.ErrNotFound)
}

func testLoadUnknown(t *testing.T, s store.Store) {
	_, err := s.LoadPresentation(context.Background(), alice, uuid.NewString())
	assert.ErrorIs(t, err, deck.ErrNotFound)
}

func testListOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	first, _ := create(t, s, alice, "First")
	time.Sleep(5 * time.Millisecond)
	second, _ := create(t, s, alice, "Second")
	time.Sleep(5 * time.Millisecond)

	list, err := s.ListPresentations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)

	_, err = s.AddVersion(ctx, alice, first, SampleDeck("First"))
	require.NoError(t, err)

	list, err = s.ListPresentations(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, first, list[0].ID, "new version moves presentation to the top")
	assert.True(t, list[0].UpdatedAt.After(list[1].UpdatedAt))
}

func testScopeIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, _ := create(t, s, alice, "Private")

	list, err := s.ListPresentations(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.LoadPresentation(ctx, bob, id)
	assert.ErrorIs(t, err, deck.ErrNotFound)
	_, err = s.AddVersion(ctx, bob, id, SampleDeck("x"))
	assert.ErrorIs(t, err, deck.ErrNotFound)
	assert.ErrorIs(t, s.SetFavorite(ctx, bob, id, true), deck.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePresentationMeta(ctx, bob, id, SampleBrief("Hijack")), deck.ErrNotFound)
	assert.ErrorIs(t, s.DeletePresentation(ctx, bob, id), deck.ErrNotFound)

	loaded, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Private", loaded.Brief.Topic)
	assert.False(t, loaded.Presentation.IsFavorite)
}

func testUpdateMeta(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, d := create(t, s, alice, "Old topic")

	before, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	updated := SampleBrief("New topic")
	updated.Insights = "Churn is falling"
	require.NoError(t, s.UpdatePresentationMeta(ctx, alice, id, updated))

	after, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, updated, after.Brief)
	assert.True(t, after.Presentation.UpdatedAt.After(before.Presentation.UpdatedAt))
	assert.Equal(t, d.ID, after.Deck.ID, "meta update leaves versions alone")
	assert.Len(t, after.Versions, 1)

	assert.ErrorIs(t, s.UpdatePresentationMeta(ctx, alice, uuid.NewString(), updated), deck.ErrNotFound)
}

func testSetFavorite(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, _ := create(t, s, alice, "Fav")

	before, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)

	require.NoError(t, s.SetFavorite(ctx, alice, id, true))
	require.NoError(t, s.SetFavorite(ctx, alice, id, true))

	list, err := s.ListPresentations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1, "favoriting never duplicates rows")
	assert.True(t, list[0].IsFavorite)
	assert.True(t, list[0].UpdatedAt.Equal(before.Presentation.UpdatedAt), "favorite does not bump updatedAt")

	require.NoError(t, s.SetFavorite(ctx, alice, id, false))
	list, err = s.ListPresentations(ctx, alice)
	require.NoError(t, err)
	assert.False(t, list[0].IsFavorite)

	assert.ErrorIs(t, s.SetFavorite(ctx, alice, uuid.NewString(), true), deck.ErrNotFound)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	id, _ := create(t, s, alice, "Doomed")
	_, err := s.AddVersion(ctx, alice, id, SampleDeck("Doomed"))
	require.NoError(t, err)
	keep, _ := create(t, s, alice, "Keeper")

	require.NoError(t, s.DeletePresentation(ctx, alice, id))

	_, err = s.LoadPresentation(ctx, alice, id)
	assert.ErrorIs(t, err, deck.ErrNotFound)
	_, err = s.AddVersion(ctx, alice, id, SampleDeck("Doomed"))
	assert.ErrorIs(t, err, deck.ErrNotFound)
	assert.ErrorIs(t, s.DeletePresentation(ctx, alice, id), deck.ErrNotFound)

	list, err := s.ListPresentations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep, list[0].ID)
}

func testEmptyScope(t *testing.T, s store.Store) {
	_, err := s.CreatePresentation(context.Background(), "", SampleBrief("x"), SampleDeck("x"))
	assert.ErrorIs(t, err, deck.ErrPersistence)
	_, err = s.ListPresentations(context.Background(), " ")
	assert.ErrorIs(t, err, deck.ErrPersistence)
}

func testMalformedDeck(t *testing.T, s store.Store) {
	ctx := context.Background()

	short := SampleDeck("Short")
	short.Slides = short.Slides[:1]
	_, err := s.CreatePresentation(ctx, alice, SampleBrief("Short"), short)
	assert.ErrorIs(t, err, deck.ErrInvalidDeck)

	list, err := s.ListPresentations(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	id, _ := create(t, s, alice, "Valid")
	long := SampleDeck("Long")
	long.Slides = append(long.Slides, long.Slides...)
	_, err = s.AddVersion(ctx, alice, id, long)
	assert.ErrorIs(t, err, deck.ErrInvalidDeck)

	noID := SampleDeck("NoID")
	noID.Slides[0].ID = ""
	_, err = s.AddVersion(ctx, alice, id, noID)
	assert.ErrorIs(t, err, deck.ErrInvalidDeck)

	loaded, err := s.LoadPresentation(ctx, alice, id)
	require.NoError(t, err)
	assert.Len(t, loaded.History, 1)
}

func testMalformedID(t *testing.T, s store.Store) {
	ctx := context.Background()
	create(t, s, alice, "Existing")
	const id = "not-a-uuid"

	_, err := s.LoadPresentation(ctx, alice, id)
	assert.ErrorIs(t, err, deck.ErrNotFound)
	_, err = s.AddVersion(ctx, alice, id, SampleDeck("x"))
	assert.ErrorIs(t, err, deck.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePresentationMeta(ctx, alice, id, SampleBrief("x")), deck.ErrNotFound)
	assert.ErrorIs(t, s.SetFavorite(ctx, alice, id, true), deck.ErrNotFound)
	assert.ErrorIs(t, s.DeletePresentation(ctx, alice, id), deck.ErrNotFound)
}

func testLongScope(t *testing.T, s store.Store) {
	ctx := context.Background()
	scope := store.Scope(strings.Repeat("u", 512))

	id, _ := create(t, s, scope, "Long scope")

	list, err := s.ListPresentations(ctx, scope)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}
