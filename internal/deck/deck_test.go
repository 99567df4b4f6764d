package deck

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testDeck() *Deck {
	return &Deck{
		ID:        "deck-1",
		Topic:     "Q3 Review",
		Audience:  "Board",
		CreatedAt: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC),
		Slides: []Slide{
			{
				ID:           "s1",
				Title:        "Opening",
				Bullets:      []string{"a", "b", "c", "d"},
				Notes:        "notes",
				ImageKeyword: "city",
				ImageURL:     "https://images.example/1.jpg",
				ImageAttribution: &Attribution{
					PhotographerName: "Ann",
					PhotographerURL:  "https://unsplash.com/@ann",
					UnsplashURL:      "https://unsplash.com/photos/1",
				},
			},
			{ID: "s2", Title: "Problem", Bullets: []string{"e", "f", "g", "h"}},
		},
	}
}

func TestBriefValidate(t *testing.T) {
	tests := []struct {
		name        string
		brief       Brief
		wantErr     bool
		wantMissing string
	}{
		{
			name: "complete",
			brief: Brief{
				Topic: "Investor Pitch", Audience: "VCs", Objective: "Raise seed", Situation: "Pre-revenue",
			},
		},
		{
			name:        "missingTopic",
			brief:       Brief{Audience: "VCs", Objective: "Raise seed", Situation: "Pre-revenue"},
			wantErr:     true,
			wantMissing: "topic",
		},
		{
			name:        "whitespaceOnly",
			brief:       Brief{Topic: "  ", Audience: "\t", Objective: "x", Situation: "y"},
			wantErr:     true,
			wantMissing: "topic, audience",
		},
		{
			name:  "insightsOptional",
			brief: Brief{Topic: "t", Audience: "a", Objective: "o", Situation: "s", Insights: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.brief.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidBrief) {
				t.Errorf("Validate() error = %v, want ErrInvalidBrief", err)
			}
			if !strings.Contains(err.Error(), tt.wantMissing) {
				t.Errorf("Validate() error = %q, want it to name %q", err, tt.wantMissing)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := testDeck()
	clone := original.Clone()

	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("Clone() mismatch (-want +got):\n%s", diff)
	}

	clone.Slides[0].Bullets[0] = "changed"
	clone.Slides[0].ImageAttribution.PhotographerName = "Bob"
	clone.Slides[1].Title = "Changed"

	if original.Slides[0].Bullets[0] != "a" {
		t.Error("Clone() shares bullets with the original")
	}
	if original.Slides[0].ImageAttribution.PhotographerName != "Ann" {
		t.Error("Clone() shares attribution with the original")
	}
	if original.Slides[1].Title != "Problem" {
		t.Error("Clone() shares slides with the original")
	}
}

func TestNewVersion(t *testing.T) {
	original := testDeck()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	next := original.NewVersion(now)

	if next.ID == original.ID || next.ID == "" {
		t.Errorf("NewVersion() ID = %q, want a fresh id", next.ID)
	}
	if !next.CreatedAt.Equal(now) {
		t.Errorf("NewVersion() CreatedAt = %v, want %v", next.CreatedAt, now)
	}
	if diff := cmp.Diff(original.Slides, next.Slides); diff != "" {
		t.Errorf("NewVersion() slides mismatch (-want +got):\n%s", diff)
	}
}

func TestSetBullets(t *testing.T) {
	var s Slide
	s.SetBullets([]string{"one", "", "  ", "two"})

	if diff := cmp.Diff([]string{"one", "two"}, s.Bullets); diff != "" {
		t.Errorf("SetBullets() mismatch (-want +got):\n%s", diff)
	}
}

func TestBulletsFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "simple", text: "a\nb", want: []string{"a", "b"}},
		{name: "blankLinesDropped", text: "a\n\n\nb\n", want: []string{"a", "b"}},
		{name: "windowsNewlines", text: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "empty", text: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, BulletsFromText(tt.text)); diff != "" {
				t.Errorf("BulletsFromText() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyTextKeepsImage(t *testing.T) {
	d := testDeck()
	s := &d.Slides[0]

	s.ApplyText(SlideText{Title: "New", Bullets: []string{"w", "x", "", "y", "z"}, Notes: "n"})

	if s.Title != "New" || s.Notes != "n" {
		t.Errorf("ApplyText() title/notes = %q/%q", s.Title, s.Notes)
	}
	if len(s.Bullets) != 4 {
		t.Errorf("ApplyText() bullets = %v, want 4 non-empty", s.Bullets)
	}
	if !s.HasImage() || s.ImageAttribution == nil {
		t.Error("ApplyText() dropped the slide image")
	}
}

func TestOutline(t *testing.T) {
	out := Outline(testDeck())

	for _, want := range []string{"# Q3 Review", "## 1. Opening", "- a", "> notes", "## 2. Problem", "[Ann](https://unsplash.com/@ann)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Outline() missing %q in:\n%s", want, out)
		}
	}
}

func TestExamplesAreValid(t *testing.T) {
	for _, ex := range Examples() {
		if err := ex.Brief.Validate(); err != nil {
			t.Errorf("example %q: %v", ex.Name, err)
		}
	}
}

func TestDeckValidate(t *testing.T) {
	full := func() *Deck {
		d := &Deck{ID: "d"}
		for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
			d.Slides = append(d.Slides, Slide{ID: id})
		}
		return d
	}

	tests := []struct {
		name    string
		mutate  func(d *Deck) *Deck
		wantErr string
	}{
		{name: "valid", mutate: func(d *Deck) *Deck { return d }},
		{name: "nil", mutate: func(*Deck) *Deck { return nil }, wantErr: "missing deck"},
		{name: "tooFew", mutate: func(d *Deck) *Deck { d.Slides = d.Slides[:1]; return d }, wantErr: "got 1 slides"},
		{name: "tooMany", mutate: func(d *Deck) *Deck {
			d.Slides = append(d.Slides, Slide{ID: "s6"}, Slide{ID: "s7"}, Slide{ID: "s8"}, Slide{ID: "s9"})
			return d
		}, wantErr: "got 9 slides"},
		{name: "emptyID", mutate: func(d *Deck) *Deck { d.Slides[2].ID = " "; return d }, wantErr: "slide 3 has no id"},
		{name: "duplicateID", mutate: func(d *Deck) *Deck { d.Slides[4].ID = "s1"; return d }, wantErr: "duplicate slide id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(full()).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidDeck) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want ErrInvalidDeck containing %q", err, tt.wantErr)
			}
		})
	}
}
