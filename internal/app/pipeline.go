package app

import (
	"context"
	"fmt"
	"log/slog"

	"slidesmith/internal/deck"
	"slidesmith/internal/llm"
	"slidesmith/internal/pptx"
	"slidesmith/internal/store"
)

type Pipeline struct {
	service *Service
}

type ExportResult struct {
	File     *pptx.File
	Location string
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Generate validates the brief, asks the engine for drafts and assembles
// them into a deck. Nothing is persisted.
func (p *Pipeline) Generate(ctx context.Context, brief deck.Brief) (*deck.Deck, error) {
	brief = brief.Trimmed()
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Generating deck...", "topic", brief.Topic, "audience", brief.Audience)
	drafts, err := p.service.engine.GenerateDeck(ctx, brief)
	if err != nil {
		return nil, err
	}

	slog.Info("Fetching images...", "slides", len(drafts))
	d, err := p.service.assembler.Assemble(ctx, brief, drafts)
	if err != nil {
		return nil, err
	}

	slog.Info("Deck ready", "deck_id", d.ID, "images", countImages(d))
	return d, nil
}

// Regenerate rewrites the text of one slide. The image and identity of the
// slide are kept.
func (p *Pipeline) Regenerate(ctx context.Context, slide deck.Slide, extra string) (*deck.Slide, error) {
	slog.Info("Regenerating slide...", "slide_id", slide.ID, "title", slide.Title)
	text, err := p.service.engine.RegenerateSlide(ctx, llm.RegenerateRequest{
		Title:   slide.Title,
		Bullets: slide.Bullets,
		Notes:   slide.Notes,
		Context: extra,
	})
	if err != nil {
		return nil, err
	}

	out := slide
	if slide.ImageAttribution != nil {
		attr := *slide.ImageAttribution
		out.ImageAttribution = &attr
	}
	out.ApplyText(*text)
	return &out, nil
}

// FetchImage looks up a single photo. It returns nil when images are not
// configured or nothing matched.
func (p *Pipeline) FetchImage(ctx context.Context, keyword string) (*deck.ImageResult, error) {
	if p.service.images == nil {
		return nil, nil
	}
	return p.service.images.FetchImage(ctx, keyword)
}

// Save stores d as version 1 of a new presentation.
func (p *Pipeline) Save(ctx context.Context, scope store.Scope, brief deck.Brief, d *deck.Deck) (string, error) {
	brief = brief.Trimmed()
	if err := brief.Validate(); err != nil {
		return "", err
	}

	id, err := p.service.store.CreatePresentation(ctx, scope, brief, d)
	if err != nil {
		return "", err
	}
	slog.Info("Presentation saved", "presentation_id", id, "topic", brief.Topic)
	return id, nil
}

// SaveVersion appends d to an existing presentation as its new current version.
func (p *Pipeline) SaveVersion(ctx context.Context, scope store.Scope, presentationID string, d *deck.Deck) (string, error) {
	id, err := p.service.store.AddVersion(ctx, scope, presentationID, d)
	if err != nil {
		return "", err
	}
	slog.Info("Version saved", "presentation_id", presentationID, "version_id", id)
	return id, nil
}

// Render serializes d without storing the result.
func (p *Pipeline) Render(ctx context.Context, d *deck.Deck) (*pptx.File, error) {
	slog.Info("Exporting deck...", "deck_id", d.ID, "topic", d.Topic)
	return p.service.exporter.Export(ctx, d)
}

// Export serializes d and writes the file to the configured sink.
func (p *Pipeline) Export(ctx context.Context, d *deck.Deck) (*ExportResult, error) {
	file, err := p.Render(ctx, d)
	if err != nil {
		return nil, err
	}

	location, err := p.service.sink.Save(ctx, file.Name, file.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: save export: %w", deck.ErrExport, err)
	}

	slog.Info("Deck exported", "location", location, "bytes", len(file.Data))
	return &ExportResult{File: file, Location: location}, nil
}

// ExportPresentation exports a stored version. Version 0 selects the
// current one.
func (p *Pipeline) ExportPresentation(ctx context.Context, scope store.Scope, id string, version int) (*ExportResult, error) {
	loaded, err := p.service.store.LoadPresentation(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	d, err := SelectVersion(loaded, version)
	if err != nil {
		return nil, err
	}
	return p.Export(ctx, d)
}

// SelectVersion returns the deck stored as the given version number, or the
// current deck when version is 0.
func SelectVersion(loaded *store.Loaded, version int) (*deck.Deck, error) {
	if version == 0 {
		return loaded.Deck, nil
	}
	for i, info := range loaded.History {
		if info.Number == version {
			return loaded.Versions[i].Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: version %d of presentation %s", deck.ErrNotFound, version, loaded.Presentation.ID)
}

func countImages(d *deck.Deck) int {
	n := 0
	for _, s := range d.Slides {
		if s.HasImage() {
			n++
		}
	}
	return n
}
