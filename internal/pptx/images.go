package pptx

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/sync/errgroup"

	"slidesmith/internal/deck"
)

// Fetcher downloads remote resources. *httputil.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, string, error)
}

type media struct {
	data   []byte
	ext    string
	width  int
	height int
}

var extensions = map[string]string{
	"jpeg": "jpeg",
	"png":  "png",
	"gif":  "gif",
}

// fetchImages downloads every slide image concurrently. The first failure
// cancels the remaining downloads.
func (e *Exporter) fetchImages(ctx context.Context, slides []deck.Slide) ([]*media, error) {
	out := make([]*media, len(slides))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range slides {
		if !s.HasImage() {
			continue
		}
		g.Go(func() error {
			m, err := e.fetchImage(ctx, s.ImageURL)
			if err != nil {
				return fmt.Errorf("slide %d image: %w", i+1, err)
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Exporter) fetchImage(ctx context.Context, url string) (*media, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("no image fetcher configured")
	}

	data, _, err := e.fetcher.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	ext, ok := extensions[format]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	return &media{data: data, ext: ext, width: cfg.Width, height: cfg.Height}, nil
}
