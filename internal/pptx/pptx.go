package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"slidesmith/internal/deck"
)

const (
	DefaultTimeout = 30 * time.Second
	ContentType    = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// File is a finished presentation ready to be written or downloaded.
type File struct {
	Name string
	Data []byte
}

// Exporter renders decks into .pptx files using a single dark template.
type Exporter struct {
	fetcher Fetcher
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Exporter)

func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

func New(fetcher Fetcher, opts ...Option) *Exporter {
	e := &Exporter{
		fetcher: fetcher,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type textRun struct {
	Text   string
	Size   int
	Color  string
	Font   string
	Bold   bool
	Italic bool
}

type imageView struct {
	RelID string
	Name  string
	Crop  crop
}

type slideLayout struct {
	Title, Bullets, Image, Caption box
}

type slideView struct {
	Number      int
	TitleRun    textRun
	BulletRuns  []textRun
	Image       *imageView
	CaptionRun  *textRun
	Notes       []string
	Layout      slideLayout
	LineSpacing int
	SpaceAfter  int
}

type deckView struct {
	Title          string
	Subject        string
	Created        string
	Width, Height  int64
	Slides         []slideView
	NotesMasterRel string
	ThemeRel       string
	PresPropsRel   string
}

type masterView struct {
	Background string
	Accent     string
	AccentBar  box
}

// Export builds the whole file in memory. Any failure, including a single
// image that cannot be downloaded, yields deck.ErrExport and no file.
func (e *Exporter) Export(ctx context.Context, d *deck.Deck) (*File, error) {
	if d == nil || len(d.Slides) == 0 {
		return nil, fmt.Errorf("%w: deck has no slides", deck.ErrExport)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	images, err := e.fetchImages(ctx, d.Slides)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", deck.ErrExport, err)
	}

	data, err := e.build(d, images)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", deck.ErrExport, err)
	}

	name := FileName(d.Topic)
	slog.Debug("Exported deck", "file", name, "bytes", len(data))
	return &File{Name: name, Data: data}, nil
}

func (e *Exporter) build(d *deck.Deck, images []*media) ([]byte, error) {
	n := len(d.Slides)
	view := deckView{
		Title:          d.Topic,
		Subject:        "Presentation for " + d.Audience,
		Created:        e.now().UTC().Format(time.RFC3339),
		Width:          slideWidth,
		Height:         slideHeight,
		Slides:         make([]slideView, n),
		NotesMasterRel: fmt.Sprintf("rId%d", n+2),
		ThemeRel:       fmt.Sprintf("rId%d", n+3),
		PresPropsRel:   fmt.Sprintf("rId%d", n+4),
	}

	for i, s := range d.Slides {
		view.Slides[i] = newSlideView(i+1, s, images[i])
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	static := []struct {
		path string
		tmpl string
		data any
	}{
		{"[Content_Types].xml", "contentTypes", view},
		{"_rels/.rels", "rootRels", view},
		{"docProps/core.xml", "core", view},
		{"docProps/app.xml", "app", view},
		{"ppt/presentation.xml", "presentation", view},
		{"ppt/_rels/presentation.xml.rels", "presentationRels", view},
		{"ppt/presProps.xml", "presProps", view},
		{"ppt/slideMasters/slideMaster1.xml", "master", masterView{Background: backgroundColor, Accent: accentColor, AccentBar: accentBarBox}},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "masterRels", nil},
		{"ppt/slideLayouts/slideLayout1.xml", "layout", nil},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "layoutRels", nil},
		{"ppt/notesMasters/notesMaster1.xml", "notesMaster", nil},
		{"ppt/notesMasters/_rels/notesMaster1.xml.rels", "notesMasterRels", nil},
		{"ppt/theme/theme1.xml", "theme", nil},
		{"ppt/theme/theme2.xml", "theme", nil},
	}
	for _, part := range static {
		if err := writePart(zw, part.path, part.tmpl, part.data); err != nil {
			return nil, err
		}
	}

	for i, sv := range view.Slides {
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", sv.Number), "slide", sv); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", sv.Number), "slideRels", sv); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", sv.Number), "notes", sv); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", sv.Number), "notesRels", sv); err != nil {
			return nil, err
		}
		if sv.Image != nil {
			w, err := zw.Create("ppt/media/" + sv.Image.Name)
			if err != nil {
				return nil, fmt.Errorf("add image %d: %w", i+1, err)
			}
			if _, err := w.Write(images[i].data); err != nil {
				return nil, fmt.Errorf("write image %d: %w", i+1, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func newSlideView(number int, s deck.Slide, img *media) slideView {
	sv := slideView{
		Number: number,
		TitleRun: textRun{
			Text:  s.Title,
			Size:  titleSize,
			Color: titleColor,
			Font:  fontFace,
			Bold:  true,
		},
		Notes: noteLines(s.Notes),
		Layout: slideLayout{
			Title:   titleBox,
			Bullets: bulletsBox,
			Image:   imageBox,
			Caption: captionBox,
		},
		LineSpacing: bulletLineSpacing,
		SpaceAfter:  bulletSpaceAfter,
	}

	for _, b := range s.Bullets {
		if strings.TrimSpace(b) == "" {
			continue
		}
		sv.BulletRuns = append(sv.BulletRuns, textRun{
			Text:  b,
			Size:  bulletSize,
			Color: bulletColor,
			Font:  fontFace,
		})
	}

	if img == nil {
		return sv
	}

	sv.Image = &imageView{
		RelID: "rId3",
		Name:  fmt.Sprintf("image%d.%s", number, img.ext),
		Crop:  coverCrop(img.width, img.height, imageBox),
	}
	if a := s.ImageAttribution; a != nil && a.PhotographerName != "" {
		sv.CaptionRun = &textRun{
			Text:   fmt.Sprintf("Photo by %s on Unsplash", a.PhotographerName),
			Size:   captionSize,
			Color:  captionColor,
			Font:   fontFace,
			Italic: true,
		}
	}
	return sv
}

func noteLines(notes string) []string {
	var lines []string
	for _, line := range strings.Split(notes, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func writePart(zw *zip.Writer, path, tmpl string, data any) error {
	content, err := render(tmpl, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	w, err := zw.Create(path)
	if err != nil {
		return fmt.Errorf("add %s: %w", path, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// FileName derives the download name from the deck topic.
func FileName(topic string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(topic, "-"))
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		name = "Untitled"
	}
	return "SlideSmith - " + name + ".pptx"
}
