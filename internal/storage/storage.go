package storage

import (
	"context"
	"path"
	"strings"
	"time"
)

// Sink persists exported presentation files.
type Sink interface {
	// Save stores data under name and returns where it ended up.
	Save(ctx context.Context, name string, data []byte) (string, error)
	List(ctx context.Context) ([]Entry, error)
}

type Entry struct {
	Name     string
	Location string
	Size     int64
	Updated  time.Time
}

const exportExt = ".pptx"

func isExport(name string) bool {
	return strings.EqualFold(path.Ext(name), exportExt)
}
