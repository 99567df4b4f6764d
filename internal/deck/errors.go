package deck

import "errors"

// Error categories shared by every component. Failures are wrapped so that
// both the category and the underlying cause match errors.Is.
var (
	ErrInvalidBrief = errors.New("invalid brief")
	ErrInvalidDeck  = errors.New("invalid deck")
	ErrGeneration   = errors.New("generation failed")
	ErrImageFetch   = errors.New("image fetch failed")
	ErrPersistence  = errors.New("persistence failed")
	ErrNotFound     = errors.New("not found")
	ErrExport       = errors.New("export failed")
)
