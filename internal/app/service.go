package app

import (
	"errors"
	"io"

	"slidesmith/internal/assembler"
	"slidesmith/internal/llm"
	"slidesmith/internal/pptx"
	"slidesmith/internal/storage"
	"slidesmith/internal/store"
	"slidesmith/internal/unsplash"
	"slidesmith/pkg/config"
)

type Service struct {
	cfg       *config.Config
	engine    llm.Engine
	images    unsplash.Provider
	assembler *assembler.Assembler
	store     store.Store
	exporter  *pptx.Exporter
	sink      storage.Sink
	closers   []io.Closer
}

type ServiceOptions struct {
	Config    *config.Config
	Engine    llm.Engine
	Images    unsplash.Provider
	Assembler *assembler.Assembler
	Store     store.Store
	Exporter  *pptx.Exporter
	Sink      storage.Sink
	// Closers are released by Close after the store, in reverse order.
	Closers []io.Closer
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		engine:    opts.Engine,
		images:    opts.Images,
		assembler: opts.Assembler,
		store:     opts.Store,
		exporter:  opts.Exporter,
		sink:      opts.Sink,
		closers:   opts.Closers,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

func (s *Service) Engine() llm.Engine {
	return s.engine
}

func (s *Service) Images() unsplash.Provider {
	return s.images
}

func (s *Service) Assembler() *assembler.Assembler {
	return s.assembler
}

func (s *Service) Store() store.Store {
	return s.store
}

func (s *Service) Exporter() *pptx.Exporter {
	return s.exporter
}

func (s *Service) Sink() storage.Sink {
	return s.sink
}

// Close releases the store and every extra resource the service owns.
func (s *Service) Close() error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}
