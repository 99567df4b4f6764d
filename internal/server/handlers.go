package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"slidesmith/internal/app"
	"slidesmith/internal/deck"
	"slidesmith/internal/llm"
	"slidesmith/internal/store"
)

type createRequest struct {
	Brief deck.Brief `json:"brief"`
	Deck  *deck.Deck `json:"deck"`
}

type idResponse struct {
	ID string `json:"id"`
}

type imageRequest struct {
	Keyword string `json:"keyword"`
}

type favoriteRequest struct {
	IsFavorite bool `json:"isFavorite"`
}

// POST /api/generate
func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var brief deck.Brief
	if !decode(w, r, &brief) {
		return
	}

	d, err := s.pipeline.Generate(r.Context(), brief)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// POST /api/slides/regenerate
func (s *Server) regenerate(w http.ResponseWriter, r *http.Request) {
	var req llm.RegenerateRequest
	if !decode(w, r, &req) {
		return
	}

	slide, err := s.pipeline.Regenerate(r.Context(), deck.Slide{
		Title:   req.Title,
		Bullets: req.Bullets,
		Notes:   req.Notes,
	}, req.Context)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck.SlideText{
		Title:   slide.Title,
		Bullets: slide.Bullets,
		Notes:   slide.Notes,
	})
}

// POST /api/images
func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Keyword) == "" {
		writeMessage(w, http.StatusBadRequest, "keyword is required")
		return
	}

	img, err := s.pipeline.FetchImage(r.Context(), req.Keyword)
	if err != nil {
		writeError(w, err)
		return
	}
	if img == nil {
		writeMessage(w, http.StatusNotFound, "no images found")
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// POST /api/export
func (s *Server) exportDeck(w http.ResponseWriter, r *http.Request) {
	var d deck.Deck
	if !decode(w, r, &d) {
		return
	}
	if err := d.Validate(); err != nil {
		writeError(w, err)
		return
	}

	file, err := s.pipeline.Render(r.Context(), &d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, file)
}

// GET /api/presentations?favorites=true&q=...
func (s *Server) listPresentations(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	list, err := s.store.ListPresentations(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	favorites, _ := strconv.ParseBool(query.Get("favorites"))
	list = store.FilterPresentations(list, store.Filter{
		FavoritesOnly: favorites,
		Query:         query.Get("q"),
	})
	if list == nil {
		list = []store.Presentation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /api/presentations
func (s *Server) createPresentation(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Deck.Validate(); err != nil {
		writeError(w, err)
		return
	}

	id, err := s.pipeline.Save(r.Context(), scope, req.Brief, req.Deck)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// GET /api/presentations/{id}
func (s *Server) getPresentation(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	loaded, err := s.store.LoadPresentation(r.Context(), scope, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}

// PUT /api/presentations/{id}
func (s *Server) updatePresentation(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	var brief deck.Brief
	if !decode(w, r, &brief) {
		return
	}
	brief = brief.Trimmed()
	if err := brief.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.UpdatePresentationMeta(r.Context(), scope, mux.Vars(r)["id"], brief); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/presentations/{id}
func (s *Server) deletePresentation(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	if err := s.store.DeletePresentation(r.Context(), scope, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/presentations/{id}/favorite
func (s *Server) setFavorite(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	var req favoriteRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.store.SetFavorite(r.Context(), scope, mux.Vars(r)["id"], req.IsFavorite); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/presentations/{id}/versions
func (s *Server) addVersion(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	var d deck.Deck
	if !decode(w, r, &d) {
		return
	}
	if err := d.Validate(); err != nil {
		writeError(w, err)
		return
	}

	id, err := s.pipeline.SaveVersion(r.Context(), scope, mux.Vars(r)["id"], &d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// GET /api/presentations/{id}/export?version=n
func (s *Server) exportPresentation(w http.ResponseWriter, r *http.Request, scope store.Scope) {
	version := 0
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "version must be a positive number")
			return
		}
		version = n
	}

	loaded, err := s.store.LoadPresentation(r.Context(), scope, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := app.SelectVersion(loaded, version)
	if err != nil {
		writeError(w, err)
		return
	}

	file, err := s.pipeline.Render(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, file)
}
