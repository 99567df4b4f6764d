package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"slidesmith/internal/app"
	"slidesmith/internal/store"
)

// UserHeader carries the anonymous id the client minted for itself. It is
// the scope of every presentation call.
const UserHeader = "X-Slidesmith-User"

const maxBodySize = 1 << 20

type Server struct {
	pipeline *app.Pipeline
	store    store.Store
}

func New(pipeline *app.Pipeline, st store.Store) *Server {
	return &Server{pipeline: pipeline, store: st}
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/generate", s.generate).Methods(http.MethodPost)
	api.HandleFunc("/slides/regenerate", s.regenerate).Methods(http.MethodPost)
	api.HandleFunc("/images", s.image).Methods(http.MethodPost)
	api.HandleFunc("/export", s.exportDeck).Methods(http.MethodPost)

	api.HandleFunc("/presentations", s.scoped(s.listPresentations)).Methods(http.MethodGet)
	api.HandleFunc("/presentations", s.scoped(s.createPresentation)).Methods(http.MethodPost)
	api.HandleFunc("/presentations/{id}", s.scoped(s.getPresentation)).Methods(http.MethodGet)
	api.HandleFunc("/presentations/{id}", s.scoped(s.updatePresentation)).Methods(http.MethodPut)
	api.HandleFunc("/presentations/{id}", s.scoped(s.deletePresentation)).Methods(http.MethodDelete)
	api.HandleFunc("/presentations/{id}/favorite", s.scoped(s.setFavorite)).Methods(http.MethodPut)
	api.HandleFunc("/presentations/{id}/versions", s.scoped(s.addVersion)).Methods(http.MethodPost)
	api.HandleFunc("/presentations/{id}/export", s.scoped(s.exportPresentation)).Methods(http.MethodGet)

	return withCORS(r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scopedHandler func(w http.ResponseWriter, r *http.Request, scope store.Scope)

func (s *Server) scoped(next scopedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := store.Scope(r.Header.Get(UserHeader))
		if scope == "" {
			writeMessage(w, http.StatusBadRequest, UserHeader+" header is required")
			return
		}
		next(w, r, scope)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+UserHeader)
		h.Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
