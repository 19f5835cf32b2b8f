// Package server implements the session persistence gateway: a small HTTP
// API storing one session document per project, backed by sqlite.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jasonknight/anthropide-sub001/internal/model"
)

type Server struct {
	store *Store
	log   zerolog.Logger
}

func New(store *Store, log zerolog.Logger) *Server {
	return &Server{store: store, log: log}
}

// Routes builds the gateway router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.listProjects)
		r.Post("/projects", s.createProject)
		r.Route("/projects/{name}", func(r chi.Router) {
			r.Delete("/", s.deleteProject)
			r.Get("/session", s.getSession)
			r.Put("/session", s.putSession)
		})
	})
	return r
}

func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("gateway listening")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("dur", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "project name must not be empty")
		return
	}
	if err := s.store.CreateProject(r.Context(), name); err != nil {
		if errors.Is(err, ErrProjectExists) {
			writeError(w, http.StatusConflict, "project already exists")
			return
		}
		s.internalError(w, err)
		return
	}
	s.log.Info().Str("project", name).Msg("project created")
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.DeleteProject(r.Context(), name); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.internalError(w, err)
		return
	}
	s.log.Info().Str("project", name).Msg("project deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, ok, err := s.store.GetSession(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.internalError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no session stored for project")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) putSession(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Decode into the document type so malformed payloads are rejected at
	// the boundary; storage itself treats the document as opaque.
	var doc model.Session
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid session document")
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if err := s.store.PutSession(r.Context(), name, raw); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
