// Package api exposes stored questions over a small read-only HTTP surface
// for the game frontend.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/henzelabs/chattrivia/internal/question"
	"github.com/henzelabs/chattrivia/internal/store"
)

type Server struct {
	router *chi.Mux
	store  *store.Store
	port   int
}

func NewServer(s *store.Store, port int) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	srv := &Server{
		router: router,
		store:  s,
		port:   port,
	}

	router.Get("/health", srv.health)
	router.Get("/api/v1/batches", srv.listBatches)
	router.Get("/api/v1/questions", srv.listQuestions)
	router.Get("/api/v1/questions/{id}", srv.getQuestion)

	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.store.ListBatches(r.Context())
	if err != nil {
		slog.Error("list batches failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if batches == nil {
		batches = []store.Batch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

// listQuestions returns all questions, or one batch's questions when
// ?batch=<uuid> is given.
func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if raw := r.URL.Query().Get("batch"); raw != "" {
		batchID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid batch id")
			return
		}
		qs, err := s.store.Questions(ctx, batchID)
		if err != nil {
			slog.Error("list batch questions failed", "batch", batchID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		writeQuestions(w, qs)
		return
	}

	qs, err := s.store.AllQuestions(ctx)
	if err != nil {
		slog.Error("list questions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeQuestions(w, qs)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	q, err := s.store.GetQuestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		slog.Error("get question failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func writeQuestions(w http.ResponseWriter, qs []question.Question) {
	if qs == nil {
		qs = []question.Question{}
	}
	writeJSON(w, http.StatusOK, qs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
