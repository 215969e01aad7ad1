// Package api exposes the board over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gmllt/kanboard/internal/board"
	"github.com/gmllt/kanboard/internal/session"
)

const maxBodyBytes = 1 << 20

// CardInput is the body of add and edit requests.
type CardInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MoveInput is the body of move requests.
type MoveInput struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AddOutput carries the created card, or no card when the column does not
// exist.
type AddOutput struct {
	Card  *board.Card `json:"card,omitempty"`
	Board board.Board `json:"board"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Options configures optional routes.
type Options struct {
	Metrics   http.Handler
	StaticDir string
}

type handlers struct {
	session *session.Session
}

// NewRouter registers the board routes.
func NewRouter(s *session.Session, opts Options) *mux.Router {
	h := &handlers{session: s}
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/board", h.getBoard).Methods(http.MethodGet)
	r.HandleFunc("/api/columns/{column}/cards", h.addCard).Methods(http.MethodPost)
	r.HandleFunc("/api/columns/{column}/cards/{id}", h.editCard).Methods(http.MethodPut)
	r.HandleFunc("/api/columns/{column}/cards/{id}", h.deleteCard).Methods(http.MethodDelete)
	r.HandleFunc("/api/cards/{id}/move", h.moveCard).Methods(http.MethodPost)

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}
	if opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir))).
			Methods(http.MethodGet, http.MethodHead)
	}
	return r
}

func (h *handlers) getBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Board(r.Context()))
}

func (h *handlers) addCard(w http.ResponseWriter, r *http.Request) {
	var in CardInput
	if !decode(w, r, &in) {
		return
	}
	column := mux.Vars(r)["column"]

	b, card, err := h.session.AddCard(r.Context(), column, in.Title, in.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if card.ID == "" {
		log.Debug().Str("column", column).Msg("Add to unknown column ignored")
		writeJSON(w, http.StatusOK, AddOutput{Board: b})
		return
	}
	log.Info().Str("column", column).Str("card", card.ID).Msg("Card created")
	writeJSON(w, http.StatusCreated, AddOutput{Card: &card, Board: b})
}

func (h *handlers) editCard(w http.ResponseWriter, r *http.Request) {
	var in CardInput
	if !decode(w, r, &in) {
		return
	}
	vars := mux.Vars(r)

	b, err := h.session.EditCard(r.Context(), vars["column"], vars["id"], in.Title, in.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) deleteCard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, h.session.DeleteCard(r.Context(), vars["column"], vars["id"]))
}

func (h *handlers) moveCard(w http.ResponseWriter, r *http.Request) {
	var in MoveInput
	if !decode(w, r, &in) {
		return
	}
	id := mux.Vars(r)["id"]
	writeJSON(w, http.StatusOK, h.session.MoveCard(r.Context(), id, in.From, in.To))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Bad request body")
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("Request")
	})
}
