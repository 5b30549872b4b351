package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/domain/live"
	"github.com/feltline/feltline/internal/importer"
	"github.com/go-chi/chi/v5"
)

// SessionStores hands out the per-user live session store.
type SessionStores interface {
	Store(ctx context.Context, userID string) *live.Store
}

// HistoryService exposes the finalized-session operations the API needs.
type HistoryService interface {
	List(ctx context.Context, userID string) ([]history.Record, error)
	SweepDuplicates(ctx context.Context, userID string) (int, error)
}

// RecordImporter runs batch imports.
type RecordImporter interface {
	Run(ctx context.Context, userID string, src importer.Source) (importer.Result, error)
}

// Server wires HTTP handlers.
type Server struct {
	stores   SessionStores
	history  HistoryService
	importer RecordImporter
	logger   *slog.Logger
}

// NewServer creates the API router with middleware.
func NewServer(stores SessionStores, historySvc HistoryService, recImporter RecordImporter, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{stores: stores, history: historySvc, importer: recImporter, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Get("/live", srv.handleGetLive)
		r.Delete("/live", srv.handleClearLive)
		r.Post("/live/start", srv.handleStart)
		r.Post("/live/pause", srv.handlePause)
		r.Post("/live/resume", srv.handleResume)
		r.Post("/live/buy-in", srv.handleAddBuyIn)
		r.Put("/live/buy-in", srv.handleSetBuyIn)
		r.Post("/live/chip-updates", srv.handleChipUpdate)
		r.Post("/live/chip-updates/{id}/posted", srv.handleMarkPosted)
		r.Post("/live/hand-histories", srv.handleHandHistory)
		r.Post("/live/notes", srv.handleNote)
		r.Put("/live/notes/{index}", srv.handleEditNote)
		r.Post("/live/end", srv.handleEnd)

		r.Get("/sessions", srv.handleListSessions)
		r.Post("/sessions/sweep", srv.handleSweep)
		r.Post("/sessions/import", srv.handleImport)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) store(r *http.Request) (*live.Store, string, bool) {
	userID, ok := UserFromContext(r.Context())
	if !ok || userID == "" {
		return nil, "", false
	}
	return s.stores.Store(r.Context(), userID), userID, true
}

func (s *Server) handleGetLive(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	view, ok := store.CurrentView()
	if !ok {
		writeError(w, live.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleClearLive(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	store.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type startRequest struct {
	GameName     string                  `json:"game_name"`
	Stakes       string                  `json:"stakes"`
	BuyIn        int64                   `json:"buy_in"`
	IsTournament bool                    `json:"is_tournament"`
	Tournament   *live.TournamentDetails `json:"tournament,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	session, err := store.Start(r.Context(), live.StartRequest{
		GameName:     req.GameName,
		Stakes:       req.Stakes,
		BuyIn:        req.BuyIn,
		IsTournament: req.IsTournament,
		Tournament:   req.Tournament,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.simpleOp(w, r, func(ctx context.Context, store *live.Store) error {
		return store.Pause(ctx)
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.simpleOp(w, r, func(ctx context.Context, store *live.Store) error {
		return store.Resume(ctx)
	})
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleAddBuyIn(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.simpleOp(w, r, func(ctx context.Context, store *live.Store) error {
		return store.AddBuyIn(ctx, req.Amount)
	})
}

func (s *Server) handleSetBuyIn(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.simpleOp(w, r, func(ctx context.Context, store *live.Store) error {
		return store.SetTotalBuyIn(ctx, req.Amount)
	})
}

type chipUpdateRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note,omitempty"`
}

func (s *Server) handleChipUpdate(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	var req chipUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	update, err := store.AppendChipUpdate(r.Context(), req.Amount, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, update)
}

func (s *Server) handleMarkPosted(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.simpleOp(w, r, func(ctx context.Context, store *live.Store) error {
		return store.MarkChipUpdatePosted(ctx, id)
	})
}

type contentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleHandHistory(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	entry, err := store.AppendHandHistory(r.Context(), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	index, err := store.AppendNote(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": index})
}

func (s *Server) handleEditNote(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid note index", http.StatusBadRequest)
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.simpleOp(w, r, func(ctx context.Context, store *live.Store) error {
		return store.EditNote(ctx, index, req.Text)
	})
}

type endRequest struct {
	Cashout int64 `json:"cashout"`
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recordID, err := store.End(r.Context(), req.Cashout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"record_id": recordID})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	records, err := s.history.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": records})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	deleted, err := s.history.SweepDuplicates(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// handleImport accepts newline-delimited normalized records.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	result, err := s.importer.Run(r.Context(), userID, importer.NewJSONLines(r.Body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"imported":           result.Imported,
		"failed":             result.Failed,
		"duplicates_removed": result.DuplicatesRemoved,
	})
}

func (s *Server) simpleOp(w http.ResponseWriter, r *http.Request, op func(context.Context, *live.Store) error) {
	store, _, ok := s.store(r)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	if err := op(r.Context(), store); err != nil {
		writeError(w, err)
		return
	}
	view, ok := store.CurrentView()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, live.ErrNoSession),
		errors.Is(err, live.ErrNoSuchNote),
		errors.Is(err, live.ErrNoSuchChipUpdate),
		errors.Is(err, history.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, live.ErrNotActive),
		errors.Is(err, live.ErrNotPaused),
		errors.Is(err, live.ErrEnded):
		status = http.StatusConflict
	case errors.Is(err, live.ErrInvalidAmount),
		errors.Is(err, live.ErrInvalidInput),
		errors.Is(err, history.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
