package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/calvinwijaya/counterpoint/internal/game"
	"github.com/calvinwijaya/counterpoint/internal/store"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Config controls how new tables are created
type Config struct {
	Rules game.Rules
	// Seed makes every new table deal from the same sequence. Zero seeds from the clock.
	Seed int64
}

// Handlers contains all the API handlers
type Handlers struct {
	store  store.Store
	hub    *Hub
	logger *zap.Logger
	cfg    Config
}

// NewHandlers creates a new instance of Handlers
func NewHandlers(s store.Store, hub *Hub, logger *zap.Logger, cfg Config) *Handlers {
	h := &Handlers{
		store:  s,
		hub:    hub,
		logger: logger,
		cfg:    cfg,
	}
	if hub != nil {
		hub.SetSnapshotFunc(func(tableID string) (interface{}, bool) {
			t, err := s.GetTable(tableID)
			if err != nil {
				return nil, false
			}
			return t, true
		})
	}
	return h
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.Use(middleware.RequestID, middleware.RealIP, h.requestLogger, middleware.Recoverer)

	// Table endpoints
	r.HandleFunc("/api/table/new", h.NewTable).Methods("POST")
	r.HandleFunc("/api/table/list", h.ListTables).Methods("GET")
	r.HandleFunc("/api/table/{id}", h.GetTable).Methods("GET")
	r.HandleFunc("/api/table/{id}", h.DeleteTable).Methods("DELETE")

	// Game actions
	r.HandleFunc("/api/table/{id}/round", h.StartRound).Methods("POST")
	r.HandleFunc("/api/table/{id}/prepare", h.PrepareRound).Methods("POST")
	r.HandleFunc("/api/table/{id}/deal", h.Deal).Methods("POST")
	r.HandleFunc("/api/table/{id}/bid", h.SubmitBid).Methods("POST")
	r.HandleFunc("/api/table/{id}/play", h.PlayCard).Methods("POST")
	r.HandleFunc("/api/table/{id}/scores", h.ComputeScores).Methods("POST")
	r.HandleFunc("/api/table/{id}/names", h.SetNames).Methods("POST")
	r.HandleFunc("/api/table/{id}/new-game", h.NewGame).Methods("POST")
	r.HandleFunc("/api/table/{id}/legal", h.LegalCards).Methods("GET")

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.WebSocketHandler)
	}
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

type rejectionResponse struct {
	Error string      `json:"error"`
	Code  game.Reason `json:"code"`
	Table store.Table `json:"table"`
}

func (h *Handlers) newSource() game.Source {
	if h.cfg.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(h.cfg.Seed))
}

// NewTable creates a table for a new game
func (h *Handlers) NewTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	t, err := store.NewTable(h.cfg.Rules, h.newSource(), req.Names)
	if err != nil {
		h.logger.Error("failed to create table", zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Failed to create table")
		return
	}
	saved, err := h.store.SaveTable(t)
	if err != nil {
		h.logger.Error("failed to save table", zap.String("table_id", t.ID), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Failed to save table")
		return
	}

	h.logger.Info("table created", zap.String("table_id", t.ID), zap.Strings("players", saved.State.Names()))
	response(w, http.StatusCreated, saved)
}

// ListTables returns every table
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables()
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to list tables")
		return
	}
	response(w, http.StatusOK, tables)
}

// GetTable returns one table
func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTable(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	}
	response(w, http.StatusOK, t)
}

// DeleteTable removes a table
func (h *Handlers) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteTable(id); err != nil {
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	}
	h.logger.Info("table deleted", zap.String("table_id", id))
	response(w, http.StatusOK, map[string]string{"message": "Table deleted"})
}

// StartRound deals a new round
func (h *Handlers) StartRound(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, game.StartRound{})
}

// PrepareRound clears the table for a new round
func (h *Handlers) PrepareRound(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, game.PrepareRound{})
}

// Deal deals a prepared round
func (h *Handlers) Deal(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, game.DealCards{})
}

// SubmitBid discards the selected cards as a player's bid
func (h *Handlers) SubmitBid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID int      `json:"playerId"`
		CardIDs  []string `json:"cardIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cards := make([]game.Card, 0, len(req.CardIDs))
	for _, id := range req.CardIDs {
		c, ok := game.CardByID(id)
		if !ok {
			errorResponse(w, http.StatusBadRequest, "Unknown card "+id)
			return
		}
		cards = append(cards, c)
	}
	h.apply(w, r, game.SubmitBid{Player: req.PlayerID, Cards: cards})
}

// PlayCard plays a card onto the current trick
func (h *Handlers) PlayCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID int    `json:"playerId"`
		CardID   string `json:"cardId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, ok := game.CardByID(req.CardID)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "Unknown card "+req.CardID)
		return
	}
	h.apply(w, r, game.PlayCard{Player: req.PlayerID, Card: c})
}

// ComputeScores scores a finished round
func (h *Handlers) ComputeScores(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, game.ComputeScores{})
}

// SetNames renames the players
func (h *Handlers) SetNames(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.apply(w, r, game.SetPlayerNames{Names: req.Names})
}

// NewGame resets the table's scores and returns it to setup
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, game.StartNewGame{})
}

// LegalCards lists the cards a player may play right now. The player defaults
// to the one whose turn it is.
func (h *Handlers) LegalCards(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTable(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	}

	s := t.State
	player := s.Turn
	if q := r.URL.Query().Get("playerId"); q != "" {
		player, err = strconv.Atoi(q)
		if err != nil || player < 0 || player >= len(s.Players) {
			errorResponse(w, http.StatusBadRequest, "Invalid playerId")
			return
		}
	}

	ids := []string{}
	if s.Phase == game.Playing && player == s.Turn {
		for _, c := range game.LegalCards(s.Players[player].Hand, s.CurrentTrick, s.Trump) {
			ids = append(ids, c.ID)
		}
	}
	response(w, http.StatusOK, map[string]interface{}{
		"playerId": player,
		"cardIds":  ids,
	})
}

// apply runs an action against a table, stores the result and tells the
// table's websocket clients about it
func (h *Handlers) apply(w http.ResponseWriter, r *http.Request, a game.Action) {
	id := mux.Vars(r)["id"]
	name := game.ActionName(a)

	var rejection *game.RejectionError
	t, err := h.store.UpdateTable(id, func(t *store.Table) error {
		next, err := t.Engine.Apply(t.State, a)
		if rej, ok := game.IsRejection(err); ok {
			rejection = rej
			t.State = next
			return nil
		}
		if err != nil {
			return err
		}
		t.State = next
		return nil
	})

	switch {
	case errors.Is(err, store.ErrTableNotFound):
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	case errors.Is(err, game.ErrInvariant):
		h.logger.Error("game invariant violated",
			zap.String("table_id", id),
			zap.String("action", name),
			zap.Error(err),
		)
		errorResponse(w, http.StatusInternalServerError, "Internal game error")
		return
	case err != nil:
		h.logger.Error("failed to apply action", zap.String("table_id", id), zap.String("action", name), zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Failed to apply action")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastTableUpdate(t)
	}

	if rejection != nil {
		h.logger.Debug("action rejected",
			zap.String("table_id", id),
			zap.String("action", name),
			zap.String("reason", string(rejection.Reason)),
		)
		response(w, http.StatusConflict, rejectionResponse{
			Error: rejection.Message,
			Code:  rejection.Reason,
			Table: t,
		})
		return
	}

	h.logger.Info("action applied",
		zap.String("table_id", id),
		zap.String("action", name),
		zap.String("phase", string(t.State.Phase)),
		zap.Int("round", t.State.Round),
	)
	response(w, http.StatusOK, t)
}
