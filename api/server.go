package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/avolkov/seabattle/game/config"
	"github.com/avolkov/seabattle/game/engine"
	"github.com/avolkov/seabattle/game/service"
	"github.com/avolkov/seabattle/game/session"
	"github.com/avolkov/seabattle/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     zerolog.Logger
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, log zerolog.Logger) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session lifecycle
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/join", s.handleJoin).Methods("POST")
	api.HandleFunc("/sessions/{id}/rematch", s.handleRematch).Methods("POST")

	// Setup phase
	api.HandleFunc("/sessions/{id}/ships", s.handlePlaceShip).Methods("POST")
	api.HandleFunc("/sessions/{id}/ships", s.handleRetractShip).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/auto-place", s.handleAutoPlace).Methods("POST")
	api.HandleFunc("/sessions/{id}/ready", s.handleReady).Methods("POST")
	api.HandleFunc("/sessions/{id}/preview", s.handlePreview).Methods("GET")

	// Battle phase
	api.HandleFunc("/sessions/{id}/attack", s.handleAttack).Methods("POST")
	api.HandleFunc("/sessions/{id}/surrender", s.handleSurrender).Methods("POST")

	// Queries
	api.HandleFunc("/sessions/{id}/snapshot", s.handleSnapshot).Methods("GET")
	api.HandleFunc("/modes", s.handleListModes).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps engine and registry errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, engine.ErrPlayerNotFound),
		errors.Is(err, config.ErrModeNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrGameFull),
		errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrGameOver),
		errors.Is(err, engine.ErrAllShipsPlaced),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrCellAlreadyAttacked),
		errors.Is(err, engine.ErrPlacementExhausted),
		errors.Is(err, session.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidPlacement),
		errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrIncompleteFleet),
		errors.Is(err, engine.ErrInvalidMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusForError(err), err.Error())
}

// pushState fans fresh per-player snapshots out to the session's
// WebSocket clients. Requests detached from the HTTP context so a
// client disconnect does not cancel the push.
func (s *Server) pushState(sessionID string) {
	if s.hub == nil {
		return
	}
	s.hub.PushSnapshots(sessionID, func(playerID string) (interface{}, error) {
		return s.service.Snapshot(context.Background(), sessionID, playerID)
	})
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode       string `json:"mode,omitempty"`
		Timed      bool   `json:"timed,omitempty"`
		PlayerID   string `json:"player_id,omitempty"`
		PlayerName string `json:"player_name,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	seat, err := s.service.CreateSession(r.Context(), req.Mode, req.Timed, req.PlayerID, req.PlayerName)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.log.Info().Str("session", seat.Snapshot.ID).Str("mode", seat.Snapshot.Mode).
		Bool("timed", seat.Snapshot.Timed).Msg("session created")
	respondJSON(w, http.StatusCreated, seat)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID   string `json:"player_id,omitempty"`
		PlayerName string `json:"player_name,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	seat, err := s.service.JoinSession(r.Context(), sessionID, req.PlayerID, req.PlayerName)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.pushState(seat.Snapshot.ID)
	s.log.Info().Str("session", seat.Snapshot.ID).Str("player", seat.PlayerID).Msg("player joined")
	respondJSON(w, http.StatusOK, seat)
}

func (s *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	seat, err := s.service.Rematch(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "rematch", map[string]string{"session_id": seat.Snapshot.ID})
	}
	s.log.Info().Str("session", sessionID).Str("rematch", seat.Snapshot.ID).Msg("rematch created")
	respondJSON(w, http.StatusCreated, seat)
}

// Setup Handlers

func (s *Server) handlePlaceShip(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID   string `json:"player_id"`
		Size       int    `json:"size"`
		Row        int    `json:"row"`
		Col        int    `json:"col"`
		Horizontal bool   `json:"horizontal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.service.PlaceShip(r.Context(), sessionID, req.PlayerID, req.Size, req.Row, req.Col, req.Horizontal)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRetractShip(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
		Row      int    `json:"row"`
		Col      int    `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.service.RetractShip(r.Context(), sessionID, req.PlayerID, req.Row, req.Col)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAutoPlace(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.service.AutoPlace(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.service.SetReady(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.pushState(sessionID)
	if snap.Phase == engine.PhaseBattle {
		s.log.Info().Str("session", sessionID).Str("turn", snap.Turn).Msg("battle started")
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	query := r.URL.Query()

	playerID := query.Get("player")
	size, err := strconv.Atoi(query.Get("size"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "size parameter required")
		return
	}
	row, err := strconv.Atoi(query.Get("row"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "row parameter required")
		return
	}
	col, err := strconv.Atoi(query.Get("col"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "col parameter required")
		return
	}
	horizontal := query.Get("horizontal") != "false"

	preview, err := s.service.Preview(r.Context(), sessionID, playerID, size, row, col, horizontal)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, preview)
}

// Battle Handlers

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
		Row      int    `json:"row"`
		Col      int    `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Attack(r.Context(), sessionID, req.PlayerID, req.Row, req.Col)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.pushState(sessionID)

	s.log.Info().Str("session", sessionID).Str("player", req.PlayerID).
		Int("row", result.Outcome.Row).Int("col", result.Outcome.Col).
		Bool("hit", result.Outcome.Hit).Bool("sunk", result.Outcome.Sunk).
		Bool("won", result.Outcome.AllSunk).Msg("attack")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.service.Surrender(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.pushState(sessionID)
	s.log.Info().Str("session", sessionID).Str("player", req.PlayerID).Msg("surrender")
	respondJSON(w, http.StatusOK, snap)
}

// Query Handlers

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		respondError(w, http.StatusBadRequest, "player parameter required")
		return
	}

	snap, err := s.service.Snapshot(r.Context(), sessionID, playerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListModes(w http.ResponseWriter, r *http.Request) {
	modes, err := s.service.ListModes(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, modes)
}

// NotifySessions pushes fresh snapshots for the given session ids.
// Used by the turn-timeout scanner, which finishes games outside any
// HTTP request.
func (s *Server) NotifySessions(sessionIDs []string) {
	for _, id := range sessionIDs {
		s.pushState(id)
	}
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.URL.Query().Get("session")
	playerID := r.URL.Query().Get("player")
	if sessionID == "" || playerID == "" {
		http.Error(w, "session and player parameters required", http.StatusBadRequest)
		return
	}

	// Verify the seat exists before upgrading
	if _, err := s.service.Snapshot(r.Context(), sessionID, playerID); err != nil {
		http.Error(w, "Invalid session or player", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, playerID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
