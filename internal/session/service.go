// Package session hosts games over HTTP: it persists each game's state,
// runs the presentation delay between accepting and resolving a decision,
// and pushes resolved turns to WebSocket clients.
//
// The engine itself is pure; everything with side effects lives here.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ceosim/game-engine/internal/game"
	"github.com/ceosim/game-engine/internal/metrics"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/store"
)

// DefaultDecisionDelay is the pause between accepting a decision and
// resolving it.
const DefaultDecisionDelay = 1500 * time.Millisecond

// Options tunes the service.
type Options struct {
	Delay time.Duration // zero resolves decisions without a pause
	// Schedule runs f after d. Defaults to time.AfterFunc; tests pass a
	// synchronous scheduler.
	Schedule func(d time.Duration, f func())
}

// Service handles game sessions. Uses a mutex to serialize state
// transitions (single-instance).
type Service struct {
	store    store.Store
	engine   *game.Engine
	wsHub    *WSHub // optional WebSocket hub for turn broadcasts
	delay    time.Duration
	schedule func(time.Duration, func())
	mu       sync.Mutex
}

// NewService creates a new session service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, eng *game.Engine, hub *WSHub, opts Options) *Service {
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Schedule == nil {
		opts.Schedule = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &Service{
		store:    st,
		engine:   eng,
		wsHub:    hub,
		delay:    opts.Delay,
		schedule: opts.Schedule,
	}
}

// --- Request/Response types ---

// CreateGameRequest is the JSON body for POST /games.
type CreateGameRequest struct {
	CompanyName string     `json:"company_name"`
	Mode        model.Mode `json:"mode"` // simple (default) or story
}

// DecisionRequest is the JSON body for POST /games/{gameID}/decisions.
type DecisionRequest struct {
	DecisionID string `json:"decision_id"`
}

// GameView is the JSON representation of a game returned by every
// state-changing endpoint.
type GameView struct {
	ID              string          `json:"id"`
	Phase           model.Phase     `json:"phase"`
	GlobalHappiness int             `json:"global_happiness,omitempty"`
	Message         string          `json:"message,omitempty"`
	State           model.GameState `json:"state"`
}

// GameSummary is one row of GET /games.
type GameSummary struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"company_name"`
	Mode        model.Mode      `json:"mode"`
	GamePhase   model.GamePhase `json:"game_phase"`
	TurnCount   int             `json:"turn_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CatalogEvent is an event with its decisions, as listed by GET /catalog.
type CatalogEvent struct {
	model.GameEvent
	Decisions []model.DecisionOption `json:"decisions"`
}

func newView(g *store.Game, message string) GameView {
	return GameView{
		ID:              g.ID,
		Phase:           game.CurrentPhase(g.State),
		GlobalHappiness: model.GlobalHappiness(g.State.Regions),
		Message:         message,
		State:           g.State,
	}
}

// --- HTTP Handlers ---

// CreateGame handles POST /api/v1/games
func (s *Service) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	out, err := s.engine.Start(req.CompanyName, req.Mode)
	if err != nil {
		slog.Error("start game failed", "err", err)
		writeError(w, "failed to start game", http.StatusInternalServerError)
		return
	}
	if !out.Accepted {
		writeError(w, out.Message, http.StatusBadRequest)
		return
	}

	g := &store.Game{ID: uuid.NewString(), State: out.State}
	if err := s.store.CreateGame(r.Context(), g); err != nil {
		slog.Error("persist game failed", "id", g.ID, "err", err)
		writeError(w, "failed to save game", http.StatusInternalServerError)
		return
	}

	metrics.GamesStarted.WithLabelValues(string(g.State.Mode)).Inc()
	track(model.GameState{}, g.State)
	slog.Info("game created",
		"id", g.ID,
		"company", req.CompanyName,
		"mode", g.State.Mode,
		"event", eventID(g.State),
	)

	writeJSON(w, http.StatusCreated, newView(g, out.Message))
}

// ListGames handles GET /api/v1/games
func (s *Service) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		writeError(w, "failed to list games", http.StatusInternalServerError)
		return
	}

	summaries := make([]GameSummary, 0, len(games))
	for _, g := range games {
		summaries = append(summaries, GameSummary{
			ID:          g.ID,
			CompanyName: g.State.Company.Name,
			Mode:        g.State.Mode,
			GamePhase:   g.State.GamePhase,
			TurnCount:   g.State.TurnCount,
			CreatedAt:   g.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetGame handles GET /api/v1/games/{gameID}
func (s *Service) GetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newView(g, ""))
}

// SubmitDecision handles POST /api/v1/games/{gameID}/decisions
// Accepts the decision and schedules its resolution after the
// presentation delay. Responds 202 with the processing state.
func (s *Service) SubmitDecision(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DecisionID == "" {
		writeError(w, "decision_id is required", http.StatusBadRequest)
		return
	}

	g, out, ok := s.apply(w, r, game.Begin{DecisionID: req.DecisionID})
	if !ok {
		return
	}
	if !out.Accepted {
		metrics.DecisionRejections.Inc()
		writeError(w, out.Message, http.StatusConflict)
		return
	}

	slog.Info("decision accepted", "game", g.ID, "decision", req.DecisionID, "turn", g.State.TurnCount+1)
	writeJSON(w, http.StatusAccepted, newView(g, out.Message))

	gameID := g.ID
	s.schedule(s.delay, func() { s.resolve(gameID, req.DecisionID) })
}

// ResetGame handles POST /api/v1/games/{gameID}/reset
// Discards progress and starts over with the same company and mode.
func (s *Service) ResetGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.load(w, r)
	if !ok {
		return
	}
	before := g.State

	reset, err := s.engine.Reduce(g.State, game.Reset{})
	if err != nil {
		writeError(w, "failed to reset game", http.StatusInternalServerError)
		return
	}
	out, err := s.engine.Reduce(reset.State, game.Start{CompanyName: before.Company.Name, Mode: before.Mode})
	if err != nil || !out.Accepted {
		slog.Error("restart after reset failed", "game", g.ID, "err", err, "message", out.Message)
		writeError(w, "failed to restart game", http.StatusInternalServerError)
		return
	}

	g.State = out.State
	if err := s.store.SaveGame(r.Context(), g); err != nil {
		writeError(w, "failed to save game", http.StatusInternalServerError)
		return
	}
	track(before, g.State)
	slog.Info("game reset", "game", g.ID)
	writeJSON(w, http.StatusOK, newView(g, reset.Message))
}

// DevelopProduct handles POST /api/v1/games/{gameID}/products
func (s *Service) DevelopProduct(w http.ResponseWriter, r *http.Request) {
	var req game.DevelopProduct
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.storyAction(w, r, req)
}

// EnterMarket handles POST /api/v1/games/{gameID}/markets
func (s *Service) EnterMarket(w http.ResponseWriter, r *http.Request) {
	var req game.EnterMarket
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.storyAction(w, r, req)
}

func (s *Service) storyAction(w http.ResponseWriter, r *http.Request, a game.Action) {
	g, out, ok := s.apply(w, r, a)
	if !ok {
		return
	}
	if !out.Accepted {
		writeError(w, out.Message, http.StatusConflict)
		return
	}
	slog.Info("story action applied", "game", g.ID, "message", out.Message)
	writeJSON(w, http.StatusOK, newView(g, out.Message))
}

// ListTurns handles GET /api/v1/games/{gameID}/turns
// Returns the turn ledger in play order.
func (s *Service) ListTurns(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	turns, err := s.store.ListTurns(r.Context(), g.ID)
	if err != nil {
		writeError(w, "failed to list turns", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// GetScore handles GET /api/v1/games/{gameID}/score
func (s *Service) GetScore(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	if !game.IsGameComplete(g.State) || g.State.FinalResults == nil {
		writeError(w, "game is not complete", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, g.State.FinalResults)
}

// GetCatalog handles GET /api/v1/catalog
// Lists every event and its decisions, grouped by phase.
func (s *Service) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	cat := s.engine.Catalog()
	resp := make(map[model.Phase][]CatalogEvent, len(model.Phases))
	for _, p := range model.Phases {
		events := []CatalogEvent{}
		for _, ev := range cat.Events(p) {
			events = append(events, CatalogEvent{GameEvent: ev, Decisions: cat.Decisions(ev.ID)})
		}
		resp[p] = events
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Turn resolution ---

// resolve completes a decision accepted by SubmitDecision. It runs outside
// any request, so failures are logged rather than returned.
func (s *Service) resolve(gameID, decisionID string) {
	ctx := context.Background()
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		slog.Error("resolve: load game failed", "game", gameID, "err", err)
		return
	}
	before := g.State

	out, err := s.engine.Reduce(g.State, game.Resolve{DecisionID: decisionID})
	if err != nil {
		slog.Error("resolve failed", "game", gameID, "decision", decisionID, "err", err)
		s.withdraw(ctx, g)
		return
	}
	if !out.Accepted {
		// The game was reset, or another decision is now pending.
		slog.Warn("resolve rejected", "game", gameID, "decision", decisionID, "reason", out.Message)
		return
	}

	g.State = out.State
	if err := s.save(ctx, g); err != nil {
		slog.Error("resolve: save game failed", "game", gameID, "err", err)
		g.State = before
		s.withdraw(ctx, g)
		return
	}
	if out.Result != nil {
		rec := store.NewTurnRecord(gameID, out.State, *out.Result)
		if err := s.store.InsertTurn(ctx, &rec); err != nil {
			slog.Error("resolve: record turn failed", "game", gameID, "err", err)
		}
		metrics.DecisionsTotal.WithLabelValues(string(out.Result.Type), outcome(out.Result.Success)).Inc()
	}
	metrics.TurnLatency.Observe(time.Since(start).Seconds())
	track(before, g.State)

	slog.Info("turn resolved",
		"game", gameID,
		"turn", g.State.TurnCount,
		"decision", decisionID,
		"success", out.Result != nil && out.Result.Success,
		"market_cap", g.State.Company.MarketCap.String(),
		"cash", g.State.Company.Cash.String(),
	)
	if out.Quarter != nil {
		slog.Info("quarter closed",
			"game", gameID,
			"released", len(out.Quarter.Released),
			"revenue", out.Quarter.Revenue.String(),
		)
	}

	s.broadcast(g, out)
}

// save writes g, retrying once.
func (s *Service) save(ctx context.Context, g *store.Game) error {
	err := s.store.SaveGame(ctx, g)
	if err == nil {
		return nil
	}
	slog.Warn("save game failed, retrying", "game", g.ID, "err", err)
	return s.store.SaveGame(ctx, g)
}

// withdraw closes the processing window of a turn that could not be
// completed so the player can submit again.
func (s *Service) withdraw(ctx context.Context, g *store.Game) {
	out, err := s.engine.Reduce(g.State, game.Cancel{})
	if err != nil || !out.Accepted {
		return
	}
	g.State = out.State
	if err := s.save(ctx, g); err != nil {
		slog.Error("withdraw: save game failed", "game", g.ID, "err", err)
		return
	}
	slog.Warn("decision withdrawn", "game", g.ID)
}

func (s *Service) broadcast(g *store.Game, out game.Outcome) {
	if s.wsHub == nil {
		return
	}
	msg := WSMessage{
		Type:       "turn_resolved",
		GameID:     g.ID,
		Turn:       g.State.TurnCount,
		DecisionID: out.Result.DecisionID,
		Success:    out.Result.Success,
		Message:    out.Message,
		GamePhase:  g.State.GamePhase,
		Phase:      game.CurrentPhase(g.State),
	}
	s.wsHub.Broadcast(msg)

	if game.IsGameComplete(g.State) && g.State.FinalResults != nil {
		msg.Type = "game_completed"
		msg.Ranking = g.State.FinalResults.Ranking
		msg.Message = g.State.FinalResults.Summary
		s.wsHub.Broadcast(msg)
	}
}

// --- Helpers ---

// load fetches the game named by the {gameID} URL parameter, writing a
// 404 or 500 on failure.
func (s *Service) load(w http.ResponseWriter, r *http.Request) (*store.Game, bool) {
	gameID := chi.URLParam(r, "gameID")
	g, err := s.store.GetGame(r.Context(), gameID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "game not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("load game failed", "game", gameID, "err", err)
		writeError(w, "failed to load game", http.StatusInternalServerError)
		return nil, false
	}
	return g, true
}

// apply runs a with the service lock held and persists the new state when
// the engine accepts it.
func (s *Service) apply(w http.ResponseWriter, r *http.Request, a game.Action) (*store.Game, game.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.load(w, r)
	if !ok {
		return nil, game.Outcome{}, false
	}
	out, err := s.engine.Reduce(g.State, a)
	if err != nil {
		slog.Error("engine error", "game", g.ID, "err", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return nil, game.Outcome{}, false
	}
	if !out.Accepted {
		return g, out, true
	}
	g.State = out.State
	if err := s.store.SaveGame(r.Context(), g); err != nil {
		slog.Error("save game failed", "game", g.ID, "err", err)
		writeError(w, "failed to save game", http.StatusInternalServerError)
		return nil, game.Outcome{}, false
	}
	return g, out, true
}

// track updates the game gauges for a state transition.
func track(before, after model.GameState) {
	wasPlaying := before.GamePhase == model.GamePlaying
	isPlaying := after.GamePhase == model.GamePlaying
	switch {
	case wasPlaying && !isPlaying:
		metrics.ActiveGames.Dec()
	case !wasPlaying && isPlaying:
		metrics.ActiveGames.Inc()
	}
	if after.GamePhase == model.GameCompleted && before.GamePhase != model.GameCompleted && after.FinalResults != nil {
		metrics.GamesCompleted.WithLabelValues(string(after.FinalResults.Ranking), string(after.CompletionReason)).Inc()
		slog.Info("game completed",
			"company", after.Company.Name,
			"reason", after.CompletionReason,
			"score", after.FinalResults.FinalScore,
			"ranking", after.FinalResults.Ranking,
		)
	}
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func eventID(s model.GameState) string {
	if s.CurrentEvent == nil {
		return ""
	}
	return s.CurrentEvent.ID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
