package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/voro/platform/internal/domain"
	"github.com/voro/platform/internal/service"
)

// GameHandler handles game lifecycle endpoints.
type GameHandler struct {
	games *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

type createGameRequest struct {
	CreatorID      string  `json:"creator_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	StartsAt       int64   `json:"starts_at"`
	EndsAt         int64   `json:"ends_at"`
	CourtCostCents int64   `json:"court_cost_cents"`
	MinSkill       float64 `json:"min_skill"`
	MaxSkill       float64 `json:"max_skill"`
	MaxPlayers     int     `json:"max_players"`
}

func (req *createGameRequest) validate() error {
	if req.CreatorID == "" {
		return domain.ErrValidation("creator_id is required")
	}
	if req.Name == "" {
		return domain.ErrValidation("name is required")
	}
	if req.Location == "" {
		return domain.ErrValidation("location is required")
	}
	if err := domain.ValidateSkillBounds(req.MinSkill, req.MaxSkill); err != nil {
		return err
	}
	if err := domain.ValidateMaxPlayers(req.MaxPlayers); err != nil {
		return err
	}
	if err := domain.ValidateSchedule(req.StartsAt, req.EndsAt, time.Now().Unix()); err != nil {
		return err
	}
	return domain.ValidateCourtCost(req.CourtCostCents)
}

// CreateGame handles POST /games.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		RespondError(w, err)
		return
	}

	game, err := h.games.Create(r.Context(), service.CreateGameInput{
		CreatorID:      req.CreatorID,
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		CourtCostCents: req.CourtCostCents,
		MinSkill:       req.MinSkill,
		MaxSkill:       req.MaxSkill,
		MaxPlayers:     req.MaxPlayers,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, game)
}

// ListOpenGames handles GET /games.
func (h *GameHandler) ListOpenGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListOpen(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, games)
}

// GetGame handles GET /games/{id}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, game)
}

// ListUserGames handles GET /users/{id}/games.
func (h *GameHandler) ListUserGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListForUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, games)
}

// JoinWaitlist handles POST /games/{id}/waitlist.
func (h *GameHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.UserID == "" {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}
	if err := h.games.JoinWaitlist(r.Context(), chi.URLParam(r, "id"), req.UserID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]string{"status": string(domain.WaitlistPending)})
}

// PendingWaitlist handles GET /games/{id}/waitlist.
func (h *GameHandler) PendingWaitlist(w http.ResponseWriter, r *http.Request) {
	requests, err := h.games.PendingWaitlist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, requests)
}

// ApproveWaitlist handles POST /games/{id}/waitlist/{userID}/approve.
func (h *GameHandler) ApproveWaitlist(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Approve(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// RejectWaitlist handles POST /games/{id}/waitlist/{userID}/reject.
func (h *GameHandler) RejectWaitlist(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Reject(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// LeaveGame handles DELETE /games/{id}/players/{userID}.
func (h *GameHandler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Leave(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// CancelGame handles DELETE /games/{id}.
func (h *GameHandler) CancelGame(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// SetGroupChat handles PATCH /games/{id}/group-chat.
func (h *GameHandler) SetGroupChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupChatID string `json:"group_chat_id"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.GroupChatID == "" {
		RespondError(w, domain.ErrValidation("group_chat_id is required"))
		return
	}
	if err := h.games.SetGroupChat(r.Context(), chi.URLParam(r, "id"), req.GroupChatID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
