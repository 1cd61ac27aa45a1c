package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voro/platform/internal/domain"
	"github.com/voro/platform/internal/service"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type registerUserRequest struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

// Register handles POST /users. The operation is an upsert: a repeat call for
// a known id refreshes handle and display name and leaves the rest alone.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.ID == "" {
		RespondError(w, domain.ErrValidation("id is required"))
		return
	}
	if req.DisplayName == "" {
		RespondError(w, domain.ErrValidation("display_name is required"))
		return
	}

	user, err := h.users.Register(r.Context(), req.ID, req.Handle, req.DisplayName)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

// SetSkill handles PATCH /users/{id}/skill.
func (h *UserHandler) SetSkill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SkillLevel float64 `json:"skill_level"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := domain.ValidateSkillLevel(req.SkillLevel); err != nil {
		RespondError(w, err)
		return
	}
	if err := h.users.SetSkill(r.Context(), chi.URLParam(r, "id"), req.SkillLevel); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// SetDisplayName handles PATCH /users/{id}/display-name.
func (h *UserHandler) SetDisplayName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.DisplayName == "" {
		RespondError(w, domain.ErrValidation("display_name is required"))
		return
	}
	if err := h.users.SetDisplayName(r.Context(), chi.URLParam(r, "id"), req.DisplayName); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// SetBio handles PATCH /users/{id}/bio.
func (h *UserHandler) SetBio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bio string `json:"bio"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := h.users.SetBio(r.Context(), chi.URLParam(r, "id"), req.Bio); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// DeleteUser handles DELETE /users/{id}. Removes the profile along with its
// participant seats and waitlist entries.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
