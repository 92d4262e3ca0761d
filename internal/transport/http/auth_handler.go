package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

// AuthHandler serves the JSON sign-up and sign-in endpoints that mint the
// bearer tokens the websocket endpoint verifies.
type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string      `json:"token"`
	Profile profileView `json:"profile"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.auth.SignUp)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.auth.SignIn)
}

func (h *AuthHandler) handle(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, email, password string) (domain.UserProfile, string, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, token, err := fn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, authStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(authResponse{
		Token: token,
		Profile: profileView{
			UID:   profile.UID,
			Email: profile.Email,
			Role:  string(profile.Role),
		},
	})
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserBanned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorPayload{Message: message})
}
