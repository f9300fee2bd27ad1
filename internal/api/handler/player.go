package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dicetray/dicetray/internal/api/middleware"
	"github.com/dicetray/dicetray/internal/api/request"
	"github.com/dicetray/dicetray/internal/api/response"
	"github.com/dicetray/dicetray/internal/services/auth"
)

// CookieConfig controls the session cookie written on signup and login
type CookieConfig struct {
	// Secure marks the cookie HTTPS-only; set in production
	Secure bool
}

// PlayerHandler handles player and session endpoints
type PlayerHandler struct {
	authService *auth.Service
	cookies     CookieConfig
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, cookies CookieConfig) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// Signup handles POST /api/v1/players/signup
func (h *PlayerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.InvitationCode)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.setSessionCookie(w, session.Token, h.authService.SessionDuration())
	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.setSessionCookie(w, session.Token, h.authService.SessionDuration())
	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session != nil {
		if err := h.authService.Logout(r.Context(), session.Token); err != nil {
			WriteError(w, err)
			return
		}
	}

	h.clearSessionCookie(w)
	response.NoContent(w)
}

// LogoutAll handles POST /api/v1/players/logout-all
func (h *PlayerHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	if err := h.authService.LogoutEverywhere(r.Context(), player.ID); err != nil {
		WriteError(w, err)
		return
	}

	h.clearSessionCookie(w)
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

func (h *PlayerHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *PlayerHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
