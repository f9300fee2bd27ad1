package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/services/auth"
	"github.com/dicetray/dicetray/internal/services/game"
	"github.com/dicetray/dicetray/internal/services/ledger"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidInvitation  = "INVALID_INVITATION"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeAlreadyInGame      = "ALREADY_IN_GAME"
	CodeNotInGame          = "NOT_IN_GAME"
	CodeNotOwner           = "NOT_OWNER"
	CodePromptNotFound     = "PROMPT_NOT_FOUND"
	CodeInvalidDice        = "INVALID_DICE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Model errors
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		// Same message for unknown name and wrong secret
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found or invalid secret"}}
	case errors.Is(err, model.ErrNotInGame):
		// Looks identical to a missing game so non-members learn nothing
		return &httpError{http.StatusNotFound, APIError{CodeNotInGame, "Game not found or invalid secret"}}
	case errors.Is(err, model.ErrAlreadyInGame):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInGame, "Already in this game"}}
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailTaken, "Email is already registered"}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "Only the game owner can perform this action"}}
	case errors.Is(err, model.ErrPromptNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePromptNotFound, "Prompt not found"}}
	case errors.Is(err, model.ErrInvalidDieType):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDice, "Unknown die type"}}
	case errors.Is(err, model.ErrNoDice):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDice, "At least one die is required"}}
	case errors.Is(err, model.ErrTooManyDice):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDice, "Too many dice in one roll"}}
	case errors.Is(err, model.ErrNoTargets):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "At least one target player is required"}}
	case errors.Is(err, model.ErrTargetNotInGame):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "A prompted player is not in this game"}}

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrInvalidInvitation):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidInvitation, "Invalid invitation code"}}

	// Service validation errors
	case errors.Is(err, game.ErrNameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "A game name is required"}}
	case errors.Is(err, game.ErrSecretRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "A join secret is required"}}
	case errors.Is(err, ledger.ErrReasonRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "A prompt reason is required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
