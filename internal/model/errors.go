package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrCredentialNotFound = errors.New("credential not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Game errors
	ErrGameNotFound  = errors.New("game not found or invalid secret")
	ErrAlreadyInGame = errors.New("player has already joined this game")
	ErrNotInGame     = errors.New("player is not part of the game")
	ErrNotOwner      = errors.New("only the game owner can prompt players for rolls")

	// Roll errors
	ErrInvalidDieType  = errors.New("invalid die type")
	ErrNoDice          = errors.New("at least one die must be rolled")
	ErrTooManyDice     = errors.New("too many dice in one roll")
	ErrPromptNotFound  = errors.New("prompt not found")
	ErrNoTargets       = errors.New("at least one player must be prompted")
	ErrTargetNotInGame = errors.New("prompted player is not in the game")
)
