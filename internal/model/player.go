package model

import "time"

// PlayerID uniquely identifies a player
type PlayerID string

// Player represents a registered player account
type Player struct {
	ID        PlayerID  `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential holds a player's password hash, one row per player.
// Immutable after signup; there is no password-change path.
type Credential struct {
	PlayerID PlayerID `json:"player_id"`
	Hash     string   `json:"hash"`
}

// Session is an opaque, unguessable login token with expiry
type Session struct {
	Token     string    `json:"token"`
	PlayerID  PlayerID  `json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
