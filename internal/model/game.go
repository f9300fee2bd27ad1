package model

import "time"

// GameID uniquely identifies a game
type GameID string

// Character names assigned to memberships
const (
	// OwnerCharacterName is the reserved character name for the game owner
	OwnerCharacterName = "Dungeon Master"
	// DefaultCharacterName is used when a joining player supplies no name
	DefaultCharacterName = "Adventurer"
)

// Game is a table hosted by its owner. Players join by supplying the game's
// name together with its shared secret. The secret is stored as a peppered
// bcrypt hash, never in plaintext.
type Game struct {
	ID         GameID    `json:"id"`
	OwnerID    PlayerID  `json:"owner_id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// MembershipID uniquely identifies a membership row
type MembershipID string

// Membership records that a player belongs to a game. At most one row exists
// per (player, game) pair.
type Membership struct {
	ID            MembershipID `json:"id"`
	PlayerID      PlayerID     `json:"player_id"`
	GameID        GameID       `json:"game_id"`
	CharacterName string       `json:"character_name"`
	JoinedAt      time.Time    `json:"joined_at"`
}

// GameListing is a game annotated with membership details for one player,
// as returned by the "games I belong to" query.
type GameListing struct {
	Game          Game      `json:"game"`
	OwnerEmail    string    `json:"owner_email"`
	CharacterName string    `json:"character_name"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Member is a co-member of a game with their account email attached
type Member struct {
	Membership Membership `json:"membership"`
	Email      string     `json:"email"`
	IsOwner    bool       `json:"is_owner"`
}
