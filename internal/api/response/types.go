package response

import (
	"time"

	"github.com/dicetray/dicetray/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        string(p.ID),
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	PlayerID     string    `json:"player_id"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *model.Session) AuthResponse {
	return AuthResponse{
		PlayerID:     string(s.PlayerID),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Game represents a game in API responses
type Game struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GameFromModel converts model.Game
func GameFromModel(g *model.Game) Game {
	return Game{
		ID:        string(g.ID),
		OwnerID:   string(g.OwnerID),
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

// GameListing is a joined game annotated with the caller's seat
type GameListing struct {
	Game          Game      `json:"game"`
	OwnerEmail    string    `json:"owner_email"`
	CharacterName string    `json:"character_name"`
	JoinedAt      time.Time `json:"joined_at"`
}

// GameListingFromModel converts model.GameListing
func GameListingFromModel(l *model.GameListing) GameListing {
	return GameListing{
		Game:          GameFromModel(&l.Game),
		OwnerEmail:    l.OwnerEmail,
		CharacterName: l.CharacterName,
		JoinedAt:      l.JoinedAt,
	}
}

// GamesResponse is the response for listing a player's games
type GamesResponse struct {
	Owned  []Game        `json:"owned"`
	Joined []GameListing `json:"joined"`
}

// Membership represents a game membership
type Membership struct {
	ID            string    `json:"id"`
	PlayerID      string    `json:"player_id"`
	GameID        string    `json:"game_id"`
	CharacterName string    `json:"character_name"`
	JoinedAt      time.Time `json:"joined_at"`
}

// MembershipFromModel converts model.Membership
func MembershipFromModel(m *model.Membership) Membership {
	return Membership{
		ID:            string(m.ID),
		PlayerID:      string(m.PlayerID),
		GameID:        string(m.GameID),
		CharacterName: m.CharacterName,
		JoinedAt:      m.JoinedAt,
	}
}

// Member is a co-member of a game
type Member struct {
	PlayerID      string `json:"player_id"`
	Email         string `json:"email"`
	CharacterName string `json:"character_name"`
	IsOwner       bool   `json:"is_owner"`
}

// MemberFromModel converts model.Member
func MemberFromModel(m *model.Member) Member {
	return Member{
		PlayerID:      string(m.Membership.PlayerID),
		Email:         m.Email,
		CharacterName: m.Membership.CharacterName,
		IsOwner:       m.IsOwner,
	}
}

// MembersResponse is the response for listing a game's members
type MembersResponse struct {
	Members []Member `json:"members"`
}

// Die is a single rolled die
type Die struct {
	Die   string `json:"die"`
	Value int    `json:"value"`
}

// DieRoll represents one roll in API responses
type DieRoll struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	GameID    string    `json:"game_id"`
	RollTotal int       `json:"roll_total"`
	Notation  string    `json:"notation,omitempty"`
	PromptID  string    `json:"prompt_id,omitempty"`
	Dice      []Die     `json:"dice"`
	CreatedAt time.Time `json:"created_at"`
}

// DieRollFromModel converts model.DieRoll
func DieRollFromModel(r *model.DieRoll) DieRoll {
	dice := make([]Die, len(r.Dice))
	for i, d := range r.Dice {
		dice[i] = Die{Die: string(d.Die), Value: d.Value}
	}
	return DieRoll{
		ID:        string(r.ID),
		PlayerID:  string(r.PlayerID),
		GameID:    string(r.GameID),
		RollTotal: r.RollTotal,
		Notation:  r.Context,
		PromptID:  string(r.PromptID),
		Dice:      dice,
		CreatedAt: r.CreatedAt,
	}
}

// DieRollsResponse is the response for listing a game's rolls
type DieRollsResponse struct {
	DieRolls []DieRoll `json:"die_rolls"`
}

// DieRollsFromModels converts a roll list
func DieRollsFromModels(rolls []*model.DieRoll) DieRollsResponse {
	out := make([]DieRoll, len(rolls))
	for i, r := range rolls {
		out[i] = DieRollFromModel(r)
	}
	return DieRollsResponse{DieRolls: out}
}

// Prompt is a roll prompt annotated with its answering rolls
type Prompt struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	PlayerIDs []string  `json:"player_ids"`
	Reason    string    `json:"reason"`
	Rolls     []DieRoll `json:"rolls"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptFromModel converts model.PromptWithRolls
func PromptFromModel(p *model.PromptWithRolls) Prompt {
	targets := make([]string, len(p.PlayerIDs))
	for i, id := range p.PlayerIDs {
		targets[i] = string(id)
	}
	rolls := make([]DieRoll, len(p.Rolls))
	for i := range p.Rolls {
		rolls[i] = DieRollFromModel(&p.Rolls[i])
	}
	return Prompt{
		ID:        string(p.ID),
		GameID:    string(p.GameID),
		PlayerIDs: targets,
		Reason:    p.Prompt,
		Rolls:     rolls,
		CreatedAt: p.CreatedAt,
	}
}

// PromptsResponse is the response for listing a game's prompts
type PromptsResponse struct {
	Prompts []Prompt `json:"prompts"`
}

// Event is one timeline entry: a roll or a prompt, tagged by Kind
type Event struct {
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Roll      *DieRoll  `json:"roll,omitempty"`
	Prompt    *Prompt   `json:"prompt,omitempty"`
}

// EventFromModel converts model.Event
func EventFromModel(e model.Event) Event {
	out := Event{Kind: string(e.Kind), CreatedAt: e.CreatedAt}
	if e.Roll != nil {
		roll := DieRollFromModel(e.Roll)
		out.Roll = &roll
	}
	if e.Prompt != nil {
		prompt := PromptFromModel(e.Prompt)
		out.Prompt = &prompt
	}
	return out
}

// EventsResponse is the response for a game timeline
type EventsResponse struct {
	Events []Event `json:"events"`
}
