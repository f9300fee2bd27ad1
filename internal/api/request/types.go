package request

// SignupRequest is the request body for registering a player
type SignupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	InvitationCode string `json:"invitation_code"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// JoinGameRequest is the request body for joining a game by name and secret
type JoinGameRequest struct {
	Name          string `json:"name"`
	Secret        string `json:"secret"`
	CharacterName string `json:"character_name,omitempty"`
}

// CreateRollRequest is the request body for rolling dice. Dice lists die
// types explicitly; Notation is free-form display text, e.g. "2d6 d20".
type CreateRollRequest struct {
	Dice     []string `json:"dice"`
	Notation string   `json:"notation,omitempty"`
	PromptID string   `json:"prompt_id,omitempty"`
}

// CreatePromptRequest is the request body for prompting players to roll
type CreatePromptRequest struct {
	PlayerIDs []string `json:"player_ids"`
	Reason    string   `json:"reason"`
}
