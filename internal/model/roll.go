package model

import "time"

// DieType names one of the supported dice
type DieType string

// The fixed set of supported dice
const (
	D4   DieType = "d4"
	D6   DieType = "d6"
	D8   DieType = "d8"
	D10  DieType = "d10"
	D12  DieType = "d12"
	D20  DieType = "d20"
	D100 DieType = "d100"
)

// Die is a single rolled die within a roll
type Die struct {
	Die   DieType `json:"die"`
	Value int     `json:"value"`
}

// DieRollID uniquely identifies a die roll
type DieRollID string

// DieRoll is an immutable record of one submitted roll. Dice are kept in the
// order they were requested; RollTotal is the sum of their values.
type DieRoll struct {
	ID        DieRollID `json:"id"`
	PlayerID  PlayerID  `json:"player_id"`
	GameID    GameID    `json:"game_id"`
	RollTotal int       `json:"roll_total"`
	Context   string    `json:"context,omitempty"`
	PromptID  PromptID  `json:"prompt_id,omitempty"`
	Dice      []Die     `json:"dice"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptID uniquely identifies a roll prompt
type PromptID string

// RollPrompt is an owner-issued standing request for specific players to roll
type RollPrompt struct {
	ID        PromptID   `json:"id"`
	GameID    GameID     `json:"game_id"`
	PlayerIDs []PlayerID `json:"player_ids"`
	Prompt    string     `json:"prompt"`
	CreatedAt time.Time  `json:"created_at"`
}

// PromptWithRolls is a prompt annotated with the rolls answering it
type PromptWithRolls struct {
	RollPrompt
	Rolls []DieRoll `json:"rolls"`
}
