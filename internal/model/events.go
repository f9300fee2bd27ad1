package model

import (
	"sort"
	"time"
)

// EventKind discriminates the members of the game timeline
type EventKind string

const (
	EventKindRoll   EventKind = "roll"
	EventKindPrompt EventKind = "prompt"
)

// Event is one entry in a game's timeline: either a die roll or a roll
// prompt, tagged explicitly by Kind. Exactly one of Roll/Prompt is set.
type Event struct {
	Kind      EventKind        `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
	Roll      *DieRoll         `json:"roll,omitempty"`
	Prompt    *PromptWithRolls `json:"prompt,omitempty"`
}

// RollEvent wraps a die roll as a timeline event
func RollEvent(roll DieRoll) Event {
	return Event{Kind: EventKindRoll, CreatedAt: roll.CreatedAt, Roll: &roll}
}

// PromptEvent wraps a prompt as a timeline event
func PromptEvent(prompt PromptWithRolls) Event {
	return Event{Kind: EventKindPrompt, CreatedAt: prompt.CreatedAt, Prompt: &prompt}
}

// SortEvents orders events by creation time, oldest first. The sort is
// stable so same-timestamp events keep their merge order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}
