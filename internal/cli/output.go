package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case GamesResult:
		o.printGames(v)
	case Membership:
		o.printMembership(v)
	case MembersResult:
		o.printMembers(v)
	case DieRollsResult:
		o.printRolls(v)
	case Prompt:
		o.printPrompt(v)
	case PromptsResult:
		o.printPrompts(v)
	case EventsResult:
		o.printEvents(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResult is the response from signup and login
type AuthResult struct {
	PlayerID     string    `json:"player_id"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Game response type
type Game struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GameListing response type
type GameListing struct {
	Game          Game      `json:"game"`
	OwnerEmail    string    `json:"owner_email"`
	CharacterName string    `json:"character_name"`
	JoinedAt      time.Time `json:"joined_at"`
}

// GamesResult response type
type GamesResult struct {
	Owned  []Game        `json:"owned"`
	Joined []GameListing `json:"joined"`
}

// Membership response type
type Membership struct {
	ID            string    `json:"id"`
	PlayerID      string    `json:"player_id"`
	GameID        string    `json:"game_id"`
	CharacterName string    `json:"character_name"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Member response type
type Member struct {
	PlayerID      string `json:"player_id"`
	Email         string `json:"email"`
	CharacterName string `json:"character_name"`
	IsOwner       bool   `json:"is_owner"`
}

// MembersResult response type
type MembersResult struct {
	Members []Member `json:"members"`
}

// Die response type
type Die struct {
	Die   string `json:"die"`
	Value int    `json:"value"`
}

// DieRoll response type
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

// DieRollsResult response type
type DieRollsResult struct {
	DieRolls []DieRoll `json:"die_rolls"`
}

// Prompt response type
type Prompt struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	PlayerIDs []string  `json:"player_ids"`
	Reason    string    `json:"reason"`
	Rolls     []DieRoll `json:"rolls"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptsResult response type
type PromptsResult struct {
	Prompts []Prompt `json:"prompts"`
}

// Event response type
type Event struct {
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Roll      *DieRoll  `json:"roll,omitempty"`
	Prompt    *Prompt   `json:"prompt,omitempty"`
}

// EventsResult response type
type EventsResult struct {
	Events []Event `json:"events"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Email, p.ID)
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Player: %s\n", a.PlayerID)
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s (%s)\n", g.Name, g.ID)
	fmt.Printf("Created: %s\n", g.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printGames(g GamesResult) {
	fmt.Printf("Owned (%d):\n", len(g.Owned))
	for _, game := range g.Owned {
		fmt.Printf("  - %s (%s)\n", game.Name, game.ID)
	}
	fmt.Printf("Joined (%d):\n", len(g.Joined))
	for _, l := range g.Joined {
		fmt.Printf("  - %s as %s (owner: %s)\n", l.Game.Name, l.CharacterName, l.OwnerEmail)
	}
}

func (o *Output) printMembership(m Membership) {
	fmt.Printf("Joined game %s as %s\n", m.GameID, m.CharacterName)
}

func (o *Output) printMembers(m MembersResult) {
	fmt.Printf("Members (%d):\n", len(m.Members))
	for _, member := range m.Members {
		ownerStr := ""
		if member.IsOwner {
			ownerStr = " [owner]"
		}
		fmt.Printf("  - %s (%s)%s\n", member.CharacterName, member.Email, ownerStr)
	}
}

func (o *Output) printRolls(r DieRollsResult) {
	for _, roll := range r.DieRolls {
		o.printRollLine(roll)
	}
}

// printRollLine prints one roll as a single line, e.g.
// [12:04:05] player-id rolled 26 (d6=6 d20=20) "2 attacks"
func (o *Output) printRollLine(roll DieRoll) {
	dice := make([]string, len(roll.Dice))
	for i, d := range roll.Dice {
		dice[i] = fmt.Sprintf("%s=%d", d.Die, d.Value)
	}
	line := fmt.Sprintf("[%s] %s rolled %d (%s)",
		roll.CreatedAt.Format("15:04:05"), roll.PlayerID, roll.RollTotal, strings.Join(dice, " "))
	if roll.Notation != "" {
		line += fmt.Sprintf(" %q", roll.Notation)
	}
	fmt.Println(line)
}

func (o *Output) printPrompt(p Prompt) {
	fmt.Printf("Prompt: %s (%s)\n", p.Reason, p.ID)
	fmt.Printf("Targets: %s\n", strings.Join(p.PlayerIDs, ", "))
	if len(p.Rolls) > 0 {
		fmt.Println("Answers:")
		for _, roll := range p.Rolls {
			fmt.Print("  ")
			o.printRollLine(roll)
		}
	}
}

func (o *Output) printPrompts(p PromptsResult) {
	for i, prompt := range p.Prompts {
		if i > 0 {
			fmt.Println()
		}
		o.printPrompt(prompt)
	}
}

func (o *Output) printEvents(e EventsResult) {
	for _, event := range e.Events {
		switch {
		case event.Roll != nil:
			o.printRollLine(*event.Roll)
		case event.Prompt != nil:
			fmt.Printf("[%s] prompt: %s (targets: %s)\n",
				event.CreatedAt.Format("15:04:05"), event.Prompt.Reason, strings.Join(event.Prompt.PlayerIDs, ", "))
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
