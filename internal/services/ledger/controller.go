package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dicetray/dicetray/internal/dependencies/clock"
	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/services/dice"
	"github.com/dicetray/dicetray/internal/storage"
)

// Validation errors
var (
	ErrReasonRequired = errors.New("a prompt reason is required")
)

// History page sizes. Rolls and prompts are unbounded in storage; readers get
// a recent window.
const (
	rollsLimit   = 20
	promptsLimit = 5
)

// Controller is the roll and prompt ledger for games. Every read and write is
// gated on the caller's membership in the game, so callers don't need their
// own authz checks.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	dice    *dice.Engine
}

// New creates a new ledger Controller
func New(storage storage.Storage, clock clock.Clock, dice *dice.Engine) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		dice:    dice,
	}
}

// CreateDieRoll rolls the requested dice for a player and records the result.
// An optional promptID links the roll to a standing prompt, which must belong
// to the same game. Returns the refreshed newest-first roll window so the
// caller sees their roll in context.
func (c *Controller) CreateDieRoll(
	ctx context.Context,
	playerID model.PlayerID,
	gameID model.GameID,
	diceTypes []model.DieType,
	notation string,
	promptID model.PromptID,
) ([]*model.DieRoll, error) {
	if _, err := c.storage.GetMembership(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	if promptID != "" {
		prompt, err := c.storage.GetPrompt(ctx, promptID)
		if err != nil {
			return nil, err
		}
		if prompt.GameID != gameID {
			return nil, model.ErrPromptNotFound
		}
	}

	result, err := c.dice.Roll(diceTypes)
	if err != nil {
		return nil, err
	}

	roll := &model.DieRoll{
		ID:        model.DieRollID(uuid.NewString()),
		PlayerID:  playerID,
		GameID:    gameID,
		RollTotal: result.Total,
		Context:   notation,
		PromptID:  promptID,
		Dice:      result.Dice,
		CreatedAt: c.clock.Now(),
	}
	if err := c.storage.SaveDieRoll(ctx, roll); err != nil {
		return nil, err
	}

	return c.storage.ListDieRollsForGame(ctx, gameID, rollsLimit)
}

// CreatePrompt records an owner's request for specific players to roll.
// Only the game owner may prompt, and every target must be a member.
func (c *Controller) CreatePrompt(
	ctx context.Context,
	callerID model.PlayerID,
	gameID model.GameID,
	targets []model.PlayerID,
	reason string,
) (*model.RollPrompt, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.OwnerID != callerID {
		return nil, model.ErrNotOwner
	}

	if reason == "" {
		return nil, ErrReasonRequired
	}
	if len(targets) == 0 {
		return nil, model.ErrNoTargets
	}
	for _, target := range targets {
		if _, err := c.storage.GetMembership(ctx, target, gameID); err != nil {
			// The caller has already proven ownership, so a membership
			// miss here is a bad target, not a hidden game
			if errors.Is(err, model.ErrNotInGame) {
				return nil, fmt.Errorf("%w: %s", model.ErrTargetNotInGame, target)
			}
			return nil, err
		}
	}

	prompt := &model.RollPrompt{
		ID:        model.PromptID(uuid.NewString()),
		GameID:    gameID,
		PlayerIDs: targets,
		Prompt:    reason,
		CreatedAt: c.clock.Now(),
	}
	if err := c.storage.SavePrompt(ctx, prompt); err != nil {
		return nil, err
	}

	return prompt, nil
}

// RollsForGame returns the newest rolls in a game, most recent first
func (c *Controller) RollsForGame(ctx context.Context, playerID model.PlayerID, gameID model.GameID) ([]*model.DieRoll, error) {
	if _, err := c.storage.GetMembership(ctx, playerID, gameID); err != nil {
		return nil, err
	}
	return c.storage.ListDieRollsForGame(ctx, gameID, rollsLimit)
}

// PromptsWithRolls returns the newest prompts in a game, most recent first,
// each annotated with the rolls made in answer to it
func (c *Controller) PromptsWithRolls(ctx context.Context, playerID model.PlayerID, gameID model.GameID) ([]*model.PromptWithRolls, error) {
	if _, err := c.storage.GetMembership(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	prompts, err := c.storage.ListPromptsForGame(ctx, gameID, promptsLimit)
	if err != nil {
		return nil, err
	}
	return c.annotatePrompts(ctx, prompts)
}

// Timeline returns the recent roll and prompt activity of a game as one
// merged event stream, oldest first. The window is the same one RollsForGame
// and PromptsWithRolls expose.
func (c *Controller) Timeline(ctx context.Context, playerID model.PlayerID, gameID model.GameID) ([]model.Event, error) {
	if _, err := c.storage.GetMembership(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	rolls, err := c.storage.ListDieRollsForGame(ctx, gameID, rollsLimit)
	if err != nil {
		return nil, err
	}
	prompts, err := c.storage.ListPromptsForGame(ctx, gameID, promptsLimit)
	if err != nil {
		return nil, err
	}
	annotated, err := c.annotatePrompts(ctx, prompts)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rolls)+len(annotated))
	for _, roll := range rolls {
		events = append(events, model.RollEvent(*roll))
	}
	for _, prompt := range annotated {
		events = append(events, model.PromptEvent(*prompt))
	}
	model.SortEvents(events)
	return events, nil
}

// annotatePrompts attaches answering rolls to each prompt. One bulk fetch,
// then rolls are bucketed by prompt id.
func (c *Controller) annotatePrompts(ctx context.Context, prompts []*model.RollPrompt) ([]*model.PromptWithRolls, error) {
	ids := make([]model.PromptID, 0, len(prompts))
	for _, p := range prompts {
		ids = append(ids, p.ID)
	}

	rolls, err := c.storage.ListDieRollsForPrompts(ctx, ids)
	if err != nil {
		return nil, err
	}
	byPrompt := make(map[model.PromptID][]model.DieRoll)
	for _, roll := range rolls {
		byPrompt[roll.PromptID] = append(byPrompt[roll.PromptID], *roll)
	}

	annotated := make([]*model.PromptWithRolls, 0, len(prompts))
	for _, p := range prompts {
		annotated = append(annotated, &model.PromptWithRolls{
			RollPrompt: *p,
			Rolls:      byPrompt[p.ID],
		})
	}
	return annotated, nil
}
