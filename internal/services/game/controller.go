package game

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dicetray/dicetray/internal/dependencies/clock"
	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/services/auth"
	"github.com/dicetray/dicetray/internal/storage"
)

// Validation errors
var (
	ErrNameRequired   = errors.New("a game name is required")
	ErrSecretRequired = errors.New("a join secret is required")
)

// Controller manages games and their memberships
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	hasher  *auth.Hasher
}

// New creates a new game Controller
func New(storage storage.Storage, clock clock.Clock, hasher *auth.Hasher) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		hasher:  hasher,
	}
}

// CreateGame creates a game owned by the given player. The owner's membership
// is written in the same operation as the game, so a game is never visible
// without its owner seated at the table. The join secret is stored only as a
// peppered hash.
func (c *Controller) CreateGame(ctx context.Context, ownerID model.PlayerID, name, secret string) (*model.Game, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if secret == "" {
		return nil, ErrSecretRequired
	}

	secretHash, err := c.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:         model.GameID(uuid.NewString()),
		OwnerID:    ownerID,
		Name:       name,
		SecretHash: secretHash,
		CreatedAt:  now,
	}
	owner := &model.Membership{
		ID:            model.MembershipID(uuid.NewString()),
		PlayerID:      ownerID,
		GameID:        game.ID,
		CharacterName: model.OwnerCharacterName,
		JoinedAt:      now,
	}

	if err := c.storage.CreateGameWithOwner(ctx, game, owner); err != nil {
		return nil, err
	}

	return game, nil
}

// JoinGame seats a player at the game matching the given name and secret.
// Names are not unique, so every game with the name is a candidate and the
// secret is verified against each. An unknown name and a wrong secret both
// come back as model.ErrGameNotFound so the response doesn't reveal whether
// a game by that name exists.
func (c *Controller) JoinGame(ctx context.Context, playerID model.PlayerID, name, secret, characterName string) (*model.Membership, error) {
	candidates, err := c.storage.GetGamesByName(ctx, name)
	if err != nil {
		return nil, err
	}

	var game *model.Game
	for _, candidate := range candidates {
		if c.hasher.Verify(secret, candidate.SecretHash) {
			game = candidate
			break
		}
	}
	if game == nil {
		return nil, model.ErrGameNotFound
	}

	if characterName == "" {
		characterName = model.DefaultCharacterName
	}

	m := &model.Membership{
		ID:            model.MembershipID(uuid.NewString()),
		PlayerID:      playerID,
		GameID:        game.ID,
		CharacterName: characterName,
		JoinedAt:      c.clock.Now(),
	}
	if err := c.storage.SaveMembership(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// GetGame returns a game, but only to one of its members
func (c *Controller) GetGame(ctx context.Context, playerID model.PlayerID, gameID model.GameID) (*model.Game, error) {
	if _, err := c.GetMembership(ctx, playerID, gameID); err != nil {
		return nil, err
	}
	return c.storage.GetGame(ctx, gameID)
}

// GetMembership returns the player's membership in a game, or
// model.ErrNotInGame if they have no seat there
func (c *Controller) GetMembership(ctx context.Context, playerID model.PlayerID, gameID model.GameID) (*model.Membership, error) {
	return c.storage.GetMembership(ctx, playerID, gameID)
}

// ListOwnedGames returns every game the player owns, newest first
func (c *Controller) ListOwnedGames(ctx context.Context, ownerID model.PlayerID) ([]*model.Game, error) {
	return c.storage.ListGamesByOwner(ctx, ownerID)
}

// ListJoinedGames returns every game the player belongs to, annotated with
// the player's character and the owner's email, newest joined first
func (c *Controller) ListJoinedGames(ctx context.Context, playerID model.PlayerID) ([]*model.GameListing, error) {
	memberships, err := c.storage.ListMembershipsForPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	listings := make([]*model.GameListing, 0, len(memberships))
	for _, m := range memberships {
		game, err := c.storage.GetGame(ctx, m.GameID)
		if err != nil {
			return nil, err
		}
		owner, err := c.storage.GetPlayer(ctx, game.OwnerID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, &model.GameListing{
			Game:          *game,
			OwnerEmail:    owner.Email,
			CharacterName: m.CharacterName,
			JoinedAt:      m.JoinedAt,
		})
	}
	return listings, nil
}

// ListMembers returns everyone seated at a game with their account emails.
// Only members may see the table.
func (c *Controller) ListMembers(ctx context.Context, playerID model.PlayerID, gameID model.GameID) ([]*model.Member, error) {
	if _, err := c.GetMembership(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	memberships, err := c.storage.ListMembershipsForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	members := make([]*model.Member, 0, len(memberships))
	for _, m := range memberships {
		player, err := c.storage.GetPlayer(ctx, m.PlayerID)
		if err != nil {
			return nil, err
		}
		members = append(members, &model.Member{
			Membership: *m,
			Email:      player.Email,
			IsOwner:    m.PlayerID == game.OwnerID,
		})
	}
	return members, nil
}
