package storage

import (
	"context"

	"github.com/dicetray/dicetray/internal/model"
)

// Storage defines the interface for data persistence.
//
// CreatePlayerWithCredential and CreateGameWithOwner are atomic: either both
// rows land or neither does. Everything else is a single-row operation and
// relies on the backend's own per-operation atomicity.
type Storage interface {
	// Player operations.
	// CreatePlayerWithCredential returns model.ErrEmailTaken if the email is in use.
	CreatePlayerWithCredential(ctx context.Context, player *model.Player, cred *model.Credential) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByEmail(ctx context.Context, email string) (*model.Player, error)
	GetCredential(ctx context.Context, playerID model.PlayerID) (*model.Credential, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsForPlayer(ctx context.Context, playerID model.PlayerID) error

	// Game operations
	CreateGameWithOwner(ctx context.Context, game *model.Game, owner *model.Membership) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGamesByName(ctx context.Context, name string) ([]*model.Game, error)
	ListGamesByOwner(ctx context.Context, ownerID model.PlayerID) ([]*model.Game, error)

	// Membership operations.
	// SaveMembership returns model.ErrAlreadyInGame if the (player, game)
	// pair already has a row.
	SaveMembership(ctx context.Context, m *model.Membership) error
	GetMembership(ctx context.Context, playerID model.PlayerID, gameID model.GameID) (*model.Membership, error)
	ListMembershipsForGame(ctx context.Context, gameID model.GameID) ([]*model.Membership, error)
	ListMembershipsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Membership, error)

	// Roll and prompt operations. List queries return rows newest first;
	// a limit <= 0 means no limit.
	SaveDieRoll(ctx context.Context, roll *model.DieRoll) error
	ListDieRollsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.DieRoll, error)
	SavePrompt(ctx context.Context, prompt *model.RollPrompt) error
	GetPrompt(ctx context.Context, id model.PromptID) (*model.RollPrompt, error)
	ListPromptsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.RollPrompt, error)
	ListDieRollsForPrompts(ctx context.Context, promptIDs []model.PromptID) ([]*model.DieRoll, error)
}
