package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayerWithCredential(ctx context.Context, player *model.Player, cred *model.Credential) error {
	playerData, err := json.Marshal(player)
	if err != nil {
		return err
	}
	credData, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	// The email index doubles as the uniqueness guard: SETNX claims the
	// email, and only the claimer writes the player and credential rows.
	claimed, err := s.client.SetNX(ctx, emailIndexKey(player.Email), string(player.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), playerData, 0)
	pipe.Set(ctx, credentialKey(cred.PlayerID), credData, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the claim so a retry can succeed
		s.client.Del(ctx, emailIndexKey(player.Email))
		return err
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) GetCredential(ctx context.Context, playerID model.PlayerID) (*model.Credential, error) {
	var cred model.Credential
	if err := s.getJSON(ctx, credentialKey(playerID), &cred, model.ErrCredentialNotFound); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.Token), data, 0)
	pipe.SAdd(ctx, playerSessionsIndexKey(session.PlayerID), session.Token)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	if err := s.getJSON(ctx, sessionKey(token), &session, model.ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	session, err := s.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, playerSessionsIndexKey(session.PlayerID), token)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteSessionsForPlayer(ctx context.Context, playerID model.PlayerID) error {
	tokens, err := s.client.SMembers(ctx, playerSessionsIndexKey(playerID)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKey(token))
	}
	pipe.Del(ctx, playerSessionsIndexKey(playerID))
	_, err = pipe.Exec(ctx)
	return err
}

// Game operations

func (s *Storage) CreateGameWithOwner(ctx context.Context, game *model.Game, owner *model.Membership) error {
	gameData, err := json.Marshal(game)
	if err != nil {
		return err
	}
	memberData, err := json.Marshal(owner)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), gameData, 0)
	pipe.SAdd(ctx, gameNameIndexKey(game.Name), string(game.ID))
	pipe.SAdd(ctx, ownerGamesIndexKey(game.OwnerID), string(game.ID))
	pipe.Set(ctx, membershipKey(owner.PlayerID, owner.GameID), memberData, 0)
	pipe.SAdd(ctx, gameMembersIndexKey(owner.GameID), string(owner.PlayerID))
	pipe.SAdd(ctx, playerGamesIndexKey(owner.PlayerID), string(owner.GameID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var game model.Game
	if err := s.getJSON(ctx, gameKey(id), &game, model.ErrGameNotFound); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GetGamesByName(ctx context.Context, name string) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gameNameIndexKey(name)).Result()
	if err != nil {
		return nil, err
	}
	return s.getGames(ctx, ids)
}

func (s *Storage) ListGamesByOwner(ctx context.Context, ownerID model.PlayerID) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, ownerGamesIndexKey(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	return s.getGames(ctx, ids)
}

func (s *Storage) getGames(ctx context.Context, ids []string) ([]*model.Game, error) {
	games := make([]*model.Game, 0, len(ids))
	for _, id := range ids {
		game, err := s.GetGame(ctx, model.GameID(id))
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				continue
			}
			return nil, err
		}
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

// Membership operations

func (s *Storage) SaveMembership(ctx context.Context, m *model.Membership) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	// SETNX enforces the one-row-per-(player, game) invariant
	created, err := s.client.SetNX(ctx, membershipKey(m.PlayerID, m.GameID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrAlreadyInGame
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, gameMembersIndexKey(m.GameID), string(m.PlayerID))
	pipe.SAdd(ctx, playerGamesIndexKey(m.PlayerID), string(m.GameID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMembership(ctx context.Context, playerID model.PlayerID, gameID model.GameID) (*model.Membership, error) {
	var m model.Membership
	if err := s.getJSON(ctx, membershipKey(playerID, gameID), &m, model.ErrNotInGame); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) ListMembershipsForGame(ctx context.Context, gameID model.GameID) ([]*model.Membership, error) {
	playerIDs, err := s.client.SMembers(ctx, gameMembersIndexKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	members := make([]*model.Membership, 0, len(playerIDs))
	for _, pid := range playerIDs {
		m, err := s.GetMembership(ctx, model.PlayerID(pid), gameID)
		if err != nil {
			if errors.Is(err, model.ErrNotInGame) {
				continue
			}
			return nil, err
		}
		members = append(members, m)
	}
	sortMembershipsByJoin(members)
	return members, nil
}

func (s *Storage) ListMembershipsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Membership, error) {
	gameIDs, err := s.client.SMembers(ctx, playerGamesIndexKey(playerID)).Result()
	if err != nil {
		return nil, err
	}

	members := make([]*model.Membership, 0, len(gameIDs))
	for _, gid := range gameIDs {
		m, err := s.GetMembership(ctx, playerID, model.GameID(gid))
		if err != nil {
			if errors.Is(err, model.ErrNotInGame) {
				continue
			}
			return nil, err
		}
		members = append(members, m)
	}
	sortMembershipsByJoin(members)
	return members, nil
}

// Roll and prompt operations

func (s *Storage) SaveDieRoll(ctx context.Context, roll *model.DieRoll) error {
	data, err := json.Marshal(roll)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, rollKey(roll.ID), data, 0)
	pipe.ZAdd(ctx, gameRollsKey(roll.GameID), redis.Z{
		Score:  float64(roll.CreatedAt.UnixNano()),
		Member: string(roll.ID),
	})
	if roll.PromptID != "" {
		pipe.SAdd(ctx, promptRollsIndexKey(roll.PromptID), string(roll.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListDieRollsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.DieRoll, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, gameRollsKey(gameID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	return s.getRolls(ctx, ids, false)
}

func (s *Storage) SavePrompt(ctx context.Context, prompt *model.RollPrompt) error {
	data, err := json.Marshal(prompt)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, promptKey(prompt.ID), data, 0)
	pipe.ZAdd(ctx, gamePromptsKey(prompt.GameID), redis.Z{
		Score:  float64(prompt.CreatedAt.UnixNano()),
		Member: string(prompt.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPrompt(ctx context.Context, id model.PromptID) (*model.RollPrompt, error) {
	var prompt model.RollPrompt
	if err := s.getJSON(ctx, promptKey(id), &prompt, model.ErrPromptNotFound); err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (s *Storage) ListPromptsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.RollPrompt, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, gamePromptsKey(gameID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	prompts := make([]*model.RollPrompt, 0, len(ids))
	for _, id := range ids {
		prompt, err := s.GetPrompt(ctx, model.PromptID(id))
		if err != nil {
			if errors.Is(err, model.ErrPromptNotFound) {
				continue
			}
			return nil, err
		}
		prompts = append(prompts, prompt)
	}
	return prompts, nil
}

func (s *Storage) ListDieRollsForPrompts(ctx context.Context, promptIDs []model.PromptID) ([]*model.DieRoll, error) {
	var ids []string
	for _, pid := range promptIDs {
		rollIDs, err := s.client.SMembers(ctx, promptRollsIndexKey(pid)).Result()
		if err != nil {
			return nil, err
		}
		ids = append(ids, rollIDs...)
	}
	return s.getRolls(ctx, ids, true)
}

// getRolls fetches roll rows by id. When resort is true the result is
// re-ordered newest first; otherwise the input order (already ranked by the
// ZSET) is kept.
func (s *Storage) getRolls(ctx context.Context, ids []string, resort bool) ([]*model.DieRoll, error) {
	rolls := make([]*model.DieRoll, 0, len(ids))
	for _, id := range ids {
		var roll model.DieRoll
		err := s.getJSON(ctx, rollKey(model.DieRollID(id)), &roll, nil)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		rolls = append(rolls, &roll)
	}
	if resort {
		sort.SliceStable(rolls, func(i, j int) bool {
			return rolls[i].CreatedAt.After(rolls[j].CreatedAt)
		})
	}
	return rolls, nil
}

// getJSON fetches and unmarshals a JSON row, translating redis.Nil into
// notFound when provided.
func (s *Storage) getJSON(ctx context.Context, key string, dest any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) && notFound != nil {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func sortMembershipsByJoin(members []*model.Membership) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
}
