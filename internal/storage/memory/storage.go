package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players     map[model.PlayerID]*model.Player
	emailIndex  map[string]model.PlayerID
	credentials map[model.PlayerID]*model.Credential
	sessions    map[string]*model.Session
	games       map[model.GameID]*model.Game
	memberships map[membershipKey]*model.Membership
	rolls       map[model.GameID][]*model.DieRoll
	prompts     map[model.GameID][]*model.RollPrompt
}

type membershipKey struct {
	playerID model.PlayerID
	gameID   model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.Player),
		emailIndex:  make(map[string]model.PlayerID),
		credentials: make(map[model.PlayerID]*model.Credential),
		sessions:    make(map[string]*model.Session),
		games:       make(map[model.GameID]*model.Game),
		memberships: make(map[membershipKey]*model.Membership),
		rolls:       make(map[model.GameID][]*model.DieRoll),
		prompts:     make(map[model.GameID][]*model.RollPrompt),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayerWithCredential(ctx context.Context, player *model.Player, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emailIndex[player.Email]; ok {
		return model.ErrEmailTaken
	}
	s.players[player.ID] = player
	s.emailIndex[player.Email] = player.ID
	s.credentials[cred.PlayerID] = cred
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) GetPlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) GetCredential(ctx context.Context, playerID model.PlayerID) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[playerID]
	if !ok {
		return nil, model.ErrCredentialNotFound
	}
	return cred, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Storage) DeleteSessionsForPlayer(ctx context.Context, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.PlayerID == playerID {
			delete(s.sessions, token)
		}
	}
	return nil
}

// Game operations

func (s *Storage) CreateGameWithOwner(ctx context.Context, game *model.Game, owner *model.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{playerID: owner.PlayerID, gameID: owner.GameID}
	if _, ok := s.memberships[key]; ok {
		return model.ErrAlreadyInGame
	}
	s.games[game.ID] = game
	s.memberships[key] = owner
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) GetGamesByName(ctx context.Context, name string) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*model.Game
	for _, game := range s.games {
		if game.Name == name {
			games = append(games, game)
		}
	}
	sortGamesNewestFirst(games)
	return games, nil
}

func (s *Storage) ListGamesByOwner(ctx context.Context, ownerID model.PlayerID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*model.Game
	for _, game := range s.games {
		if game.OwnerID == ownerID {
			games = append(games, game)
		}
	}
	sortGamesNewestFirst(games)
	return games, nil
}

// Membership operations

func (s *Storage) SaveMembership(ctx context.Context, m *model.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{playerID: m.PlayerID, gameID: m.GameID}
	if _, ok := s.memberships[key]; ok {
		return model.ErrAlreadyInGame
	}
	s.memberships[key] = m
	return nil
}

func (s *Storage) GetMembership(ctx context.Context, playerID model.PlayerID, gameID model.GameID) (*model.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[membershipKey{playerID: playerID, gameID: gameID}]
	if !ok {
		return nil, model.ErrNotInGame
	}
	return m, nil
}

func (s *Storage) ListMembershipsForGame(ctx context.Context, gameID model.GameID) ([]*model.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []*model.Membership
	for _, m := range s.memberships {
		if m.GameID == gameID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

func (s *Storage) ListMembershipsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []*model.Membership
	for _, m := range s.memberships {
		if m.PlayerID == playerID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

// Roll and prompt operations

func (s *Storage) SaveDieRoll(ctx context.Context, roll *model.DieRoll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolls[roll.GameID] = append(s.rolls[roll.GameID], roll)
	return nil
}

func (s *Storage) ListDieRollsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.DieRoll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rolls := make([]*model.DieRoll, len(s.rolls[gameID]))
	copy(rolls, s.rolls[gameID])
	sort.SliceStable(rolls, func(i, j int) bool {
		return rolls[i].CreatedAt.After(rolls[j].CreatedAt)
	})
	if limit > 0 && len(rolls) > limit {
		rolls = rolls[:limit]
	}
	return rolls, nil
}

func (s *Storage) SavePrompt(ctx context.Context, prompt *model.RollPrompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[prompt.GameID] = append(s.prompts[prompt.GameID], prompt)
	return nil
}

func (s *Storage) GetPrompt(ctx context.Context, id model.PromptID) (*model.RollPrompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, prompts := range s.prompts {
		for _, p := range prompts {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return nil, model.ErrPromptNotFound
}

func (s *Storage) ListPromptsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.RollPrompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompts := make([]*model.RollPrompt, len(s.prompts[gameID]))
	copy(prompts, s.prompts[gameID])
	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].CreatedAt.After(prompts[j].CreatedAt)
	})
	if limit > 0 && len(prompts) > limit {
		prompts = prompts[:limit]
	}
	return prompts, nil
}

func (s *Storage) ListDieRollsForPrompts(ctx context.Context, promptIDs []model.PromptID) ([]*model.DieRoll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[model.PromptID]bool, len(promptIDs))
	for _, id := range promptIDs {
		wanted[id] = true
	}
	var rolls []*model.DieRoll
	for _, gameRolls := range s.rolls {
		for _, roll := range gameRolls {
			if roll.PromptID != "" && wanted[roll.PromptID] {
				rolls = append(rolls, roll)
			}
		}
	}
	sort.SliceStable(rolls, func(i, j int) bool {
		return rolls[i].CreatedAt.After(rolls[j].CreatedAt)
	})
	return rolls, nil
}

func sortGamesNewestFirst(games []*model.Game) {
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
}
