package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/dicetray/dicetray/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// Player tests

func (s *StorageSuite) TestCreatePlayerWithCredential() {
	player := &model.Player{ID: "p1", Email: "alice@example.com", CreatedAt: time.Now().UTC()}
	cred := &model.Credential{PlayerID: "p1", Hash: "hash"}

	s.Require().NoError(s.storage.CreatePlayerWithCredential(s.ctx, player, cred))

	got, err := s.storage.GetPlayerByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.ID)

	gotCred, err := s.storage.GetCredential(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("hash", gotCred.Hash)
}

func (s *StorageSuite) TestCreatePlayerDuplicateEmailFails() {
	player := &model.Player{ID: "p1", Email: "alice@example.com", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.storage.CreatePlayerWithCredential(s.ctx, player, &model.Credential{PlayerID: "p1", Hash: "h"}))

	dupe := &model.Player{ID: "p2", Email: "alice@example.com", CreatedAt: time.Now().UTC()}
	err := s.storage.CreatePlayerWithCredential(s.ctx, dupe, &model.Credential{PlayerID: "p2", Hash: "h2"})
	s.ErrorIs(err, model.ErrEmailTaken)

	_, err = s.storage.GetPlayer(s.ctx, "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Session tests

func (s *StorageSuite) TestSessionLifecycle() {
	session := &model.Session{
		Token:     "tok",
		PlayerID:  "p1",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	got, err := s.storage.GetSession(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.PlayerID)

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok"))
	_, err = s.storage.GetSession(s.ctx, "tok")
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Idempotent
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok"))
}

func (s *StorageSuite) TestDeleteSessionsForPlayer() {
	for _, token := range []string{"a", "b"} {
		s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Token: token, PlayerID: "p1"}))
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Token: "c", PlayerID: "p2"}))

	s.Require().NoError(s.storage.DeleteSessionsForPlayer(s.ctx, "p1"))

	_, err := s.storage.GetSession(s.ctx, "a")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.storage.GetSession(s.ctx, "c")
	s.NoError(err)
}

// Game and membership tests

func (s *StorageSuite) createGame(id model.GameID, owner model.PlayerID, name string) {
	game := &model.Game{ID: id, OwnerID: owner, Name: name, SecretHash: "h", CreatedAt: time.Now().UTC()}
	m := &model.Membership{
		ID: model.MembershipID("m-" + string(id)), PlayerID: owner, GameID: id,
		CharacterName: model.OwnerCharacterName, JoinedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.storage.CreateGameWithOwner(s.ctx, game, m))
}

func (s *StorageSuite) TestCreateGameWithOwner() {
	s.createGame("g1", "p1", "The Lost Mine")

	game, err := s.storage.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal("The Lost Mine", game.Name)

	m, err := s.storage.GetMembership(s.ctx, "p1", "g1")
	s.Require().NoError(err)
	s.Equal(model.OwnerCharacterName, m.CharacterName)

	owned, err := s.storage.ListGamesByOwner(s.ctx, "p1")
	s.Require().NoError(err)
	s.Len(owned, 1)
}

func (s *StorageSuite) TestGetGamesByNameReturnsAllMatches() {
	s.createGame("g1", "p1", "The Lost Mine")
	s.createGame("g2", "p2", "The Lost Mine")

	games, err := s.storage.GetGamesByName(s.ctx, "The Lost Mine")
	s.Require().NoError(err)
	s.Len(games, 2)
}

func (s *StorageSuite) TestSaveMembershipDuplicateFails() {
	s.createGame("g1", "p1", "The Lost Mine")

	m := &model.Membership{ID: "m1", PlayerID: "p2", GameID: "g1", CharacterName: "Eldon", JoinedAt: time.Now().UTC()}
	s.Require().NoError(s.storage.SaveMembership(s.ctx, m))

	again := &model.Membership{ID: "m2", PlayerID: "p2", GameID: "g1", CharacterName: "Eldon II", JoinedAt: time.Now().UTC()}
	s.ErrorIs(s.storage.SaveMembership(s.ctx, again), model.ErrAlreadyInGame)

	joined, err := s.storage.ListMembershipsForPlayer(s.ctx, "p2")
	s.Require().NoError(err)
	s.Len(joined, 1)
}

// Roll and prompt tests

func (s *StorageSuite) TestListDieRollsNewestFirstBounded() {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ids := []model.DieRollID{"r1", "r2", "r3"}
	for i, id := range ids {
		roll := &model.DieRoll{
			ID: id, PlayerID: "p1", GameID: "g1", RollTotal: i + 1,
			Dice:      []model.Die{{Die: model.D6, Value: i + 1}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.storage.SaveDieRoll(s.ctx, roll))
	}

	rolls, err := s.storage.ListDieRollsForGame(s.ctx, "g1", 2)
	s.Require().NoError(err)
	s.Require().Len(rolls, 2)
	s.Equal(model.DieRollID("r3"), rolls[0].ID)
	s.Equal(model.DieRollID("r2"), rolls[1].ID)
}

func (s *StorageSuite) TestPromptWithAnsweringRolls() {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	prompt := &model.RollPrompt{ID: "pr1", GameID: "g1", PlayerIDs: []model.PlayerID{"p1"}, Prompt: "wisdom save", CreatedAt: now}
	s.Require().NoError(s.storage.SavePrompt(s.ctx, prompt))

	answer := &model.DieRoll{ID: "r1", PlayerID: "p1", GameID: "g1", PromptID: "pr1", RollTotal: 12,
		Dice: []model.Die{{Die: model.D20, Value: 12}}, CreatedAt: now.Add(time.Minute)}
	unrelated := &model.DieRoll{ID: "r2", PlayerID: "p1", GameID: "g1", RollTotal: 3,
		Dice: []model.Die{{Die: model.D4, Value: 3}}, CreatedAt: now.Add(2 * time.Minute)}
	s.Require().NoError(s.storage.SaveDieRoll(s.ctx, answer))
	s.Require().NoError(s.storage.SaveDieRoll(s.ctx, unrelated))

	got, err := s.storage.GetPrompt(s.ctx, "pr1")
	s.Require().NoError(err)
	s.Equal("wisdom save", got.Prompt)

	rolls, err := s.storage.ListDieRollsForPrompts(s.ctx, []model.PromptID{"pr1"})
	s.Require().NoError(err)
	s.Require().Len(rolls, 1)
	s.Equal(model.DieRollID("r1"), rolls[0].ID)
}

func (s *StorageSuite) TestListPromptsNewestFirstBounded() {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []model.PromptID{"pr1", "pr2", "pr3"} {
		prompt := &model.RollPrompt{ID: id, GameID: "g1", PlayerIDs: []model.PlayerID{"p1"},
			Prompt: "roll", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		s.Require().NoError(s.storage.SavePrompt(s.ctx, prompt))
	}

	prompts, err := s.storage.ListPromptsForGame(s.ctx, "g1", 2)
	s.Require().NoError(err)
	s.Require().Len(prompts, 2)
	s.Equal(model.PromptID("pr3"), prompts[0].ID)
}
