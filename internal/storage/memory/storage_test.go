package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dicetray/dicetray/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newPlayer(id model.PlayerID, email string) *model.Player {
	return &model.Player{ID: id, Email: email, CreatedAt: time.Now()}
}

// Player tests

func (s *StorageSuite) TestCreatePlayerWithCredential() {
	player := s.newPlayer("player-1", "alice@example.com")
	cred := &model.Credential{PlayerID: player.ID, Hash: "hash"}

	s.Require().NoError(s.storage.CreatePlayerWithCredential(s.ctx, player, cred))

	got, err := s.storage.GetPlayerByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(player.ID, got.ID)

	gotCred, err := s.storage.GetCredential(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal("hash", gotCred.Hash)
}

func (s *StorageSuite) TestCreatePlayerDuplicateEmailFails() {
	player := s.newPlayer("player-1", "alice@example.com")
	cred := &model.Credential{PlayerID: player.ID, Hash: "hash"}
	s.Require().NoError(s.storage.CreatePlayerWithCredential(s.ctx, player, cred))

	dupe := s.newPlayer("player-2", "alice@example.com")
	err := s.storage.CreatePlayerWithCredential(s.ctx, dupe, &model.Credential{PlayerID: dupe.ID, Hash: "h2"})
	s.ErrorIs(err, model.ErrEmailTaken)

	// Neither row of the duplicate signup should exist
	_, err = s.storage.GetPlayer(s.ctx, "player-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetCredential(s.ctx, "player-2")
	s.ErrorIs(err, model.ErrCredentialNotFound)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		Token:     "tok",
		PlayerID:  "player-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	got, err := s.storage.GetSession(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(session.PlayerID, got.PlayerID)
}

func (s *StorageSuite) TestDeleteSessionIsIdempotent() {
	session := &model.Session{Token: "tok", PlayerID: "player-1"}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok"))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok"))

	_, err := s.storage.GetSession(s.ctx, "tok")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSessionsForPlayer() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Token: "a", PlayerID: "p1"}))
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Token: "b", PlayerID: "p1"}))
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{Token: "c", PlayerID: "p2"}))

	s.Require().NoError(s.storage.DeleteSessionsForPlayer(s.ctx, "p1"))

	_, err := s.storage.GetSession(s.ctx, "a")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.storage.GetSession(s.ctx, "b")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.storage.GetSession(s.ctx, "c")
	s.NoError(err)
}

// Game and membership tests

func (s *StorageSuite) createGame(id model.GameID, owner model.PlayerID, name string) {
	game := &model.Game{ID: id, OwnerID: owner, Name: name, SecretHash: "h", CreatedAt: time.Now()}
	m := &model.Membership{
		ID: model.MembershipID("m-" + string(id)), PlayerID: owner, GameID: id,
		CharacterName: model.OwnerCharacterName, JoinedAt: time.Now(),
	}
	s.Require().NoError(s.storage.CreateGameWithOwner(s.ctx, game, m))
}

func (s *StorageSuite) TestCreateGameWithOwnerEnrollsOwner() {
	s.createGame("game-1", "p1", "The Lost Mine")

	game, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), game.OwnerID)

	m, err := s.storage.GetMembership(s.ctx, "p1", "game-1")
	s.Require().NoError(err)
	s.Equal(model.OwnerCharacterName, m.CharacterName)
}

func (s *StorageSuite) TestGetGamesByName() {
	s.createGame("game-1", "p1", "The Lost Mine")
	s.createGame("game-2", "p2", "The Lost Mine")
	s.createGame("game-3", "p1", "Curse of Strahd")

	games, err := s.storage.GetGamesByName(s.ctx, "The Lost Mine")
	s.Require().NoError(err)
	s.Len(games, 2)
}

func (s *StorageSuite) TestSaveMembershipDuplicateFails() {
	s.createGame("game-1", "p1", "The Lost Mine")

	m := &model.Membership{ID: "m1", PlayerID: "p2", GameID: "game-1", CharacterName: "Eldon", JoinedAt: time.Now()}
	s.Require().NoError(s.storage.SaveMembership(s.ctx, m))

	again := &model.Membership{ID: "m2", PlayerID: "p2", GameID: "game-1", CharacterName: "Eldon II", JoinedAt: time.Now()}
	s.ErrorIs(s.storage.SaveMembership(s.ctx, again), model.ErrAlreadyInGame)

	members, err := s.storage.ListMembershipsForGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Len(members, 2) // owner + one join
}

// Roll and prompt tests

func (s *StorageSuite) TestListDieRollsNewestFirstBounded() {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		roll := &model.DieRoll{
			ID:        model.DieRollID(string(rune('a' + i))),
			PlayerID:  "p1",
			GameID:    "game-1",
			RollTotal: i,
			Dice:      []model.Die{{Die: model.D6, Value: 1}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.storage.SaveDieRoll(s.ctx, roll))
	}

	rolls, err := s.storage.ListDieRollsForGame(s.ctx, "game-1", 20)
	s.Require().NoError(err)
	s.Require().Len(rolls, 20)
	s.Equal(24, rolls[0].RollTotal)
	s.Equal(5, rolls[19].RollTotal)
}

func (s *StorageSuite) TestListDieRollsForPrompts() {
	now := time.Now()
	prompt := &model.RollPrompt{ID: "pr1", GameID: "game-1", PlayerIDs: []model.PlayerID{"p1"}, Prompt: "save", CreatedAt: now}
	s.Require().NoError(s.storage.SavePrompt(s.ctx, prompt))

	answer := &model.DieRoll{ID: "r1", PlayerID: "p1", GameID: "game-1", PromptID: "pr1", RollTotal: 4,
		Dice: []model.Die{{Die: model.D4, Value: 4}}, CreatedAt: now.Add(time.Minute)}
	other := &model.DieRoll{ID: "r2", PlayerID: "p1", GameID: "game-1", RollTotal: 2,
		Dice: []model.Die{{Die: model.D4, Value: 2}}, CreatedAt: now.Add(2 * time.Minute)}
	s.Require().NoError(s.storage.SaveDieRoll(s.ctx, answer))
	s.Require().NoError(s.storage.SaveDieRoll(s.ctx, other))

	rolls, err := s.storage.ListDieRollsForPrompts(s.ctx, []model.PromptID{"pr1"})
	s.Require().NoError(err)
	s.Require().Len(rolls, 1)
	s.Equal(model.DieRollID("r1"), rolls[0].ID)
}

func (s *StorageSuite) TestListPromptsNewestFirstBounded() {
	base := time.Now()
	for i := 0; i < 7; i++ {
		prompt := &model.RollPrompt{
			ID:        model.PromptID(string(rune('a' + i))),
			GameID:    "game-1",
			PlayerIDs: []model.PlayerID{"p1"},
			Prompt:    "roll it",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		s.Require().NoError(s.storage.SavePrompt(s.ctx, prompt))
	}

	prompts, err := s.storage.ListPromptsForGame(s.ctx, "game-1", 5)
	s.Require().NoError(err)
	s.Require().Len(prompts, 5)
	s.Equal(model.PromptID("g"), prompts[0].ID)
}
