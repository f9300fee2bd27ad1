package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/storage"
)

// Schema for the relational backend. Timestamps are stored as UnixNano
// integers so ORDER BY works without string-format pitfalls; dice and
// target player lists are JSON columns.
const schema = `
CREATE TABLE IF NOT EXISTS players (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS credentials (
	player_id TEXT PRIMARY KEY REFERENCES players(id),
	hash      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	player_id  TEXT NOT NULL REFERENCES players(id),
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_player ON sessions(player_id);
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL REFERENCES players(id),
	name        TEXT NOT NULL,
	secret_hash TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_name ON games(name);
CREATE INDEX IF NOT EXISTS idx_games_owner ON games(owner_id);
CREATE TABLE IF NOT EXISTS memberships (
	id             TEXT PRIMARY KEY,
	player_id      TEXT NOT NULL REFERENCES players(id),
	game_id        TEXT NOT NULL REFERENCES games(id),
	character_name TEXT NOT NULL,
	joined_at      INTEGER NOT NULL,
	UNIQUE(player_id, game_id)
);
CREATE TABLE IF NOT EXISTS die_rolls (
	id         TEXT PRIMARY KEY,
	player_id  TEXT NOT NULL REFERENCES players(id),
	game_id    TEXT NOT NULL REFERENCES games(id),
	roll_total INTEGER NOT NULL,
	context    TEXT NOT NULL DEFAULT '',
	prompt_id  TEXT NOT NULL DEFAULT '',
	dice       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_die_rolls_game ON die_rolls(game_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_die_rolls_prompt ON die_rolls(prompt_id);
CREATE TABLE IF NOT EXISTS roll_prompts (
	id         TEXT PRIMARY KEY,
	game_id    TEXT NOT NULL REFERENCES games(id),
	player_ids TEXT NOT NULL,
	prompt     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_roll_prompts_game ON roll_prompts(game_id, created_at DESC);
`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (creating if necessary) a SQLite database at the given path
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer; serialize access through one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// withTx runs fn inside a transaction, rolling back on error
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Player operations

func (s *Storage) CreatePlayerWithCredential(ctx context.Context, player *model.Player, cred *model.Credential) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE email = ?`, player.Email).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrEmailTaken
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO players (id, email, created_at) VALUES (?, ?, ?)`,
			player.ID, player.Email, player.CreatedAt.UnixNano())
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO credentials (player_id, hash) VALUES (?, ?)`,
			cred.PlayerID, cred.Hash)
		return err
	})
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM players WHERE id = ?`, id))
}

func (s *Storage) GetPlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM players WHERE email = ?`, email))
}

func (s *Storage) scanPlayer(row *sql.Row) (*model.Player, error) {
	var player model.Player
	var createdAt int64
	if err := row.Scan(&player.ID, &player.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	player.CreatedAt = fromNanos(createdAt)
	return &player, nil
}

func (s *Storage) GetCredential(ctx context.Context, playerID model.PlayerID) (*model.Credential, error) {
	var cred model.Credential
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, hash FROM credentials WHERE player_id = ?`, playerID).
		Scan(&cred.PlayerID, &cred.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCredentialNotFound
		}
		return nil, err
	}
	return &cred, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, player_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.PlayerID, session.CreatedAt.UnixNano(), session.ExpiresAt.UnixNano())
	return err
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	var createdAt, expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT token, player_id, created_at, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&session.Token, &session.PlayerID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	session.CreatedAt = fromNanos(createdAt)
	session.ExpiresAt = fromNanos(expiresAt)
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (s *Storage) DeleteSessionsForPlayer(ctx context.Context, playerID model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE player_id = ?`, playerID)
	return err
}

// Game operations

func (s *Storage) CreateGameWithOwner(ctx context.Context, game *model.Game, owner *model.Membership) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO games (id, owner_id, name, secret_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			game.ID, game.OwnerID, game.Name, game.SecretHash, game.CreatedAt.UnixNano())
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO memberships (id, player_id, game_id, character_name, joined_at) VALUES (?, ?, ?, ?, ?)`,
			owner.ID, owner.PlayerID, owner.GameID, owner.CharacterName, owner.JoinedAt.UnixNano())
		return err
	})
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	games, err := s.queryGames(ctx, `SELECT id, owner_id, name, secret_hash, created_at FROM games WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, model.ErrGameNotFound
	}
	return games[0], nil
}

func (s *Storage) GetGamesByName(ctx context.Context, name string) ([]*model.Game, error) {
	return s.queryGames(ctx,
		`SELECT id, owner_id, name, secret_hash, created_at FROM games WHERE name = ? ORDER BY created_at DESC`, name)
}

func (s *Storage) ListGamesByOwner(ctx context.Context, ownerID model.PlayerID) ([]*model.Game, error) {
	return s.queryGames(ctx,
		`SELECT id, owner_id, name, secret_hash, created_at FROM games WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (s *Storage) queryGames(ctx context.Context, query string, args ...any) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var games []*model.Game
	for rows.Next() {
		var game model.Game
		var createdAt int64
		if err := rows.Scan(&game.ID, &game.OwnerID, &game.Name, &game.SecretHash, &createdAt); err != nil {
			return nil, err
		}
		game.CreatedAt = fromNanos(createdAt)
		games = append(games, &game)
	}
	return games, rows.Err()
}

// Membership operations

func (s *Storage) SaveMembership(ctx context.Context, m *model.Membership) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM memberships WHERE player_id = ? AND game_id = ?`,
			m.PlayerID, m.GameID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrAlreadyInGame
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO memberships (id, player_id, game_id, character_name, joined_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.PlayerID, m.GameID, m.CharacterName, m.JoinedAt.UnixNano())
		return err
	})
}

func (s *Storage) GetMembership(ctx context.Context, playerID model.PlayerID, gameID model.GameID) (*model.Membership, error) {
	members, err := s.queryMemberships(ctx,
		`SELECT id, player_id, game_id, character_name, joined_at FROM memberships WHERE player_id = ? AND game_id = ?`,
		playerID, gameID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, model.ErrNotInGame
	}
	return members[0], nil
}

func (s *Storage) ListMembershipsForGame(ctx context.Context, gameID model.GameID) ([]*model.Membership, error) {
	return s.queryMemberships(ctx,
		`SELECT id, player_id, game_id, character_name, joined_at FROM memberships WHERE game_id = ? ORDER BY joined_at ASC`,
		gameID)
}

func (s *Storage) ListMembershipsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Membership, error) {
	return s.queryMemberships(ctx,
		`SELECT id, player_id, game_id, character_name, joined_at FROM memberships WHERE player_id = ? ORDER BY joined_at ASC`,
		playerID)
}

func (s *Storage) queryMemberships(ctx context.Context, query string, args ...any) ([]*model.Membership, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var members []*model.Membership
	for rows.Next() {
		var m model.Membership
		var joinedAt int64
		if err := rows.Scan(&m.ID, &m.PlayerID, &m.GameID, &m.CharacterName, &joinedAt); err != nil {
			return nil, err
		}
		m.JoinedAt = fromNanos(joinedAt)
		members = append(members, &m)
	}
	return members, rows.Err()
}

// Roll and prompt operations

func (s *Storage) SaveDieRoll(ctx context.Context, roll *model.DieRoll) error {
	dice, err := json.Marshal(roll.Dice)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO die_rolls (id, player_id, game_id, roll_total, context, prompt_id, dice, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		roll.ID, roll.PlayerID, roll.GameID, roll.RollTotal, roll.Context, roll.PromptID, dice, roll.CreatedAt.UnixNano())
	return err
}

func (s *Storage) ListDieRollsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.DieRoll, error) {
	query := `SELECT id, player_id, game_id, roll_total, context, prompt_id, dice, created_at
		FROM die_rolls WHERE game_id = ? ORDER BY created_at DESC`
	args := []any{gameID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRolls(ctx, query, args...)
}

func (s *Storage) SavePrompt(ctx context.Context, prompt *model.RollPrompt) error {
	playerIDs, err := json.Marshal(prompt.PlayerIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO roll_prompts (id, game_id, player_ids, prompt, created_at) VALUES (?, ?, ?, ?, ?)`,
		prompt.ID, prompt.GameID, playerIDs, prompt.Prompt, prompt.CreatedAt.UnixNano())
	return err
}

func (s *Storage) GetPrompt(ctx context.Context, id model.PromptID) (*model.RollPrompt, error) {
	prompts, err := s.queryPrompts(ctx,
		`SELECT id, game_id, player_ids, prompt, created_at FROM roll_prompts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, model.ErrPromptNotFound
	}
	return prompts[0], nil
}

func (s *Storage) ListPromptsForGame(ctx context.Context, gameID model.GameID, limit int) ([]*model.RollPrompt, error) {
	query := `SELECT id, game_id, player_ids, prompt, created_at
		FROM roll_prompts WHERE game_id = ? ORDER BY created_at DESC`
	args := []any{gameID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryPrompts(ctx, query, args...)
}

func (s *Storage) ListDieRollsForPrompts(ctx context.Context, promptIDs []model.PromptID) ([]*model.DieRoll, error) {
	if len(promptIDs) == 0 {
		return nil, nil
	}

	query := `SELECT id, player_id, game_id, roll_total, context, prompt_id, dice, created_at
		FROM die_rolls WHERE prompt_id IN (?` + strings.Repeat(",?", len(promptIDs)-1) + `) ORDER BY created_at DESC`
	args := make([]any, len(promptIDs))
	for i, id := range promptIDs {
		args[i] = id
	}
	return s.queryRolls(ctx, query, args...)
}

func (s *Storage) queryRolls(ctx context.Context, query string, args ...any) ([]*model.DieRoll, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rolls []*model.DieRoll
	for rows.Next() {
		var roll model.DieRoll
		var dice []byte
		var createdAt int64
		if err := rows.Scan(&roll.ID, &roll.PlayerID, &roll.GameID, &roll.RollTotal,
			&roll.Context, &roll.PromptID, &dice, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(dice, &roll.Dice); err != nil {
			return nil, err
		}
		roll.CreatedAt = fromNanos(createdAt)
		rolls = append(rolls, &roll)
	}
	return rolls, rows.Err()
}

func (s *Storage) queryPrompts(ctx context.Context, query string, args ...any) ([]*model.RollPrompt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var prompts []*model.RollPrompt
	for rows.Next() {
		var prompt model.RollPrompt
		var playerIDs []byte
		var createdAt int64
		if err := rows.Scan(&prompt.ID, &prompt.GameID, &playerIDs, &prompt.Prompt, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(playerIDs, &prompt.PlayerIDs); err != nil {
			return nil, err
		}
		prompt.CreatedAt = fromNanos(createdAt)
		prompts = append(prompts, &prompt)
	}
	return prompts, rows.Err()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
