package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dicetray/dicetray/internal/dependencies/clock"
	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidInvitation  = errors.New("invalid invitation code")
)

// sessionTokenBytes is the entropy of a session token (256 bits, hex-encoded)
const sessionTokenBytes = 32

// Service handles signup, login and session management
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	hasher  *Hasher

	sessionDuration time.Duration
	invitationCode  string

	// dummyHash keeps login timing uniform for unknown emails
	dummyHash string
}

// Config holds configuration for the auth service
type Config struct {
	// SessionDuration is how long issued sessions live
	SessionDuration time.Duration
	// InvitationCode gates signup; empty means no signup is possible
	InvitationCode string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 30 * 24 * time.Hour,
	}
}

// New creates a new auth Service. The hasher must have a pepper configured:
// the dummy credential is derived through it so it carries the same cost as a
// real one.
func New(storage storage.Storage, clock clock.Clock, hasher *Hasher, cfg Config) (*Service, error) {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}

	// A cheaper dummy would make the unknown-email path measurably faster
	// than a wrong password, which is exactly what it exists to prevent.
	dummy, err := hasher.Hash("dicetray-dummy-credential")
	if err != nil {
		return nil, err
	}

	return &Service{
		storage:         storage,
		clock:           clock,
		hasher:          hasher,
		sessionDuration: cfg.SessionDuration,
		invitationCode:  cfg.InvitationCode,
		dummyHash:       dummy,
	}, nil
}

// Signup registers a new player and returns a fresh session. The Player and
// Credential rows are written atomically; the session is created only after
// they are committed.
func (s *Service) Signup(ctx context.Context, email, password, invitation string) (*model.Session, error) {
	if !s.ValidateInvitationCode(invitation) {
		return nil, ErrInvalidInvitation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:        model.PlayerID(uuid.NewString()),
		Email:     email,
		CreatedAt: s.clock.Now(),
	}
	cred := &model.Credential{
		PlayerID: player.ID,
		Hash:     hash,
	}

	if err := s.storage.CreatePlayerWithCredential(ctx, player, cred); err != nil {
		return nil, err
	}

	return s.CreateSession(ctx, player.ID)
}

// Login authenticates a player by email and password. Unknown email and
// wrong password are indistinguishable to the caller: both return
// ErrInvalidCredentials, and a dummy hash comparison runs on the
// unknown-email path so timing does not leak which case occurred.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	player, err := s.storage.GetPlayerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	cred, err := s.storage.GetCredential(ctx, player.ID)
	if err != nil {
		if errors.Is(err, model.ErrCredentialNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, cred.Hash) {
		return nil, ErrInvalidCredentials
	}

	return s.CreateSession(ctx, player.ID)
}

// CreateSession issues a new opaque session token for a player
func (s *Service) CreateSession(ctx context.Context, playerID model.PlayerID) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &model.Session{
		Token:     token,
		PlayerID:  playerID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// ValidateSession resolves a token to its session. An expired session is
// deleted as a side effect (lazy expiry) and reported as invalid. Two
// concurrent validations of a token at its expiry instant may race; the
// loser still observes an invalid session, so nothing stronger is needed.
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if session.Expired(s.clock.Now()) {
		_ = s.storage.DeleteSession(ctx, token)
		return nil, ErrInvalidSession
	}

	return session, nil
}

// GetPlayer resolves a session token to its player
func (s *Service) GetPlayer(ctx context.Context, token string) (*model.Player, error) {
	session, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.storage.GetPlayer(ctx, session.PlayerID)
}

// GetPlayerByID looks a player up directly
func (s *Service) GetPlayerByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// Logout deletes a session; deleting an absent token is a no-op
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}

// LogoutEverywhere deletes every session held by a player
func (s *Service) LogoutEverywhere(ctx context.Context, playerID model.PlayerID) error {
	return s.storage.DeleteSessionsForPlayer(ctx, playerID)
}

// ValidateInvitationCode compares a candidate against the configured signup
// code in constant time. An unconfigured code rejects everything.
func (s *Service) ValidateInvitationCode(code string) bool {
	if s.invitationCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.invitationCode)) == 1
}

// SessionDuration returns how long issued sessions live (used for cookie max-age)
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// generateToken returns a cryptographically random 256-bit token, hex-encoded
func generateToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
