package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dicetray/dicetray/internal/dependencies/clock"
	"github.com/dicetray/dicetray/internal/dependencies/random"
	"github.com/dicetray/dicetray/internal/services/auth"
	"github.com/dicetray/dicetray/internal/services/dice"
	"github.com/dicetray/dicetray/internal/services/game"
	"github.com/dicetray/dicetray/internal/services/ledger"
	"github.com/dicetray/dicetray/internal/storage"
	"github.com/dicetray/dicetray/internal/storage/memory"
	redisstorage "github.com/dicetray/dicetray/internal/storage/redis"
	sqlitestorage "github.com/dicetray/dicetray/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSqlite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock      clock.Clock
	DiceRandom random.Random

	// Services
	Hasher           *auth.Hasher
	AuthService      *auth.Service
	GameController   *game.Controller
	LedgerController *ledger.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Pepper is the secret appended to passwords and join secrets before
	// hashing (required)
	Pepper string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SqlitePath is the database file path (required if StorageType is "sqlite")
	SqlitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.Pepper == "" {
		return nil, auth.ErrPepperRequired
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSqlite:
		if cfg.SqlitePath == "" {
			return nil, errors.New("SqlitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(cfg.SqlitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	hasher := auth.NewHasher(cfg.Pepper)
	return newWithDependencies(store, clock.New(), random.NewFast(), hasher, authCfg)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, diceRnd random.Random, hasher *auth.Hasher, authCfg auth.Config) (*App, error) {
	authService, err := auth.New(store, clk, hasher, authCfg)
	if err != nil {
		return nil, err
	}
	gameController := game.New(store, clk, hasher)
	ledgerController := ledger.New(store, clk, dice.New(diceRnd))

	return &App{
		Storage:          store,
		Clock:            clk,
		DiceRandom:       diceRnd,
		Hasher:           hasher,
		AuthService:      authService,
		GameController:   gameController,
		LedgerController: ledgerController,
	}, nil
}
