package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dicetray/dicetray/internal/api/handler"
	"github.com/dicetray/dicetray/internal/api/middleware"
	"github.com/dicetray/dicetray/internal/services/auth"
	"github.com/dicetray/dicetray/internal/services/game"
	"github.com/dicetray/dicetray/internal/services/ledger"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	GameController   *game.Controller
	LedgerController *ledger.Controller
	// SecureCookies marks session cookies HTTPS-only; set in production
	SecureCookies bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, handler.CookieConfig{Secure: cfg.SecureCookies})
	gameHandler := handler.NewGameHandler(cfg.GameController)
	diceHandler := handler.NewDiceHandler(cfg.LedgerController)
	promptHandler := handler.NewPromptHandler(cfg.LedgerController)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for signup/login)
	api.HandleFunc("/players/signup", playerHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	playerProtected.HandleFunc("/logout-all", playerHandler.LogoutAll).Methods(http.MethodPost)

	// Game routes (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/join", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{gameId}/members", gameHandler.Members).Methods(http.MethodGet)
	games.HandleFunc("/{gameId}/dice", diceHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/{gameId}/dice", diceHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{gameId}/prompts", promptHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/{gameId}/prompts", promptHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{gameId}/events", promptHandler.Events).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
