package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dicetray/dicetray/internal/api/middleware"
	"github.com/dicetray/dicetray/internal/api/request"
	"github.com/dicetray/dicetray/internal/api/response"
	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/services/game"
)

// GameHandler handles game and membership endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player := middleware.MustGetPlayer(r.Context())
	created, err := h.gameController.CreateGame(r.Context(), player.ID, req.Name, req.Secret)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(created))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	owned, err := h.gameController.ListOwnedGames(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	joined, err := h.gameController.ListJoinedGames(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.GamesResponse{
		Owned:  make([]response.Game, len(owned)),
		Joined: make([]response.GameListing, len(joined)),
	}
	for i, g := range owned {
		resp.Owned[i] = response.GameFromModel(g)
	}
	for i, l := range joined {
		resp.Joined[i] = response.GameListingFromModel(l)
	}

	response.JSON(w, http.StatusOK, resp)
}

// Join handles POST /api/v1/games/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player := middleware.MustGetPlayer(r.Context())
	m, err := h.gameController.JoinGame(r.Context(), player.ID, req.Name, req.Secret, req.CharacterName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MembershipFromModel(m))
}

// Members handles GET /api/v1/games/{gameId}/members
func (h *GameHandler) Members(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	gameID := model.GameID(mux.Vars(r)["gameId"])

	members, err := h.gameController.ListMembers(r.Context(), player.ID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.MembersResponse{Members: make([]response.Member, len(members))}
	for i, m := range members {
		resp.Members[i] = response.MemberFromModel(m)
	}
	response.JSON(w, http.StatusOK, resp)
}
