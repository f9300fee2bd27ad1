package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dicetray/dicetray/internal/api/middleware"
	"github.com/dicetray/dicetray/internal/api/request"
	"github.com/dicetray/dicetray/internal/api/response"
	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/services/ledger"
)

// DiceHandler handles roll endpoints
type DiceHandler struct {
	ledger *ledger.Controller
}

// NewDiceHandler creates a new dice handler
func NewDiceHandler(ledger *ledger.Controller) *DiceHandler {
	return &DiceHandler{
		ledger: ledger,
	}
}

// List handles GET /api/v1/games/{gameId}/dice
func (h *DiceHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	gameID := model.GameID(mux.Vars(r)["gameId"])

	rolls, err := h.ledger.RollsForGame(r.Context(), player.ID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DieRollsFromModels(rolls))
}

// Create handles POST /api/v1/games/{gameId}/dice
func (h *DiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player := middleware.MustGetPlayer(r.Context())
	gameID := model.GameID(mux.Vars(r)["gameId"])

	dice := make([]model.DieType, len(req.Dice))
	for i, d := range req.Dice {
		dice[i] = model.DieType(d)
	}

	rolls, err := h.ledger.CreateDieRoll(r.Context(), player.ID, gameID, dice, req.Notation, model.PromptID(req.PromptID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.DieRollsFromModels(rolls))
}
