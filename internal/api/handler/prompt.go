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

// PromptHandler handles roll prompt and timeline endpoints
type PromptHandler struct {
	ledger *ledger.Controller
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(ledger *ledger.Controller) *PromptHandler {
	return &PromptHandler{
		ledger: ledger,
	}
}

// List handles GET /api/v1/games/{gameId}/prompts
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	gameID := model.GameID(mux.Vars(r)["gameId"])

	prompts, err := h.ledger.PromptsWithRolls(r.Context(), player.ID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.PromptsResponse{Prompts: make([]response.Prompt, len(prompts))}
	for i, p := range prompts {
		resp.Prompts[i] = response.PromptFromModel(p)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/games/{gameId}/prompts
func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player := middleware.MustGetPlayer(r.Context())
	gameID := model.GameID(mux.Vars(r)["gameId"])

	targets := make([]model.PlayerID, len(req.PlayerIDs))
	for i, id := range req.PlayerIDs {
		targets[i] = model.PlayerID(id)
	}

	prompt, err := h.ledger.CreatePrompt(r.Context(), player.ID, gameID, targets, req.Reason)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PromptFromModel(&model.PromptWithRolls{RollPrompt: *prompt}))
}

// Events handles GET /api/v1/games/{gameId}/events
func (h *PromptHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	gameID := model.GameID(mux.Vars(r)["gameId"])

	events, err := h.ledger.Timeline(r.Context(), player.ID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.EventsResponse{Events: make([]response.Event, len(events))}
	for i, e := range events {
		resp.Events[i] = response.EventFromModel(e)
	}
	response.JSON(w, http.StatusOK, resp)
}
