package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicetray/dicetray/internal/api"
	"github.com/dicetray/dicetray/internal/api/response"
	"github.com/dicetray/dicetray/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		GameController:   app.GameController,
		LedgerController: app.LedgerController,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// signup registers a player and returns their session token
func (ts *testServer) signup(t *testing.T, email string) string {
	t.Helper()

	body := map[string]string{
		"email":           email,
		"password":        "password123",
		"invitation_code": factory.TestInvitationCode,
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/signup", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionToken)
	return resp.SessionToken
}

// createGame creates a game and returns its id
func (ts *testServer) createGame(t *testing.T, token, name, secret string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"name": name, "secret": secret}, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestSignupSetsSessionCookie(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"email":           "alice@example.com",
		"password":        "password123",
		"invitation_code": factory.TestInvitationCode,
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/signup", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "session_token", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Positive(t, cookie.MaxAge)
}

func TestSignupRejectsBadInvitation(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"email":           "alice@example.com",
		"password":        "password123",
		"invitation_code": "wrong",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/signup", body, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice@example.com")

	body := map[string]string{
		"email":           "alice@example.com",
		"password":        "different",
		"invitation_code": factory.TestInvitationCode,
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/signup", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "EMAIL_TAKEN")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice@example.com")

	wrongPassword := ts.request(http.MethodPost, "/api/v1/players/login",
		map[string]string{"email": "alice@example.com", "password": "nope"}, "")
	unknownEmail := ts.request(http.MethodPost, "/api/v1/players/login",
		map[string]string{"email": "nobody@example.com", "password": "nope"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestSessionCookieAuthenticates(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestLogoutClearsCookieAndInvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutAllKillsEverySession(t *testing.T) {
	ts := newTestServer(t)
	first := ts.signup(t, "alice@example.com")

	rr := ts.request(http.MethodPost, "/api/v1/players/login",
		map[string]string{"email": "alice@example.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var second response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))

	rr = ts.request(http.MethodPost, "/api/v1/players/logout-all", nil, first)
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Equal(t, http.StatusUnauthorized, ts.request(http.MethodGet, "/api/v1/players/me", nil, first).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.request(http.MethodGet, "/api/v1/players/me", nil, second.SessionToken).Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.request(http.MethodGet, "/api/v1/players/me", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.request(http.MethodGet, "/api/v1/games", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.request(http.MethodPost, "/api/v1/games", map[string]string{"name": "x", "secret": "y"}, "").Code)
}

func TestJoinUnknownNameAndWrongSecretLookAlike(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	joiner := ts.signup(t, "joiner@example.com")
	ts.createGame(t, owner, "The Lost Mine", "hunter2")

	wrongSecret := ts.request(http.MethodPost, "/api/v1/games/join",
		map[string]string{"name": "The Lost Mine", "secret": "nope"}, joiner)
	unknownName := ts.request(http.MethodPost, "/api/v1/games/join",
		map[string]string{"name": "No Such Game", "secret": "hunter2"}, joiner)

	assert.Equal(t, http.StatusNotFound, wrongSecret.Code)
	assert.Equal(t, http.StatusNotFound, unknownName.Code)
	assert.Equal(t, wrongSecret.Body.String(), unknownName.Body.String())
}

func TestJoinTwiceConflicts(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	joiner := ts.signup(t, "joiner@example.com")
	ts.createGame(t, owner, "The Lost Mine", "hunter2")

	join := map[string]string{"name": "The Lost Mine", "secret": "hunter2", "character_name": "Eldon"}
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, "/api/v1/games/join", join, joiner).Code)

	rr := ts.request(http.MethodPost, "/api/v1/games/join", join, joiner)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "ALREADY_IN_GAME")
}

func TestGamesListShowsOwnedAndJoined(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	joiner := ts.signup(t, "joiner@example.com")
	ts.createGame(t, owner, "The Lost Mine", "hunter2")
	ts.createGame(t, joiner, "My Own Game", "secret")

	join := map[string]string{"name": "The Lost Mine", "secret": "hunter2", "character_name": "Eldon"}
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, "/api/v1/games/join", join, joiner).Code)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, joiner)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.GamesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Owned, 1)
	assert.Equal(t, "My Own Game", resp.Owned[0].Name)

	// Joined includes the owner's seat in their own game plus the joined one
	require.Len(t, resp.Joined, 2)
	names := []string{resp.Joined[0].Game.Name, resp.Joined[1].Game.Name}
	assert.Contains(t, names, "The Lost Mine")
}

func TestNonMembersSeeGameAsMissing(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	outsider := ts.signup(t, "outsider@example.com")
	gameID := ts.createGame(t, owner, "The Lost Mine", "hunter2")

	assert.Equal(t, http.StatusNotFound, ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/members", nil, outsider).Code)
	assert.Equal(t, http.StatusNotFound, ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/dice", nil, outsider).Code)
	assert.Equal(t, http.StatusNotFound, ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/events", nil, outsider).Code)
}

func TestRollValidation(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	gameID := ts.createGame(t, owner, "The Lost Mine", "hunter2")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/dice", map[string]any{"dice": []string{}}, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/dice", map[string]any{"dice": []string{"d7"}}, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_DICE")

	// The 100-die cap applies to direct requests, not just notation
	oversized := make([]string, 101)
	for i := range oversized {
		oversized[i] = "d6"
	}
	rr = ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/dice", map[string]any{"dice": oversized}, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_DICE")
}

func TestPromptIsOwnerOnly(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	joiner := ts.signup(t, "joiner@example.com")
	gameID := ts.createGame(t, owner, "The Lost Mine", "hunter2")

	join := map[string]string{"name": "The Lost Mine", "secret": "hunter2"}
	rr := ts.request(http.MethodPost, "/api/v1/games/join", join, joiner)
	require.Equal(t, http.StatusOK, rr.Code)
	var seat response.Membership
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &seat))

	body := map[string]any{"player_ids": []string{seat.PlayerID}, "reason": "initiative"}
	rr = ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/prompts", body, joiner)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_OWNER")

	rr = ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/prompts", body, owner)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

// The full table flow: signup A, create game, signup B, join, B rolls
// [d6,d20], A sees the roll with both dice and a matching total
func TestEndToEndTableFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerToken := ts.signup(t, "dm@example.com")
	gameID := ts.createGame(t, ownerToken, "The Lost Mine", "hunter2")

	joinerToken := ts.signup(t, "adventurer@example.com")
	join := map[string]string{"name": "The Lost Mine", "secret": "hunter2", "character_name": "Eldon"}
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, "/api/v1/games/join", join, joinerToken).Code)

	// Members visible to both, with the owner flagged
	rr := ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/members", nil, joinerToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var members response.MembersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &members))
	require.Len(t, members.Members, 2)

	// B rolls a d6 and a d20
	ts.app.MockRandom.QueueIntn(3, 15) // d6=4, d20=16
	rollBody := map[string]any{"dice": []string{"d6", "d20"}, "notation": "d6 d20"}
	rr = ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/dice", rollBody, joinerToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	// A fetches the rolls and sees B's roll, newest first
	rr = ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/dice", nil, ownerToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var rolls response.DieRollsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rolls))
	require.Len(t, rolls.DieRolls, 1)

	roll := rolls.DieRolls[0]
	require.Len(t, roll.Dice, 2)
	assert.Equal(t, "d6", roll.Dice[0].Die)
	assert.Equal(t, "d20", roll.Dice[1].Die)
	assert.Equal(t, roll.Dice[0].Value+roll.Dice[1].Value, roll.RollTotal)
	assert.Equal(t, 20, roll.RollTotal)

	// And the timeline shows it as a roll event
	rr = ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/events", nil, ownerToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var events response.EventsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.Len(t, events.Events, 1)
	assert.Equal(t, "roll", events.Events[0].Kind)
	require.NotNil(t, events.Events[0].Roll)
	assert.Equal(t, roll.ID, events.Events[0].Roll.ID)
}

func TestRollsNewestFirstOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "owner@example.com")
	gameID := ts.createGame(t, owner, "The Lost Mine", "hunter2")

	for i := 0; i < 3; i++ {
		ts.app.MockRandom.QueueIntn(i)
		body := map[string]any{"dice": []string{"d6"}}
		require.Equal(t, http.StatusCreated, ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/dice", body, owner).Code)
		ts.app.MockClock.Advance(time.Second)
	}

	rr := ts.request(http.MethodGet, "/api/v1/games/"+gameID+"/dice", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)

	var rolls response.DieRollsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rolls))
	require.Len(t, rolls.DieRolls, 3)
	assert.Equal(t, 3, rolls.DieRolls[0].RollTotal) // last roll (d6 value 3)
	assert.Equal(t, 1, rolls.DieRolls[2].RollTotal) // first roll (d6 value 1)
}
