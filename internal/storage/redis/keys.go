package redis

import (
	"fmt"

	"github.com/dicetray/dicetray/internal/model"
)

// Key prefix for all persisted data
const keyPrefix = "dicetray"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> player_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// credentialKey returns the Redis key for a Credential
func credentialKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, playerID)
}

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// playerSessionsIndexKey returns the Redis key for the SET of a player's session tokens
func playerSessionsIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:sessions:%s", keyPrefix, playerID)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameNameIndexKey returns the Redis key for the SET of game ids sharing a name
func gameNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:game_name:%s", keyPrefix, name)
}

// ownerGamesIndexKey returns the Redis key for the SET of games owned by a player
func ownerGamesIndexKey(ownerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:owned_games:%s", keyPrefix, ownerID)
}

// membershipKey returns the Redis key for a Membership row
func membershipKey(playerID model.PlayerID, gameID model.GameID) string {
	return fmt.Sprintf("%s:membership:%s:%s", keyPrefix, gameID, playerID)
}

// gameMembersIndexKey returns the Redis key for the SET of player ids in a game
func gameMembersIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:members:%s", keyPrefix, gameID)
}

// playerGamesIndexKey returns the Redis key for the SET of game ids a player joined
func playerGamesIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_games:%s", keyPrefix, playerID)
}

// rollKey returns the Redis key for a DieRoll
func rollKey(id model.DieRollID) string {
	return fmt.Sprintf("%s:roll:%s", keyPrefix, id)
}

// gameRollsKey returns the Redis key for the ZSET of roll ids in a game,
// scored by creation time
func gameRollsKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:rolls:%s", keyPrefix, gameID)
}

// promptKey returns the Redis key for a RollPrompt
func promptKey(id model.PromptID) string {
	return fmt.Sprintf("%s:prompt:%s", keyPrefix, id)
}

// gamePromptsKey returns the Redis key for the ZSET of prompt ids in a game,
// scored by creation time
func gamePromptsKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:prompts:%s", keyPrefix, gameID)
}

// promptRollsIndexKey returns the Redis key for the SET of roll ids answering a prompt
func promptRollsIndexKey(id model.PromptID) string {
	return fmt.Sprintf("%s:idx:prompt_rolls:%s", keyPrefix, id)
}
