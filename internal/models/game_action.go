// internal/models/game_action.go
package models

import "github.com/google/uuid"

// GameActionRecord is one accepted game transition, as queued to Redis by the
// server and drained into Postgres by the historian.
type GameActionRecord struct {
	GameID   uuid.UUID `json:"gameId"`
	Seq      int       `json:"seq"`
	ActorID  uuid.UUID `json:"actorId"`
	Type     string    `json:"type"`
	CardID   uuid.UUID `json:"cardId,omitempty"`
	Color    string    `json:"color,omitempty"`
	SwapWith uuid.UUID `json:"swapWith,omitempty"`
	Message  string    `json:"message,omitempty"`
	TS       int64     `json:"ts"`
}

// GameResult is one player's row for a finished game.
type GameResult struct {
	GameID     uuid.UUID `json:"gameId"`
	PlayerID   uuid.UUID `json:"playerId"`
	Won        bool      `json:"won"`
	HandSize   int       `json:"handSize"`
	Eliminated bool      `json:"eliminated"`
}
