// internal/room/room_game.go
//
// Game lifecycle within a room: host-gated start and end, action relay into
// the rules engine, and per-viewer redacted broadcasts.
package room

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/engine"
	"github.com/wildstack/server/internal/models"
)

// Recorder receives accepted game transitions for history. Implementations
// must not block; a nil Recorder disables history.
type Recorder interface {
	RecordAction(gameID uuid.UUID, seq int, actorID uuid.UUID, action engine.Action, message string)
	RecordResult(gameID uuid.UUID, results []models.GameResult)
}

// SetRecorder assigns the history sink. Call at room creation, before any
// member joins.
func (r *Room) SetRecorder(rec Recorder) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.recorder = rec
}

// StartGame begins a game seated in join order. Only the host may start, the
// roster needs at least MinPlayersToStart members, and a room runs one game
// at a time. Returns false with a reason string on rejection.
func (r *Room) StartGame(actorID uuid.UUID) (bool, string) {
	r.Mu.Lock()

	if actorID != r.HostID {
		r.Mu.Unlock()
		return false, "Only the host can start the game."
	}
	if r.InGame {
		r.Mu.Unlock()
		return false, "A game is already running."
	}
	if len(r.order) < MinPlayersToStart {
		r.Mu.Unlock()
		return false, "Need at least 2 players to start."
	}

	playerIDs := append([]uuid.UUID(nil), r.order...)
	names := make(map[uuid.UUID]string, len(playerIDs))
	for _, id := range playerIDs {
		if conn, ok := r.Connections[id]; ok {
			names[id] = conn.Name
		}
	}

	r.engine = engine.New(rand.New(rand.NewSource(time.Now().UnixNano())))
	r.game = r.engine.NewGame(playerIDs, names)
	r.GameID = uuid.New()
	r.InGame = true
	r.actionSeq = 0

	payloads := r.gameStatePayloadsUnsafe()
	statePayload := r.roomStatePayloadUnsafe()
	r.Mu.Unlock()

	r.sendPerViewer(payloads)
	r.broadcast(statePayload)

	logrus.WithFields(logrus.Fields{
		"room":    r.Code,
		"game_id": r.GameID,
		"players": len(playerIDs),
	}).Info("game started")
	return true, ""
}

// ApplyGameAction routes one player action into the engine and broadcasts the
// successor state. The room lock serializes concurrent submissions; the
// engine sees strictly sequential actions.
func (r *Room) ApplyGameAction(actorID uuid.UUID, action engine.Action) {
	r.Mu.Lock()

	if !r.InGame || r.game == nil {
		r.Mu.Unlock()
		if conn, ok := r.connection(actorID); ok {
			conn.WriteError("No game in progress.")
		}
		return
	}

	r.game = r.engine.ApplyAction(r.game, actorID, action)
	accepted := r.game.Accepted
	if accepted {
		r.actionSeq++
	}
	seq := r.actionSeq
	gameID := r.GameID
	message := r.game.Message
	finished := r.game.GameOver
	rec := r.recorder

	var results []models.GameResult
	payloads := r.gameStatePayloadsUnsafe()
	var statePayload map[string]interface{}
	if finished {
		results = r.gameResultsUnsafe()
		r.InGame = false
		statePayload = r.roomStatePayloadUnsafe()
	}
	r.Mu.Unlock()

	// Rejections still broadcast (the actor needs the message) but carry no
	// history: only applied transitions get a sequence number and a record.
	if rec != nil && accepted {
		rec.RecordAction(gameID, seq, actorID, action, message)
		if finished {
			rec.RecordResult(gameID, results)
		}
	}

	r.sendPerViewer(payloads)
	if statePayload != nil {
		r.broadcast(statePayload)
	}
}

// EndGame stops a running game on the host's request.
func (r *Room) EndGame(actorID uuid.UUID) (bool, string) {
	r.Mu.Lock()

	if actorID != r.HostID {
		r.Mu.Unlock()
		return false, "Only the host can end the game."
	}
	if !r.InGame {
		r.Mu.Unlock()
		return false, "No game in progress."
	}
	r.stopGameUnsafe()
	statePayload := r.roomStatePayloadUnsafe()
	r.Mu.Unlock()

	r.broadcast(map[string]interface{}{
		"type":   "game_stopped",
		"reason": "host_ended",
	})
	r.broadcast(statePayload)
	return true, ""
}

// GameView returns the redacted view for one member of the running game.
func (r *Room) GameView(viewerID uuid.UUID) (engine.View, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.game == nil {
		return engine.View{}, false
	}
	return r.game.ViewFor(viewerID), true
}

// stopGameUnsafe tears down the running game. Lock held by caller.
func (r *Room) stopGameUnsafe() {
	r.InGame = false
	r.game = nil
	r.engine = nil
	r.GameID = uuid.Nil
}

// connection looks up a member's connection under the lock.
func (r *Room) connection(userID uuid.UUID) (*Connection, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	conn, ok := r.Connections[userID]
	return conn, ok
}

// gameResultsUnsafe builds one result row per seated player from the final
// game state. Lock held by caller.
func (r *Room) gameResultsUnsafe() []models.GameResult {
	results := make([]models.GameResult, 0, len(r.game.PlayerOrder))
	for _, pid := range r.game.PlayerOrder {
		results = append(results, models.GameResult{
			GameID:     r.GameID,
			PlayerID:   pid,
			Won:        pid == r.game.WinnerID && r.game.WinnerID != uuid.Nil,
			HandSize:   len(r.game.Hands[pid]),
			Eliminated: r.game.Eliminated[pid],
		})
	}
	return results
}

// gameStatePayloadsUnsafe derives one redacted payload per connected member.
// Lock held by caller.
func (r *Room) gameStatePayloadsUnsafe() map[*Connection]map[string]interface{} {
	out := make(map[*Connection]map[string]interface{}, len(r.Connections))
	if r.game == nil {
		return out
	}
	for id, conn := range r.Connections {
		out[conn] = gameStatePayload(r.game.ViewFor(id))
	}
	return out
}

// sendPerViewer delivers per-connection payloads prepared under the lock.
func (r *Room) sendPerViewer(payloads map[*Connection]map[string]interface{}) {
	for conn, payload := range payloads {
		conn.Write(payload)
	}
}

func gameStatePayload(v engine.View) map[string]interface{} {
	return map[string]interface{}{
		"type": "game_state",
		"view": v,
	}
}
