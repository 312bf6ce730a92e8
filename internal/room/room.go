// internal/room/room.go
package room

import (
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/engine"
)

const (
	// ChatHistoryLimit bounds the retained chat backlog per room.
	ChatHistoryLimit = 100

	// ChatMessageLimit is the maximum accepted chat message length in runes.
	ChatMessageLimit = 200

	// MinPlayersToStart is the smallest roster a host can start a game with.
	MinPlayersToStart = 2
)

// nameRe validates display names: 2 to 16 alphanumerics.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9]{2,16}$`)

// ValidName reports whether name is an acceptable display name.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// ChatMessage is one retained chat entry.
type ChatMessage struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Text   string    `json:"text"`
	TS     int64     `json:"ts"`
}

// Connection is a single user's live presence in a room. Out carries
// outbound payloads to the user's write pump; writes never block the room.
// Out is never closed: Cancel ends the write pump, so a broadcast racing a
// removal writes into an abandoned buffer instead of panicking.
type Connection struct {
	UserID uuid.UUID
	Name   string
	Cancel func()
	Out    chan map[string]interface{}
}

// Write pushes a payload onto the connection's outbound channel without
// blocking. A full or abandoned channel drops the payload.
func (c *Connection) Write(msg map[string]interface{}) {
	select {
	case c.Out <- msg:
	default:
		msgType, _ := msg["type"].(string)
		logrus.WithFields(logrus.Fields{
			"user_id": c.UserID,
			"type":    msgType,
		}).Warn("room connection outbound channel full, dropping message")
	}
}

// WriteError sends an error payload to this connection only.
func (c *Connection) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

// Room is an ephemeral gathering of players around at most one running game.
// Code is the six-character join code players type in.
//
// Mu serializes every state transition in the room, including all engine
// ApplyAction calls for its game; the engine itself assumes a single writer
// per game.
type Room struct {
	Code   string    `json:"code"`
	HostID uuid.UUID `json:"hostId"`

	// Connections holds live members; order preserves join sequence and
	// decides host succession and game seating.
	Connections map[uuid.UUID]*Connection `json:"-"`
	order       []uuid.UUID

	Chat []ChatMessage `json:"-"`

	InGame bool      `json:"inGame"`
	GameID uuid.UUID `json:"gameId,omitempty"`

	engine    *engine.Engine
	game      *engine.GameState
	actionSeq int
	recorder  Recorder

	// OnEmpty fires after the last member leaves. Assigned by the store
	// that owns this room, to delete it.
	OnEmpty func(code string) `json:"-"`

	Mu sync.Mutex
}

// New builds an empty room with the given join code.
func New(code string) *Room {
	return &Room{
		Code:        code,
		Connections: make(map[uuid.UUID]*Connection),
	}
}

// AddConnection registers a member. The first member becomes host. A second
// connection for the same user replaces the first; the stale connection's
// context is cancelled, which ends its pumps.
func (r *Room) AddConnection(userID uuid.UUID, conn *Connection) {
	r.Mu.Lock()

	if old, ok := r.Connections[userID]; ok && old != conn {
		if old.Cancel != nil {
			old.Cancel()
		}
	} else if !ok {
		r.order = append(r.order, userID)
	}
	r.Connections[userID] = conn
	if r.HostID == uuid.Nil {
		r.HostID = userID
	}

	statePayload := r.roomStatePayloadUnsafe()
	chatPayload := r.chatPayloadUnsafe()
	var viewPayload map[string]interface{}
	if r.InGame && r.game != nil {
		viewPayload = gameStatePayload(r.game.ViewFor(userID))
	}
	r.Mu.Unlock()

	conn.Write(chatPayload)
	if viewPayload != nil {
		conn.Write(viewPayload)
	}
	r.broadcast(statePayload)

	logrus.WithFields(logrus.Fields{
		"room":    r.Code,
		"user_id": userID,
		"name":    conn.Name,
	}).Info("room member joined")
}

// RemoveConnection drops a member, but only while conn is still that user's
// live connection. A handler unwinding after its connection was replaced
// finds the replacement in the seat and leaves the room untouched. On a real
// departure any running game stops, the host role passes to the earliest
// remaining joiner, and OnEmpty fires if the room drained.
func (r *Room) RemoveConnection(conn *Connection) {
	userID := conn.UserID
	r.Mu.Lock()

	if r.Connections[userID] != conn {
		r.Mu.Unlock()
		return
	}
	delete(r.Connections, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if conn.Cancel != nil {
		conn.Cancel()
	}

	var payloads []map[string]interface{}
	if r.InGame {
		// A mid-game departure invalidates the table; the game does not
		// limp on with a vacated seat.
		r.stopGameUnsafe()
		payloads = append(payloads, map[string]interface{}{
			"type":   "game_stopped",
			"reason": "player_left",
		})
	}
	if r.HostID == userID {
		r.HostID = uuid.Nil
		if len(r.order) > 0 {
			r.HostID = r.order[0]
		}
	}

	payloads = append(payloads, r.roomStatePayloadUnsafe())
	isEmpty := len(r.Connections) == 0
	onEmpty := r.OnEmpty
	r.Mu.Unlock()

	for _, p := range payloads {
		r.broadcast(p)
	}

	logrus.WithFields(logrus.Fields{
		"room":    r.Code,
		"user_id": userID,
	}).Info("room member left")

	if isEmpty && onEmpty != nil {
		onEmpty(r.Code)
	}
}

// AppendChat validates, records, and broadcasts one chat message from userID.
// Oversized messages are truncated to the rune limit; the backlog keeps only
// the newest entries.
func (r *Room) AppendChat(userID uuid.UUID, text string) {
	if text == "" {
		return
	}
	if runes := []rune(text); len(runes) > ChatMessageLimit {
		text = string(runes[:ChatMessageLimit])
	}

	r.Mu.Lock()
	conn, ok := r.Connections[userID]
	if !ok {
		r.Mu.Unlock()
		return
	}
	r.Chat = append(r.Chat, ChatMessage{
		UserID: userID,
		Name:   conn.Name,
		Text:   text,
		TS:     time.Now().Unix(),
	})
	if len(r.Chat) > ChatHistoryLimit {
		r.Chat = r.Chat[len(r.Chat)-ChatHistoryLimit:]
	}
	payload := r.chatPayloadUnsafe()
	r.Mu.Unlock()

	r.broadcast(payload)
}

// Members returns the current member IDs in join order.
func (r *Room) Members() []uuid.UUID {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return append([]uuid.UUID(nil), r.order...)
}

// MemberCount returns the number of live connections.
func (r *Room) MemberCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.Connections)
}

// Summary returns the join code, member count, and game status atomically.
func (r *Room) Summary() (code string, members int, inGame bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.Code, len(r.Connections), r.InGame
}

// broadcast fans a payload out to every member. Acquires the lock only to
// snapshot the connection set; Write itself never blocks.
func (r *Room) broadcast(msg map[string]interface{}) {
	r.Mu.Lock()
	conns := make([]*Connection, 0, len(r.Connections))
	for _, c := range r.Connections {
		conns = append(conns, c)
	}
	r.Mu.Unlock()

	for _, c := range conns {
		c.Write(msg)
	}
}

// roomStatePayloadUnsafe snapshots room membership. Lock held by caller.
func (r *Room) roomStatePayloadUnsafe() map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(r.order))
	for _, id := range r.order {
		conn, ok := r.Connections[id]
		if !ok {
			continue
		}
		players = append(players, map[string]interface{}{
			"id":     id.String(),
			"name":   conn.Name,
			"isHost": id == r.HostID,
		})
	}
	return map[string]interface{}{
		"type":    "room_state",
		"code":    r.Code,
		"hostId":  r.HostID.String(),
		"inGame":  r.InGame,
		"players": players,
	}
}

// chatPayloadUnsafe snapshots the chat backlog. Lock held by caller.
func (r *Room) chatPayloadUnsafe() map[string]interface{} {
	msgs := append([]ChatMessage(nil), r.Chat...)
	return map[string]interface{}{
		"type":     "chat_update",
		"messages": msgs,
	}
}
