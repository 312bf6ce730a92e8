// internal/handlers/room_ws.go
//
// The room WebSocket endpoint: accept, authenticate, join, then pump
// messages. One read pump and one write pump per connection; all room and
// game mutations happen through the room's own methods, which serialize on
// the room mutex.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/engine"
	"github.com/wildstack/server/internal/room"
)

// RoomWSHandler serves /room/ws/{code}?name={displayName} with the "room"
// subprotocol.
func (s *Server) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/room/ws/")
	if code == "" || strings.Contains(code, "/") {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	rm, exists := s.Rooms.Get(code)
	name := r.URL.Query().Get("name")

	// Identity is resolved before the upgrade so the guest cookie can still
	// be set on the handshake response.
	userID, err := s.EnsureGuestUser(w, r)
	if err != nil {
		s.Logger.WithError(err).Warn("guest identity failed on ws upgrade")
		http.Error(w, "could not establish identity", http.StatusInternalServerError)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"room"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.WithError(err).Warn("websocket accept failed")
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != "room" {
		c.Close(CloseBadSubprotocol, "client must speak the room subprotocol")
		return
	}
	if !exists {
		c.Close(CloseUnknownRoom, "room not found")
		return
	}
	if !room.ValidName(name) {
		c.Close(CloseBadName, "name must be 2-16 alphanumerics")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	conn := &room.Connection{
		UserID: userID,
		Name:   name,
		Cancel: cancel,
		Out:    make(chan map[string]interface{}, 32),
	}
	rm.AddConnection(userID, conn)

	s.Logger.WithFields(logrus.Fields{
		"room":    rm.Code,
		"user_id": userID,
		"remote":  r.RemoteAddr,
	}).Info("websocket connected")

	go s.writePump(ctx, c, conn)
	s.readPump(ctx, c, rm, conn)

	rm.RemoveConnection(conn)
	s.Logger.WithFields(logrus.Fields{
		"room":    rm.Code,
		"user_id": userID,
	}).Info("websocket disconnected")
}

// writePump drains the connection's outbound channel onto the wire. The
// channel stays open for the connection's lifetime; cancelling the context
// is the only way to end the pump.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, conn *room.Connection) {
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "connection replaced or room closed")
			return
		case msg := <-conn.Out:
			data, err := json.Marshal(msg)
			if err != nil {
				s.Logger.WithError(err).Warn("failed to marshal outbound payload")
				continue
			}
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

// readPump consumes client messages until the connection drops.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, rm *room.Room, conn *room.Connection) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				s.Logger.WithError(err).WithField("user_id", conn.UserID).Debug("websocket read ended")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet wsPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			conn.WriteError("Invalid JSON.")
			continue
		}
		s.handleRoomMessage(rm, conn, packet)
	}
}

// wsPacket is the envelope for every client-to-server message.
type wsPacket struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Action json.RawMessage `json:"action,omitempty"`
}

// wsAction mirrors engine.Action with wire-friendly string IDs.
type wsAction struct {
	Type        string `json:"type"`
	CardID      string `json:"cardId,omitempty"`
	ChosenColor string `json:"chosenColor,omitempty"`
	SwapWith    string `json:"swapWith,omitempty"`
}

// handleRoomMessage dispatches one inbound packet.
func (s *Server) handleRoomMessage(rm *room.Room, conn *room.Connection, packet wsPacket) {
	switch packet.Type {
	case "chat_send":
		rm.AppendChat(conn.UserID, packet.Text)

	case "game_start":
		if ok, reason := rm.StartGame(conn.UserID); !ok {
			conn.WriteError(reason)
		}

	case "game_end":
		if ok, reason := rm.EndGame(conn.UserID); !ok {
			conn.WriteError(reason)
		}

	case "game_action":
		action, err := parseGameAction(packet.Action)
		if err != nil {
			conn.WriteError("Invalid game action.")
			return
		}
		rm.ApplyGameAction(conn.UserID, action)

	case "ping":
		conn.Write(map[string]interface{}{"type": "pong"})

	default:
		conn.WriteError("Unknown message type.")
	}
}

// parseGameAction decodes the wire action into an engine action. Unknown
// action types pass through; the engine treats them as a no-op.
func parseGameAction(raw json.RawMessage) (engine.Action, error) {
	var wa wsAction
	if err := json.Unmarshal(raw, &wa); err != nil {
		return engine.Action{}, err
	}
	action := engine.Action{
		Type:        engine.ActionType(wa.Type),
		ChosenColor: engine.Color(wa.ChosenColor),
	}
	if wa.CardID != "" {
		id, err := uuid.Parse(wa.CardID)
		if err != nil {
			return engine.Action{}, err
		}
		action.CardID = id
	}
	if wa.SwapWith != "" {
		id, err := uuid.Parse(wa.SwapWith)
		if err != nil {
			return engine.Action{}, err
		}
		action.SwapWith = id
	}
	return action, nil
}
