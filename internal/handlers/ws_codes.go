// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes for room connections, beyond the standard
// range. Clients key reconnect behavior off these.
const (
	CloseBadSubprotocol websocket.StatusCode = 3000 // client did not speak the room subprotocol
	CloseBadName        websocket.StatusCode = 3001 // display name failed validation
	CloseUnknownRoom    websocket.StatusCode = 3002 // join code does not match a live room
)
