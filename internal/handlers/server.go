// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/auth"
	"github.com/wildstack/server/internal/cache"
	"github.com/wildstack/server/internal/database"
	"github.com/wildstack/server/internal/room"
)

// Server bundles the dependencies of all HTTP and WebSocket handlers. DB and
// History are optional; nil disables accounts and action history while guest
// rooms keep working.
type Server struct {
	Logger  *logrus.Logger
	Keyring *auth.Keyring
	Rooms   *room.Store
	DB      *database.Store
	History *cache.Queue
}

// NewServer wires a Server around its collaborators.
func NewServer(logger *logrus.Logger, keyring *auth.Keyring, db *database.Store, history *cache.Queue) *Server {
	return &Server{
		Logger:  logger,
		Keyring: keyring,
		Rooms:   room.NewStore(),
		DB:      db,
		History: history,
	}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/create", s.CreateUserHandler)
	mux.HandleFunc("/user/login", s.LoginHandler)
	mux.HandleFunc("/room/create", s.CreateRoomHandler)
	mux.HandleFunc("/room/list", s.ListRoomsHandler)
	mux.HandleFunc("/room/ws/", s.RoomWSHandler)
	return mux
}
