// internal/handlers/room.go
package handlers

import (
	"net/http"
)

type roomSummary struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	InGame  bool   `json:"inGame"`
}

// CreateRoomHandler mints a room and returns its join code. The caller gets
// a guest identity if they have none; whoever connects first becomes host.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.EnsureGuestUser(w, r); err != nil {
		s.Logger.WithError(err).Error("guest identity failed")
		http.Error(w, "could not establish identity", http.StatusInternalServerError)
		return
	}

	rm := s.Rooms.CreateRoom()
	rm.SetRecorder(s.recorder())
	writeJSON(w, http.StatusCreated, map[string]string{"code": rm.Code})
}

// ListRoomsHandler returns a summary of all live rooms.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries := []roomSummary{}
	for _, rm := range s.Rooms.List() {
		code, players, inGame := rm.Summary()
		summaries = append(summaries, roomSummary{
			Code:    code,
			Players: players,
			InGame:  inGame,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": summaries})
}
