// internal/engine/elimination.go
package engine

import "github.com/google/uuid"

// applyElimination knocks pid out of the rotation if their hand has reached
// the threshold, then checks for a last-player-standing win. Elimination is
// monotonic; the flag is never cleared. Mutates the receiver, which must be
// an owned clone.
func (s *GameState) applyElimination(pid uuid.UUID) {
	if !s.Eliminated[pid] && len(s.Hands[pid]) >= EliminationHandSize {
		s.Eliminated[pid] = true
		s.Message = "Player eliminated (25+ cards)!"
	}
	if s.ActiveCount() <= 1 {
		var winner uuid.UUID
		for _, p := range s.PlayerOrder {
			if !s.Eliminated[p] {
				winner = p
				break
			}
		}
		s.GameOver = true
		s.WinnerID = winner
		if winner != uuid.Nil {
			s.Message = "Winner by last standing!"
		} else {
			s.Message = "Game over."
		}
	}
}
