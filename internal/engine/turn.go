// internal/engine/turn.go
package engine

// nextIndex advances from by steps in the current direction, wrapping around
// the player order.
func (s *GameState) nextIndex(from, steps int) int {
	n := len(s.PlayerOrder)
	raw := (from + s.Direction*steps) % n
	return (raw + n) % n
}

// findNextActiveIndex advances from by steps (1 for a normal turn, 2 for a
// skip), then walks one seat at a time past eliminated players. The guard
// bounds the walk to one full lap so an all-eliminated roster, which win
// detection should make unreachable, cannot loop forever.
func (s *GameState) findNextActiveIndex(from, steps int) int {
	idx := s.nextIndex(from, steps)
	for guard := 0; guard < len(s.PlayerOrder); guard++ {
		if !s.Eliminated[s.PlayerOrder[idx]] {
			return idx
		}
		idx = s.nextIndex(idx, 1)
	}
	return idx
}
