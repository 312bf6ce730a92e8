// internal/engine/deck.go
package engine

import "github.com/google/uuid"

// shuffled returns a uniformly random permutation of cards (Fisher-Yates via
// the injected source) without touching the input slice.
func (e *Engine) shuffled(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	e.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// drawOne removes and returns the front card of the deck. When the deck is
// empty, everything in the discard pile except its top card is reshuffled
// into a fresh deck first; this is the only path by which discarded cards
// re-enter circulation. Returns ok=false when deck and discard are both
// exhausted (discard holds at most the top card). Mutates s, which must be
// an owned clone.
func (e *Engine) drawOne(s *GameState) (Card, bool) {
	if len(s.Deck) == 0 {
		if len(s.Discard) <= 1 {
			return Card{}, false
		}
		top := s.Discard[len(s.Discard)-1]
		s.Deck = e.shuffled(s.Discard[:len(s.Discard)-1])
		s.Discard = []Card{top}
	}
	card := s.Deck[0]
	s.Deck = s.Deck[1:]
	return card, true
}

// drawMany draws up to count cards into pid's hand, stopping early on
// exhaustion, and always finishes with an elimination/win check for pid.
func (e *Engine) drawMany(s *GameState, pid uuid.UUID, count int) {
	for i := 0; i < count; i++ {
		card, ok := e.drawOne(s)
		if !ok {
			break
		}
		s.Hands[pid] = append(s.Hands[pid], card)
	}
	s.applyElimination(pid)
}
