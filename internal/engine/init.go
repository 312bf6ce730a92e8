// internal/engine/init.go
package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Engine owns the randomness used for shuffling. Everything else about the
// rules is stateless: the same (state, actor, action) triple always yields
// the same result apart from shuffle order. One Engine per game keeps
// concurrent games fully independent.
type Engine struct {
	rng *rand.Rand
}

// New builds an Engine around the given random source. A nil source gets a
// time-seeded one; tests pass a fixed seed for reproducible shuffles.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// NewGame constructs a fresh game for the given roster: shuffles a new
// 68-card deck, deals 7 cards to each player round-robin, flips a non-wild
// start card (requeuing any wild drawn during the search at the back of the
// deck), and sets the current color from that card. Callers must supply at
// least 2 player IDs; below that the game is degenerate.
func (e *Engine) NewGame(playerIDs []uuid.UUID, namesByID map[uuid.UUID]string) *GameState {
	s := &GameState{
		Deck:         e.shuffled(NewDeck()),
		Discard:      []Card{},
		Hands:        make(map[uuid.UUID][]Card, len(playerIDs)),
		PlayerOrder:  append([]uuid.UUID(nil), playerIDs...),
		TurnIndex:    0,
		Direction:    1,
		CurrentColor: ColorRed,
		SaidUNO:      make(map[uuid.UUID]bool, len(playerIDs)),
		Eliminated:   make(map[uuid.UUID]bool, len(playerIDs)),
		Message:      "Game started!",
		NamesByID:    make(map[uuid.UUID]string, len(namesByID)),
	}
	for _, pid := range playerIDs {
		s.Hands[pid] = []Card{}
		s.SaidUNO[pid] = false
		s.Eliminated[pid] = false
	}
	for pid, name := range namesByID {
		s.NamesByID[pid] = name
	}

	for i := 0; i < StartingHandSize; i++ {
		for _, pid := range playerIDs {
			if card, ok := e.drawOne(s); ok {
				s.Hands[pid] = append(s.Hands[pid], card)
			}
		}
	}

	// Flip the start card. Wilds go to the back of the deck and the search
	// continues; one pass over the deck bounds the loop even if every
	// remaining card is wild.
	var start *Card
	for scanned, limit := 0, len(s.Deck); scanned < limit; scanned++ {
		card, ok := e.drawOne(s)
		if !ok {
			break
		}
		if !card.IsWildFamily() {
			start = &card
			break
		}
		s.Deck = append(s.Deck, card)
	}
	if start == nil {
		// Pathological: nothing but wilds left. Use one anyway; the current
		// color stays at its red default. Cards are never fabricated.
		if card, ok := e.drawOne(s); ok {
			start = &card
		}
	}
	if start != nil {
		s.Discard = append(s.Discard, *start)
		if IsPlayColor(start.Color) {
			s.CurrentColor = start.Color
		}
	}
	return s
}
