// internal/engine/state.go
package engine

import (
	"github.com/google/uuid"
)

// Tunable rule constants for the house variant.
const (
	// EliminationHandSize is the hand size at which a player is knocked out
	// of the turn rotation for the rest of the game.
	EliminationHandSize = 25

	// UNOPenaltyDraw is the penalty for reaching one card without pressing UNO.
	UNOPenaltyDraw = 2

	// StartingHandSize is dealt to each player at game creation.
	StartingHandSize = 7
)

// PendingDraw is an active forced-draw stack. The next actor must either
// extend it with a card of the same Kind or draw Amount cards and forfeit
// the turn. A zero value means no stack is active.
type PendingDraw struct {
	Kind   Kind `json:"kind,omitempty"`
	Amount int  `json:"amount"`
}

// AwaitingType discriminates the two sub-turn gates.
type AwaitingType string

const (
	AwaitWild  AwaitingType = "wild"
	AwaitSwap7 AwaitingType = "swap7"
)

// Awaiting is a sub-turn gate: the actor who just played a wild or a seven
// must submit a follow-up resolution before the turn advances. While set, it
// is the only action the engine accepts, and only from ActorID.
type Awaiting struct {
	Type    AwaitingType `json:"type"`
	ActorID uuid.UUID    `json:"actorId"`
	CardID  uuid.UUID    `json:"cardId"`
}

// GameState is the aggregate root for one game in progress. It is a value:
// every accepted action produces a fresh state and never mutates its input.
// The zero UUID stands in for "no winner".
type GameState struct {
	Deck         []Card                  `json:"-"`
	Discard      []Card                  `json:"discard"`
	Hands        map[uuid.UUID][]Card    `json:"-"`
	PlayerOrder  []uuid.UUID             `json:"playerOrder"`
	TurnIndex    int                     `json:"turnIndex"`
	Direction    int                     `json:"direction"`
	CurrentColor Color                   `json:"currentColor"`
	PendingDraw  PendingDraw             `json:"pendingDraw"`
	SaidUNO      map[uuid.UUID]bool      `json:"saidUNO"`
	Eliminated   map[uuid.UUID]bool      `json:"eliminated"`
	Message      string                  `json:"message"`
	GameOver     bool                    `json:"gameOver"`
	WinnerID     uuid.UUID               `json:"winnerId,omitempty"`
	NamesByID    map[uuid.UUID]string    `json:"namesById"`
	Awaiting     *Awaiting               `json:"awaiting,omitempty"`

	// Accepted reports whether the latest ApplyAction changed the game, as
	// opposed to a rejected or ignored submission. Transient: cleared on
	// Clone, set again by each accepting transition.
	Accepted bool `json:"-"`
}

// Clone returns a deep copy sharing no slices or maps with the receiver.
// Every transition operates on a clone so that rejected actions can hand the
// caller an untouched copy and accepted ones never alias the old state.
func (s *GameState) Clone() *GameState {
	c := &GameState{
		Deck:         append([]Card(nil), s.Deck...),
		Discard:      append([]Card(nil), s.Discard...),
		Hands:        make(map[uuid.UUID][]Card, len(s.Hands)),
		PlayerOrder:  append([]uuid.UUID(nil), s.PlayerOrder...),
		TurnIndex:    s.TurnIndex,
		Direction:    s.Direction,
		CurrentColor: s.CurrentColor,
		PendingDraw:  s.PendingDraw,
		SaidUNO:      make(map[uuid.UUID]bool, len(s.SaidUNO)),
		Eliminated:   make(map[uuid.UUID]bool, len(s.Eliminated)),
		Message:      s.Message,
		GameOver:     s.GameOver,
		WinnerID:     s.WinnerID,
		NamesByID:    make(map[uuid.UUID]string, len(s.NamesByID)),
	}
	for pid, hand := range s.Hands {
		c.Hands[pid] = append([]Card(nil), hand...)
	}
	for pid, v := range s.SaidUNO {
		c.SaidUNO[pid] = v
	}
	for pid, v := range s.Eliminated {
		c.Eliminated[pid] = v
	}
	for pid, name := range s.NamesByID {
		c.NamesByID[pid] = name
	}
	if s.Awaiting != nil {
		aw := *s.Awaiting
		c.Awaiting = &aw
	}
	return c
}

// CurrentPlayer returns the player occupying the turn slot.
func (s *GameState) CurrentPlayer() uuid.UUID {
	return s.PlayerOrder[s.TurnIndex]
}

// TopCard returns a copy of the top discard, or ok=false before the start
// card has been flipped.
func (s *GameState) TopCard() (Card, bool) {
	if len(s.Discard) == 0 {
		return Card{}, false
	}
	return s.Discard[len(s.Discard)-1], true
}

// topCardRef returns a mutable pointer into the discard pile. Only used on
// owned clones, to overwrite a resolved wild's color in place.
func (s *GameState) topCardRef() *Card {
	if len(s.Discard) == 0 {
		return nil
	}
	return &s.Discard[len(s.Discard)-1]
}

// ActiveCount is the number of players still in the turn rotation.
func (s *GameState) ActiveCount() int {
	n := 0
	for _, pid := range s.PlayerOrder {
		if !s.Eliminated[pid] {
			n++
		}
	}
	return n
}

// HasAnyPlayable reports whether pid holds at least one card playable against
// the current table state.
func (s *GameState) HasAnyPlayable(pid uuid.UUID) bool {
	top, _ := s.TopCard()
	hasTop := len(s.Discard) > 0
	for _, c := range s.Hands[pid] {
		if canPlayAgainst(c, top, hasTop, s.CurrentColor, s.PendingDraw) {
			return true
		}
	}
	return false
}

// SwapTargets lists the players pid may swap hands with after playing a
// seven: everyone else still in the rotation.
func (s *GameState) SwapTargets(pid uuid.UUID) []uuid.UUID {
	var targets []uuid.UUID
	for _, other := range s.PlayerOrder {
		if other != pid && !s.Eliminated[other] {
			targets = append(targets, other)
		}
	}
	return targets
}

// displayName resolves a player's display name, falling back to the raw ID.
func (s *GameState) displayName(pid uuid.UUID) string {
	if name, ok := s.NamesByID[pid]; ok && name != "" {
		return name
	}
	return pid.String()
}
