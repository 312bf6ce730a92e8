// internal/engine/view.go
package engine

import "github.com/google/uuid"

// ViewPlayer is one player's row in a redacted snapshot. Hand is populated
// only for the viewer's own row; everyone else shows a count.
type ViewPlayer struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	HandSize      int       `json:"handSize"`
	Hand          []Card    `json:"hand,omitempty"`
	Eliminated    bool      `json:"eliminated"`
	SaidUNO       bool      `json:"saidUNO"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
}

// View is the game state as broadcast to one participant: full table
// information, own hand revealed, other hands reduced to sizes.
type View struct {
	YourID       uuid.UUID    `json:"yourId"`
	Players      []ViewPlayer `json:"players"`
	DeckSize     int          `json:"deckSize"`
	DiscardSize  int          `json:"discardSize"`
	DiscardTop   *Card        `json:"discardTop,omitempty"`
	CurrentColor Color        `json:"currentColor"`
	Direction    int          `json:"direction"`
	PendingDraw  PendingDraw  `json:"pendingDraw"`
	Awaiting     *Awaiting    `json:"awaiting,omitempty"`
	Message      string       `json:"message"`
	GameOver     bool         `json:"gameOver"`
	WinnerID     uuid.UUID    `json:"winnerId,omitempty"`
}

// ViewFor derives the redacted snapshot for one viewer. Pure: the returned
// value shares no mutable data with the state.
func (s *GameState) ViewFor(viewer uuid.UUID) View {
	v := View{
		YourID:       viewer,
		DeckSize:     len(s.Deck),
		DiscardSize:  len(s.Discard),
		CurrentColor: s.CurrentColor,
		Direction:    s.Direction,
		PendingDraw:  s.PendingDraw,
		Message:      s.Message,
		GameOver:     s.GameOver,
		WinnerID:     s.WinnerID,
	}
	if top, ok := s.TopCard(); ok {
		topCopy := top
		v.DiscardTop = &topCopy
	}
	if s.Awaiting != nil {
		aw := *s.Awaiting
		v.Awaiting = &aw
	}
	for i, pid := range s.PlayerOrder {
		vp := ViewPlayer{
			ID:            pid,
			Name:          s.displayName(pid),
			HandSize:      len(s.Hands[pid]),
			Eliminated:    s.Eliminated[pid],
			SaidUNO:       s.SaidUNO[pid],
			IsCurrentTurn: i == s.TurnIndex && !s.GameOver,
		}
		if pid == viewer {
			vp.Hand = append([]Card(nil), s.Hands[pid]...)
		}
		v.Players = append(v.Players, vp)
	}
	return v
}
