// internal/engine/actions.go
//
// The action state machine: one entry point, ApplyAction, that validates and
// applies a single player action against a single game state and returns the
// next state. Rule violations are soft: the caller always gets back a valid
// state, unchanged except for an explanatory Message.
package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActionType tags the recognized action variants.
type ActionType string

const (
	ActionUno          ActionType = "uno"
	ActionDraw         ActionType = "draw"
	ActionPlay         ActionType = "play"
	ActionResolveWild  ActionType = "resolve:wild"
	ActionResolveSwap7 ActionType = "resolve:swap7"
)

// Action is one intended move. CardID accompanies "play", ChosenColor
// accompanies "resolve:wild", SwapWith accompanies "resolve:swap7".
type Action struct {
	Type        ActionType `json:"type"`
	CardID      uuid.UUID  `json:"cardId,omitempty"`
	ChosenColor Color      `json:"chosenColor,omitempty"`
	SwapWith    uuid.UUID  `json:"swapWith,omitempty"`
}

// ApplyAction produces the successor state for one submitted action. It never
// mutates state; accepted and rejected actions alike return a fresh value,
// with Accepted set on the result only when the action applied.
//
// Guard order: a finished game swallows everything; an open awaiting gate
// accepts only the matching resolution from the awaited actor; otherwise the
// actor must hold the turn.
func (e *Engine) ApplyAction(state *GameState, actorID uuid.UUID, action Action) *GameState {
	s := state.Clone()
	if s.GameOver {
		return s
	}
	if s.Awaiting != nil {
		return e.resolveAwaiting(s, actorID, action)
	}
	if actorID != s.CurrentPlayer() {
		s.Message = "Not your turn."
		return s
	}
	if s.Eliminated[actorID] {
		// Stale submission from a knocked-out player on what used to be
		// their turn slot. Dropped silently.
		return s
	}

	switch action.Type {
	case ActionUno:
		s.SaidUNO[actorID] = true
		s.Accepted = true
		s.Message = "UNO pressed."
		return s
	case ActionDraw:
		return e.applyDraw(s, actorID)
	case ActionPlay:
		return e.applyPlay(s, actorID, action.CardID)
	}
	// Unrecognized or out-of-phase action type: no change.
	return s
}

// resolveAwaiting handles the two sub-turn gates. s is an owned clone with
// s.Awaiting non-nil.
func (e *Engine) resolveAwaiting(s *GameState, actorID uuid.UUID, action Action) *GameState {
	aw := s.Awaiting
	if actorID != aw.ActorID {
		s.Message = "Waiting for another player's choice."
		return s
	}

	switch aw.Type {
	case AwaitWild:
		if action.Type != ActionResolveWild {
			s.Message = "Choose a color for the Wild first."
			return s
		}
		if !IsPlayColor(action.ChosenColor) {
			s.Message = "Choose a valid color."
			return s
		}
		s.Accepted = true
		// Recolor the wild on the pile so the table shows the chosen color.
		if top := s.topCardRef(); top != nil && top.ID == aw.CardID {
			top.Color = action.ChosenColor
		}
		s.CurrentColor = action.ChosenColor
		s.Awaiting = nil
		s.Message = fmt.Sprintf("Wild color chosen: %s.", strings.ToUpper(string(action.ChosenColor)))
		return e.endTurn(s, actorID, 1)

	case AwaitSwap7:
		if action.Type != ActionResolveSwap7 {
			s.Message = "Choose a player to swap hands with."
			return s
		}
		target := action.SwapWith
		if _, exists := s.Hands[target]; !exists || target == actorID || s.Eliminated[target] {
			s.Message = "Choose a valid player to swap with."
			return s
		}
		s.Accepted = true
		s.Hands[actorID], s.Hands[target] = s.Hands[target], s.Hands[actorID]
		// Hand contents changed for both sides, so any standing UNO
		// declaration is void.
		s.SaidUNO[actorID] = false
		s.SaidUNO[target] = false
		s.Awaiting = nil
		s.Message = fmt.Sprintf("Swapped hands with %s.", s.displayName(target))
		return e.endTurn(s, actorID, 1)
	}
	return s
}

// applyDraw covers the three draw situations: absorbing a pending stack,
// forced draw-until-playable, and the voluntary single draw.
func (e *Engine) applyDraw(s *GameState, actorID uuid.UUID) *GameState {
	// Every draw path resolves the turn somehow, even deck exhaustion.
	s.Accepted = true

	if s.PendingDraw.Amount > 0 {
		total := s.PendingDraw.Amount
		e.drawMany(s, actorID, total)
		s.PendingDraw = PendingDraw{}
		if s.GameOver {
			return s
		}
		s.Message = fmt.Sprintf("Drew %d (stack) and lost the turn.", total)
		return e.endTurn(s, actorID, 1)
	}

	if !s.HasAnyPlayable(actorID) {
		// Nothing playable: draw until a drawn card is itself playable, then
		// auto-play it. Bounded by the finite card population; each
		// iteration either consumes a card or exits on exhaustion.
		for {
			card, ok := e.drawOne(s)
			if !ok {
				s.Message = "No playable cards and the deck is empty."
				return e.endTurn(s, actorID, 1)
			}
			s.Hands[actorID] = append(s.Hands[actorID], card)
			s.applyElimination(actorID)
			if s.GameOver {
				return s
			}
			top, _ := s.TopCard()
			if CanPlay(card, top, s.CurrentColor, s.PendingDraw) {
				// Auto-play, with all normal play effects. A wild or seven
				// re-enters an awaiting gate; no color or target is chosen
				// on the player's behalf.
				after := e.applyPlay(s, actorID, card.ID)
				after.Message = fmt.Sprintf("Drew until playable and played %s. %s", card.Label(), after.Message)
				return after
			}
		}
	}

	e.drawMany(s, actorID, 1)
	if s.GameOver {
		return s
	}
	s.Message = "Drew a card."
	return e.endTurn(s, actorID, 1)
}

// applyPlay validates and applies playing the named card. s is an owned
// clone; nothing is mutated until the play is validated.
func (e *Engine) applyPlay(s *GameState, actorID uuid.UUID, cardID uuid.UUID) *GameState {
	hand := s.Hands[actorID]
	idx := -1
	for i, c := range hand {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.Message = "Card not found."
		return s
	}
	card := hand[idx]
	top, _ := s.TopCard()
	if !CanPlay(card, top, s.CurrentColor, s.PendingDraw) {
		s.Message = "You can't play that card."
		return s
	}
	s.Accepted = true

	newHand := make([]Card, 0, len(hand)-1)
	newHand = append(newHand, hand[:idx]...)
	newHand = append(newHand, hand[idx+1:]...)
	s.Hands[actorID] = newHand
	s.Discard = append(s.Discard, card)

	if !card.IsWildFamily() {
		s.CurrentColor = card.Color
	}

	if card.IsWildFamily() {
		// A wild draw four stacks immediately; the gate in CanPlay
		// guarantees any existing stack is already wild_draw4-kinded.
		if card.Kind.IsDrawKind() {
			s.PendingDraw = PendingDraw{Kind: card.Kind, Amount: s.PendingDraw.Amount + card.Kind.DrawAmount()}
		}
		s.Awaiting = &Awaiting{Type: AwaitWild, ActorID: actorID, CardID: card.ID}
		s.Message = "Choose a color for the Wild."
		return s
	}

	if card.Kind == KindNumber && card.Value == 7 {
		if len(s.SwapTargets(actorID)) > 0 {
			s.Awaiting = &Awaiting{Type: AwaitSwap7, ActorID: actorID, CardID: card.ID}
			s.Message = "Choose a player to swap hands with."
			return s
		}
		// No one left to swap with; the seven plays out as a plain number.
	}

	skipNext := false
	msg := fmt.Sprintf("Played %s.", card.Label())
	switch card.Kind {
	case KindSkip:
		skipNext = true
		msg += " (skip)"
	case KindReverse:
		s.Direction = -s.Direction
		if len(s.PlayerOrder) == 2 {
			// With two players a reverse hands the turn straight back.
			skipNext = true
		}
		msg += " (reverse)"
	case KindDraw2, KindDraw6, KindDraw10:
		s.PendingDraw = PendingDraw{Kind: card.Kind, Amount: s.PendingDraw.Amount + card.Kind.DrawAmount()}
		msg += fmt.Sprintf(" (stack +%d)", s.PendingDraw.Amount)
	}

	if len(s.Hands[actorID]) == 0 {
		s.GameOver = true
		s.WinnerID = actorID
		s.Message = "Winner!"
		return s
	}

	if len(s.Hands[actorID]) == 1 && !s.SaidUNO[actorID] {
		e.drawMany(s, actorID, UNOPenaltyDraw)
		if s.GameOver {
			return s
		}
		s.Message = fmt.Sprintf("%s UNO not called, drew %d penalty.", msg, UNOPenaltyDraw)
		steps := 1
		if skipNext {
			steps = 2
		}
		return e.endTurn(s, actorID, steps)
	}

	s.Message = msg
	steps := 1
	if skipNext {
		steps = 2
	}
	return e.endTurn(s, actorID, steps)
}

// endTurn resets the actor's UNO flag and hands the turn to the next active
// player, steps seats away.
func (e *Engine) endTurn(s *GameState, actorID uuid.UUID, steps int) *GameState {
	s.SaidUNO[actorID] = false
	s.TurnIndex = s.findNextActiveIndex(s.TurnIndex, steps)
	return s
}
