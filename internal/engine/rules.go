// internal/engine/rules.go
package engine

// CanPlay is the single playability predicate: may card be placed given the
// current top card, active color, and pending draw stack. It is pure and is
// also safe for callers outside the reducer (e.g. to highlight legal moves).
//
// An active stack is an absolute gate: only cards of the stack's own kind
// extend it. That gate overrides the usual "wild is always playable" rule, so
// a plain wild cannot be dropped on a draw2 stack and a wild_draw4 can only
// extend a wild_draw4 stack.
func CanPlay(card Card, top Card, currentColor Color, pending PendingDraw) bool {
	return canPlayAgainst(card, top, true, currentColor, pending)
}

// canPlayAgainst is CanPlay plus the "no top card yet" case that only occurs
// while the start card is being flipped.
func canPlayAgainst(card Card, top Card, hasTop bool, currentColor Color, pending PendingDraw) bool {
	if pending.Amount > 0 {
		return card.Kind == pending.Kind
	}
	if card.IsWildFamily() {
		return true
	}
	if !hasTop {
		return true
	}
	if card.Color == currentColor {
		return true
	}
	if card.Kind == KindNumber && top.Kind == KindNumber && card.Value == top.Value {
		return true
	}
	if card.Kind != KindNumber && top.Kind == card.Kind {
		return true
	}
	return false
}
