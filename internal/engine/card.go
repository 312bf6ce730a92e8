// internal/engine/card.go
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Color is a card color. Wild-family cards carry ColorWild until a color is
// chosen for them, at which point their Color field is overwritten in place
// on the discard pile.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "wild"
)

// PlayColors lists the four colors a wild may resolve to, in deck order.
var PlayColors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// IsPlayColor reports whether c is one of the four named colors.
func IsPlayColor(c Color) bool {
	for _, pc := range PlayColors {
		if c == pc {
			return true
		}
	}
	return false
}

// Kind identifies a card's behavior.
type Kind string

const (
	KindNumber    Kind = "num"
	KindSkip      Kind = "skip"
	KindReverse   Kind = "reverse"
	KindDraw2     Kind = "draw2"
	KindDraw6     Kind = "draw6"
	KindDraw10    Kind = "draw10"
	KindWild      Kind = "wild"
	KindWildDraw4 Kind = "wild_draw4"
)

// IsDrawKind reports whether playing this kind adds to the pending draw stack.
func (k Kind) IsDrawKind() bool {
	switch k {
	case KindDraw2, KindDraw6, KindDraw10, KindWildDraw4:
		return true
	}
	return false
}

// DrawAmount returns the number of cards a draw kind forces, or 0.
func (k Kind) DrawAmount() int {
	switch k {
	case KindDraw2:
		return 2
	case KindDraw6:
		return 6
	case KindDraw10:
		return 10
	case KindWildDraw4:
		return 4
	}
	return 0
}

// Card is a single card. ID is the sole identity used for hand lookups and is
// unique across a game's 68-card population. Value is meaningful only for
// KindNumber cards.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Color Color     `json:"color"`
	Kind  Kind      `json:"kind"`
	Value int       `json:"value,omitempty"`
}

// IsWildFamily reports whether the card is a wild or wild draw four.
func (c Card) IsWildFamily() bool {
	return c.Kind == KindWild || c.Kind == KindWildDraw4
}

// Label renders the card the way the narration messages refer to it.
func (c Card) Label() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("%d", c.Value)
	case KindSkip:
		return "SKIP"
	case KindReverse:
		return "REVERSE"
	case KindDraw2:
		return "+2"
	case KindDraw6:
		return "+6"
	case KindDraw10:
		return "+10"
	case KindWild:
		return "WILD"
	case KindWildDraw4:
		return "WILD +4"
	}
	return string(c.Kind)
}

// DeckSize is the fixed card population per game:
// 4 colors x (10 numbers + skip + reverse + draw2 + draw6 + draw10) + 4 wild + 4 wild_draw4.
const DeckSize = 68

// NewDeck builds the full 68-card population in deterministic composition
// order with freshly generated unique IDs. The caller shuffles.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, color := range PlayColors {
		for n := 0; n <= 9; n++ {
			deck = append(deck, Card{ID: uuid.New(), Color: color, Kind: KindNumber, Value: n})
		}
		for _, k := range []Kind{KindSkip, KindReverse, KindDraw2, KindDraw6, KindDraw10} {
			deck = append(deck, Card{ID: uuid.New(), Color: color, Kind: k})
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{ID: uuid.New(), Color: ColorWild, Kind: KindWild})
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{ID: uuid.New(), Color: ColorWild, Kind: KindWildDraw4})
	}
	return deck
}
