// internal/engine/actions_test.go
package engine

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableState builds a deterministic mid-game state: the given hands, a known
// deck, and a red 5 on the discard pile. Turn order follows the hands' key
// order as passed in order.
func tableState(order []uuid.UUID, hands map[uuid.UUID][]Card, deck []Card) *GameState {
	s := &GameState{
		Deck:         deck,
		Discard:      []Card{card(ColorRed, KindNumber, 5)},
		Hands:        map[uuid.UUID][]Card{},
		PlayerOrder:  append([]uuid.UUID(nil), order...),
		TurnIndex:    0,
		Direction:    1,
		CurrentColor: ColorRed,
		SaidUNO:      map[uuid.UUID]bool{},
		Eliminated:   map[uuid.UUID]bool{},
		NamesByID:    map[uuid.UUID]string{},
	}
	for pid, hand := range hands {
		s.Hands[pid] = append([]Card(nil), hand...)
		s.SaidUNO[pid] = false
		s.Eliminated[pid] = false
	}
	return s
}

// filler produces n cards guaranteed not to be playable on a red 5.
func filler(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, card(ColorBlue, KindNumber, 1))
	}
	return out
}

func TestApplyActionRejectsOutOfTurn(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: filler(3),
		p2: {card(ColorRed, KindNumber, 9)},
	}, filler(5))

	next := e.ApplyAction(s, p2, Action{Type: ActionPlay, CardID: s.Hands[p2][0].ID})

	assert.Equal(t, "Not your turn.", next.Message)
	assert.Len(t, next.Hands[p2], 1)
	assert.Equal(t, 0, next.TurnIndex)
}

func TestAcceptedFlagTracksAppliedTransitions(t *testing.T) {
	e := New(rand.New(rand.NewSource(4)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: {card(ColorRed, KindNumber, 9), card(ColorBlue, KindNumber, 1)},
		p2: filler(3),
	}, filler(5))

	next := e.ApplyAction(s, p2, Action{Type: ActionDraw})
	assert.False(t, next.Accepted, "out-of-turn submission is not a transition")

	next = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: s.Hands[p1][1].ID})
	assert.False(t, next.Accepted, "unplayable card is not a transition")

	next = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: uuid.New()})
	assert.False(t, next.Accepted, "unknown card is not a transition")

	next = e.ApplyAction(s, p1, Action{Type: ActionUno})
	assert.True(t, next.Accepted)

	next = e.ApplyAction(next, p1, Action{Type: ActionPlay, CardID: s.Hands[p1][0].ID})
	assert.True(t, next.Accepted)
	assert.False(t, next.Clone().Accepted, "flag does not carry into the next submission")

	next = e.ApplyAction(next, p1, Action{Type: ActionDraw})
	assert.False(t, next.Accepted, "turn has passed, stale actor is rejected")
}

func TestApplyActionDoesNotMutateInput(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	playable := card(ColorRed, KindNumber, 2)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(3), playable),
		p2: filler(3),
	}, filler(5))

	before := countCards(s)
	next := e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: playable.ID})

	// The accepted play lands only on the returned state.
	require.Len(t, next.Hands[p1], 3)
	assert.Len(t, s.Hands[p1], 4)
	assert.Len(t, s.Discard, 1)
	assert.Equal(t, 0, s.TurnIndex)
	assert.Equal(t, 1, next.TurnIndex)
	assert.Equal(t, before, countCards(s))
	assert.Equal(t, before, countCards(next))
}

func TestApplyActionUnknownCardRejected(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: filler(3),
		p2: filler(3),
	}, filler(5))

	next := e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: uuid.New()})
	assert.Equal(t, "Card not found.", next.Message)
	assert.Equal(t, 0, next.TurnIndex)

	next = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: s.Hands[p1][0].ID})
	assert.Equal(t, "You can't play that card.", next.Message)
	assert.Equal(t, 0, next.TurnIndex)
}

func TestDrawStackBuildsAndResolves(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	d1 := card(ColorRed, KindDraw2, 0)
	d2 := card(ColorGreen, KindDraw2, 0)
	s := tableState([]uuid.UUID{p1, p2, p3}, map[uuid.UUID][]Card{
		p1: append(filler(3), d1),
		p2: append(filler(3), d2),
		p3: filler(3),
	}, filler(10))

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: d1.ID})
	require.Equal(t, PendingDraw{Kind: KindDraw2, Amount: 2}, s.PendingDraw)
	require.Equal(t, p2, s.CurrentPlayer())

	// p2 extends the stack instead of absorbing it.
	s = e.ApplyAction(s, p2, Action{Type: ActionPlay, CardID: d2.ID})
	require.Equal(t, PendingDraw{Kind: KindDraw2, Amount: 4}, s.PendingDraw)
	require.Equal(t, p3, s.CurrentPlayer())

	// p3 has no draw2 and must absorb all four cards.
	s = e.ApplyAction(s, p3, Action{Type: ActionDraw})
	assert.Equal(t, PendingDraw{}, s.PendingDraw)
	assert.Len(t, s.Hands[p3], 7)
	assert.Equal(t, "Drew 4 (stack) and lost the turn.", s.Message)
	assert.Equal(t, p1, s.CurrentPlayer())
}

func TestStackBlocksNonMatchingPlays(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	d1 := card(ColorRed, KindDraw2, 0)
	wild := card(ColorWild, KindWild, 0)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(3), d1),
		p2: append(filler(3), wild),
	}, filler(10))

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: d1.ID})
	require.Equal(t, 2, s.PendingDraw.Amount)

	next := e.ApplyAction(s, p2, Action{Type: ActionPlay, CardID: wild.ID})
	assert.Equal(t, "You can't play that card.", next.Message)
	assert.Len(t, next.Hands[p2], 4)
}

func TestWildPausesForColorChoice(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	wild := card(ColorWild, KindWild, 0)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(3), wild),
		p2: filler(3),
	}, filler(10))

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: wild.ID})
	require.NotNil(t, s.Awaiting)
	assert.Equal(t, AwaitWild, s.Awaiting.Type)
	assert.Equal(t, p1, s.Awaiting.ActorID)
	assert.Equal(t, p1, s.CurrentPlayer(), "turn does not advance while awaiting")

	// Another player cannot jump the gate.
	next := e.ApplyAction(s, p2, Action{Type: ActionResolveWild, ChosenColor: ColorGreen})
	assert.Equal(t, "Waiting for another player's choice.", next.Message)
	assert.NotNil(t, next.Awaiting)

	// The actor cannot sneak a different action through it.
	next = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	assert.Equal(t, "Choose a color for the Wild first.", next.Message)
	assert.NotNil(t, next.Awaiting)

	// Nor resolve with a junk color.
	next = e.ApplyAction(s, p1, Action{Type: ActionResolveWild, ChosenColor: ColorWild})
	assert.Equal(t, "Choose a valid color.", next.Message)

	s = e.ApplyAction(s, p1, Action{Type: ActionResolveWild, ChosenColor: ColorBlue})
	assert.Nil(t, s.Awaiting)
	assert.Equal(t, ColorBlue, s.CurrentColor)
	assert.Equal(t, "Wild color chosen: BLUE.", s.Message)
	assert.Equal(t, p2, s.CurrentPlayer())
	top, _ := s.TopCard()
	assert.Equal(t, ColorBlue, top.Color, "pile wild shows the chosen color")
}

func TestWildDrawFourStacksBeforeColorChoice(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	wd4 := card(ColorWild, KindWildDraw4, 0)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(3), wd4),
		p2: filler(3),
	}, filler(10))

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: wd4.ID})
	require.NotNil(t, s.Awaiting)
	assert.Equal(t, PendingDraw{Kind: KindWildDraw4, Amount: 4}, s.PendingDraw)

	s = e.ApplyAction(s, p1, Action{Type: ActionResolveWild, ChosenColor: ColorYellow})
	require.Equal(t, p2, s.CurrentPlayer())

	s = e.ApplyAction(s, p2, Action{Type: ActionDraw})
	assert.Len(t, s.Hands[p2], 7)
	assert.Equal(t, PendingDraw{}, s.PendingDraw)
}

func TestSevenPausesForSwap(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	seven := card(ColorRed, KindNumber, 7)
	s := tableState([]uuid.UUID{p1, p2, p3}, map[uuid.UUID][]Card{
		p1: append(filler(1), seven),
		p2: filler(5),
		p3: filler(2),
	}, filler(10))
	s.SaidUNO[p1] = true
	s.NamesByID[p3] = "carol"

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: seven.ID})
	require.NotNil(t, s.Awaiting)
	assert.Equal(t, AwaitSwap7, s.Awaiting.Type)

	// Self and unknown targets are rejected.
	next := e.ApplyAction(s, p1, Action{Type: ActionResolveSwap7, SwapWith: p1})
	assert.Equal(t, "Choose a valid player to swap with.", next.Message)
	next = e.ApplyAction(s, p1, Action{Type: ActionResolveSwap7, SwapWith: uuid.New()})
	assert.Equal(t, "Choose a valid player to swap with.", next.Message)

	s = e.ApplyAction(s, p1, Action{Type: ActionResolveSwap7, SwapWith: p3})
	assert.Nil(t, s.Awaiting)
	assert.Len(t, s.Hands[p1], 2, "received carol's hand")
	assert.Len(t, s.Hands[p3], 1, "received the played-down hand")
	assert.False(t, s.SaidUNO[p1], "swap voids any standing UNO")
	assert.Equal(t, "Swapped hands with carol.", s.Message)
	assert.Equal(t, p2, s.CurrentPlayer())
}

func TestSevenWithNoTargetsPlaysPlain(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	seven := card(ColorRed, KindNumber, 7)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(3), seven),
		p2: filler(30),
	}, filler(10))
	s.Eliminated[p2] = true

	// Degenerate: the only other player is out, so the seven cannot open a
	// swap gate.
	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: seven.ID})
	assert.Nil(t, s.Awaiting)
}

func TestSkipAndReverse(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	skip := card(ColorRed, KindSkip, 0)
	rev := card(ColorRed, KindReverse, 0)
	s := tableState([]uuid.UUID{p1, p2, p3}, map[uuid.UUID][]Card{
		p1: append(filler(3), skip, rev),
		p2: filler(3),
		p3: filler(3),
	}, filler(10))

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: skip.ID})
	assert.Equal(t, p3, s.CurrentPlayer(), "skip jumps over p2")

	s.TurnIndex = 0
	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: rev.ID})
	assert.Equal(t, -1, s.Direction)
	assert.Equal(t, p3, s.CurrentPlayer(), "reverse heads the other way")
}

func TestReverseTwoPlayersActsAsSkip(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	rev := card(ColorRed, KindReverse, 0)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(3), rev),
		p2: filler(3),
	}, filler(10))

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: rev.ID})
	assert.Equal(t, p1, s.CurrentPlayer(), "heads-up reverse returns the turn")
}

func TestEliminationAtExactly25(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2, p3}, map[uuid.UUID][]Card{
		p1: filler(20),
		p2: filler(3),
		p3: filler(3),
	}, filler(30))

	// 20 + 4 = 24: still alive.
	s.PendingDraw = PendingDraw{Kind: KindWildDraw4, Amount: 4}
	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	require.Len(t, s.Hands[p1], 24)
	assert.False(t, s.Eliminated[p1])
	assert.False(t, s.GameOver)

	// One more forced card crosses the threshold.
	s.TurnIndex = 0
	s.PendingDraw = PendingDraw{Kind: KindDraw2, Amount: 2}
	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	require.Len(t, s.Hands[p1], 26)
	assert.True(t, s.Eliminated[p1])
	assert.False(t, s.GameOver, "two players remain")
	assert.NotEqual(t, p1, s.CurrentPlayer(), "eliminated players leave the rotation")
}

func TestEliminationEndsHeadsUpGame(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: filler(23),
		p2: filler(3),
	}, filler(30))
	s.PendingDraw = PendingDraw{Kind: KindDraw2, Amount: 2}

	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	assert.True(t, s.Eliminated[p1])
	assert.True(t, s.GameOver)
	assert.Equal(t, p2, s.WinnerID)
	assert.Equal(t, "Winner by last standing!", s.Message)
}

func TestUNOPenalty(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	playable := card(ColorRed, KindNumber, 3)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(1), playable),
		p2: filler(3),
	}, filler(10))

	next := e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: playable.ID})
	assert.Len(t, next.Hands[p1], 3, "down to one without UNO costs two cards")
	assert.Contains(t, next.Message, "UNO not called")

	// Same play after pressing UNO goes unpunished.
	s = e.ApplyAction(s, p1, Action{Type: ActionUno})
	require.True(t, s.SaidUNO[p1])
	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: playable.ID})
	assert.Len(t, s.Hands[p1], 1)
	assert.NotContains(t, s.Message, "UNO not called")
	assert.False(t, s.SaidUNO[p1], "flag resets when the turn passes")
}

func TestEmptyHandWins(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	last := card(ColorRed, KindNumber, 3)
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: {last},
		p2: filler(3),
	}, filler(10))
	s.SaidUNO[p1] = true

	s = e.ApplyAction(s, p1, Action{Type: ActionPlay, CardID: last.ID})
	assert.True(t, s.GameOver)
	assert.Equal(t, p1, s.WinnerID)
	assert.Equal(t, "Winner!", s.Message)
}

func TestFinishedGameIsInert(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: filler(2),
		p2: filler(3),
	}, filler(10))
	s.GameOver = true
	s.WinnerID = p2
	s.Message = "Winner!"

	next := e.ApplyAction(s, p1, Action{Type: ActionDraw})
	assert.True(t, next.GameOver)
	assert.Equal(t, p2, next.WinnerID)
	assert.Equal(t, "Winner!", next.Message)
	assert.Len(t, next.Hands[p1], 2)
}

func TestForcedDrawUntilPlayable(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	playable := card(ColorRed, KindNumber, 8)
	// Two dead draws, then a red 8 that must be auto-played.
	deck := []Card{
		card(ColorGreen, KindNumber, 2),
		card(ColorGreen, KindNumber, 3),
		playable,
		card(ColorYellow, KindNumber, 4),
	}
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: filler(3),
		p2: filler(3),
	}, deck)

	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	assert.Len(t, s.Hands[p1], 5, "kept the two dead draws, played the third")
	assert.Len(t, s.Discard, 2)
	top, _ := s.TopCard()
	assert.Equal(t, playable.ID, top.ID)
	assert.Contains(t, s.Message, "Drew until playable")
	assert.Equal(t, p2, s.CurrentPlayer())
}

func TestVoluntaryDrawKeepsUnplayableCard(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	// p1 holds a playable card, so drawing is a plain single draw.
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(2), card(ColorRed, KindNumber, 1)),
		p2: filler(3),
	}, filler(5))

	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	assert.Len(t, s.Hands[p1], 4)
	assert.Equal(t, "Drew a card.", s.Message)
	assert.Equal(t, p2, s.CurrentPlayer())
}

func TestExhaustedDeckForfeitsTurn(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: filler(3),
		p2: filler(3),
	}, nil)

	// Deck empty and discard holds only the top card: nothing to reshuffle.
	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	assert.Equal(t, "No playable cards and the deck is empty.", s.Message)
	assert.Len(t, s.Hands[p1], 3)
	assert.Equal(t, p2, s.CurrentPlayer())
}

func TestReshuffleRecyclesDiscard(t *testing.T) {
	e := New(rand.New(rand.NewSource(7)))
	p1, p2 := uuid.New(), uuid.New()
	s := tableState([]uuid.UUID{p1, p2}, map[uuid.UUID][]Card{
		p1: append(filler(2), card(ColorRed, KindNumber, 1)),
		p2: filler(3),
	}, nil)
	buried := card(ColorGreen, KindNumber, 9)
	s.Discard = append([]Card{buried}, s.Discard...)

	top, _ := s.TopCard()
	s = e.ApplyAction(s, p1, Action{Type: ActionDraw})
	require.Len(t, s.Hands[p1], 4)
	assert.Equal(t, buried.ID, s.Hands[p1][3].ID, "buried discard re-enters play")
	newTop, _ := s.TopCard()
	assert.Equal(t, top.ID, newTop.ID, "top card never leaves the pile")
}

// TestRandomPlayout drives full seeded games with a naive bot and checks the
// global invariants: the 68 cards are conserved across every transition,
// elimination never reverses, and the game reaches a terminal state.
func TestRandomPlayout(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		e := New(rng)
		p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
		players := []uuid.UUID{p1, p2, p3}
		s := e.NewGame(players, nil)

		eliminated := map[uuid.UUID]bool{}
		for step := 0; step < 5000 && !s.GameOver; step++ {
			s = e.ApplyAction(s, botActor(s), botAction(rng, s))

			require.Equal(t, DeckSize, countCards(s), "seed %d step %d", seed, step)
			for _, pid := range players {
				if eliminated[pid] {
					require.True(t, s.Eliminated[pid], "seed %d: elimination reversed", seed)
				}
				eliminated[pid] = s.Eliminated[pid]
			}
		}
		require.True(t, s.GameOver, "seed %d never finished", seed)
		if s.WinnerID != uuid.Nil {
			assert.False(t, s.Eliminated[s.WinnerID], "seed %d: eliminated winner", seed)
		}
	}
}

func botActor(s *GameState) uuid.UUID {
	if s.Awaiting != nil {
		return s.Awaiting.ActorID
	}
	return s.CurrentPlayer()
}

func botAction(rng *rand.Rand, s *GameState) Action {
	if s.Awaiting != nil {
		switch s.Awaiting.Type {
		case AwaitWild:
			return Action{Type: ActionResolveWild, ChosenColor: PlayColors[rng.Intn(len(PlayColors))]}
		case AwaitSwap7:
			targets := s.SwapTargets(s.Awaiting.ActorID)
			return Action{Type: ActionResolveSwap7, SwapWith: targets[rng.Intn(len(targets))]}
		}
	}
	actor := s.CurrentPlayer()
	if len(s.Hands[actor]) == 2 && rng.Intn(2) == 0 {
		return Action{Type: ActionUno}
	}
	top, _ := s.TopCard()
	for _, c := range s.Hands[actor] {
		if CanPlay(c, top, s.CurrentColor, s.PendingDraw) {
			return Action{Type: ActionPlay, CardID: c.ID}
		}
	}
	return Action{Type: ActionDraw}
}
