package training

import (
	"strings"
	"testing"

	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/poker"
)

func advisedState(t *testing.T, holeCards string) (*game.TableState, game.ValidActions) {
	t.Helper()
	players := []*game.Player{
		{ID: "hero", Name: "Hero", Seat: 0, Chips: 1000, Status: game.StatusActive},
		{ID: "villain", Name: "Villain", Seat: 1, Chips: 1000, Status: game.StatusActive},
	}
	state := game.NewHandState(players, 0, 5, 10, 1)
	state = game.PostBlinds(state)
	state.CurrentPlayer().HoleCards = poker.MustParseCards(holeCards)
	return state, game.ValidActionsFor(state)
}

func TestAdvisePremiumPreflopSuggestsRaise(t *testing.T) {
	state, va := advisedState(t, "AsAh")

	hint, err := NewAdvisor().Advise(state, va)
	if err != nil {
		t.Fatal(err)
	}

	if hint.HandLabel != "Premium" {
		t.Errorf("hand label = %q, want Premium", hint.HandLabel)
	}
	if hint.Suggested != game.Raise {
		t.Errorf("suggested = %v, want raise", hint.Suggested)
	}
	if hint.SuggestedAmt < va.MinRaiseTo || hint.SuggestedAmt > va.MaxRaiseTo {
		t.Errorf("suggested amount %d outside legal range", hint.SuggestedAmt)
	}
	if !strings.Contains(hint.Explanation, "premium") {
		t.Errorf("explanation missing category: %q", hint.Explanation)
	}
}

func TestAdviseTrashFacingBetSuggestsFold(t *testing.T) {
	state, va := advisedState(t, "2c7d")

	hint, err := NewAdvisor().Advise(state, va)
	if err != nil {
		t.Fatal(err)
	}

	if hint.Suggested != game.Fold {
		t.Errorf("suggested = %v, want fold", hint.Suggested)
	}
	if hint.PotOdds <= 0 {
		t.Error("pot odds should be reported when facing a bet")
	}
}

func TestAdvisePostflopMadeHand(t *testing.T) {
	state, _ := advisedState(t, "KsKh")

	// move to the flop with top set on board
	state = game.NextStreet(state)
	state.Community = poker.MustParseCards("Kc9s2d")
	state.CurrentPlayer().HoleCards = poker.MustParseCards("KsKh")
	va := game.ValidActionsFor(state)

	hint, err := NewAdvisor().Advise(state, va)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(hint.HandLabel, "Three of a Kind") {
		t.Errorf("hand label = %q, want a made-hand description", hint.HandLabel)
	}
	if hint.Suggested != game.Bet {
		t.Errorf("suggested = %v, want bet", hint.Suggested)
	}
	if hint.SuggestedAmt < va.MinBet || hint.SuggestedAmt > va.MaxBet {
		t.Errorf("suggested amount %d outside legal range", hint.SuggestedAmt)
	}
}

func TestAdviseNoDecisionPending(t *testing.T) {
	players := []*game.Player{
		{ID: "a", Name: "A", Seat: 0, Chips: 1000, Status: game.StatusActive},
		{ID: "b", Name: "B", Seat: 1, Chips: 1000, Status: game.StatusActive},
	}
	state := game.NewHandState(players, 0, 5, 10, 1) // no round open yet

	if _, err := NewAdvisor().Advise(state, game.ValidActions{}); err == nil {
		t.Fatal("expected an error when nobody is due to act")
	}
}
