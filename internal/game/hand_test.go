package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/feltworks/holdem/poker"
)

// checkCallAgent checks when free and calls otherwise.
func checkCallAgent() Agent {
	return AgentFunc(func(_ context.Context, state *TableState, va ValidActions) PlayerAction {
		id := state.CurrentPlayer().ID
		if va.CanCheck {
			return PlayerAction{PlayerID: id, Type: Check}
		}
		return PlayerAction{PlayerID: id, Type: Call}
	})
}

// scriptedAgent plays a fixed action sequence, then checks/calls.
func scriptedAgent(actions ...ActionType) Agent {
	i := 0
	return AgentFunc(func(_ context.Context, state *TableState, va ValidActions) PlayerAction {
		id := state.CurrentPlayer().ID
		if i < len(actions) {
			action := actions[i]
			i++
			return PlayerAction{PlayerID: id, Type: action}
		}
		if va.CanCheck {
			return PlayerAction{PlayerID: id, Type: Check}
		}
		return PlayerAction{PlayerID: id, Type: Call}
	})
}

// eventRecorder captures every published event in order.
type eventRecorder struct {
	events []GameEvent
}

func (r *eventRecorder) OnEvent(event GameEvent) {
	r.events = append(r.events, event)
}

func twoPlayers(chips int) []*Player {
	return []*Player{
		{ID: "hero", Name: "Hero", Chips: chips},
		{ID: "villain", Name: "Villain", Chips: chips},
	}
}

func TestHandAcesVersusKings(t *testing.T) {
	// Hero AsAh vs Villain KsKh on 2c7d9sJcQh; both check it down.
	deck := poker.NewStackedDeck(poker.MustParseCards("AsAhKsKh2c7d9sJcQh")...)

	hand, err := NewHand(twoPlayers(1000),
		HandConfig{HandID: "h1", SmallBlind: 5, BigBlind: 10}, nil,
		WithDeck(deck),
		WithDefaultAgent(checkCallAgent()))
	if err != nil {
		t.Fatal(err)
	}

	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.ShowdownType != "showdown" {
		t.Fatalf("showdownType = %q, want showdown", result.ShowdownType)
	}
	if len(result.WinnerIDs) != 1 || result.WinnerIDs[0] != "hero" {
		t.Fatalf("winners = %v, want [hero]", result.WinnerIDs)
	}
	if result.WinningHand != "One Pair, Aces" {
		t.Errorf("winning hand = %q, want %q", result.WinningHand, "One Pair, Aces")
	}
	if result.Pot != 20 {
		t.Errorf("pot = %d, want 20", result.Pot)
	}

	final := result.FinalState
	if final.Players[0].Chips != 1010 || final.Players[1].Chips != 990 {
		t.Errorf("final stacks = %d/%d, want 1010/990",
			final.Players[0].Chips, final.Players[1].Chips)
	}
	if final.Street != StreetComplete {
		t.Errorf("final street = %v, want complete", final.Street)
	}
}

func TestHandBoardStraightSplitsPot(t *testing.T) {
	// Both players play the board straight 2-3-4-5-6.
	deck := poker.NewStackedDeck(poker.MustParseCards("AsKsAhKh2c3d4h5s6c")...)

	hand, err := NewHand(twoPlayers(1000),
		HandConfig{HandID: "h2", SmallBlind: 5, BigBlind: 10}, nil,
		WithDeck(deck),
		WithDefaultAgent(checkCallAgent()))
	if err != nil {
		t.Fatal(err)
	}

	recorder := &eventRecorder{}
	hand.EventBus().Subscribe(recorder)

	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.WinnerIDs) != 2 {
		t.Fatalf("winners = %v, want both players", result.WinnerIDs)
	}

	final := result.FinalState
	if final.Players[0].Chips != 1000 || final.Players[1].Chips != 1000 {
		t.Errorf("split should restore both stacks, got %d/%d",
			final.Players[0].Chips, final.Players[1].Chips)
	}

	var award *PotAwardedEvent
	for _, event := range recorder.events {
		if e, ok := event.(PotAwardedEvent); ok {
			award = &e
		}
	}
	if award == nil {
		t.Fatal("no pot-awarded event published")
	}
	if !award.IsSplitPot {
		t.Error("expected isSplitPot on the award event")
	}
	if award.AmountPerWinner != 10 {
		t.Errorf("amountPerWinner = %d, want 10", award.AmountPerWinner)
	}
}

func TestHandFoldOutPreflop(t *testing.T) {
	// Blinds 10/20; everyone folds to the big blind; pot 30.
	players := []*Player{
		{ID: "alice", Name: "Alice", Chips: 1000},
		{ID: "bob", Name: "Bob", Chips: 1000},
		{ID: "carol", Name: "Carol", Chips: 1000},
	}
	rng := rand.New(rand.NewSource(7))

	hand, err := NewHand(players,
		HandConfig{HandID: "h3", SmallBlind: 10, BigBlind: 20}, rng,
		WithDefaultAgent(FoldAgent{}))
	if err != nil {
		t.Fatal(err)
	}

	recorder := &eventRecorder{}
	hand.EventBus().Subscribe(recorder)

	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.ShowdownType != "fold" {
		t.Fatalf("showdownType = %q, want fold", result.ShowdownType)
	}
	if len(result.WinnerIDs) != 1 || result.WinnerIDs[0] != "carol" {
		t.Fatalf("winners = %v, want the big blind", result.WinnerIDs)
	}
	if result.Pot != 30 {
		t.Errorf("pot = %d, want 30", result.Pot)
	}
	if result.WinningHand != FoldWinDescription {
		t.Errorf("description = %q, want %q", result.WinningHand, FoldWinDescription)
	}

	// winner determination never ran hand evaluation
	for _, event := range recorder.events {
		if event.EventType() == EventTypeHandEvaluated {
			t.Error("fold-out hand must not evaluate for the win")
		}
	}

	final := result.FinalState
	if final.Players[2].Chips != 1010 {
		t.Errorf("big blind stack = %d, want 1010", final.Players[2].Chips)
	}
}

func TestHandAllInRunout(t *testing.T) {
	// Hero shoves preflop, villain calls all-in: the board runs out with no
	// further betting and the hand is evaluated at showdown.
	deck := poker.NewStackedDeck(poker.MustParseCards("AsAhKsKh2c7d9sJcQh")...)

	hand, err := NewHand(twoPlayers(500),
		HandConfig{HandID: "h4", SmallBlind: 5, BigBlind: 10}, nil,
		WithDeck(deck),
		WithAgent("hero", scriptedAgent(AllIn)),
		WithAgent("villain", scriptedAgent(AllIn)))
	if err != nil {
		t.Fatal(err)
	}

	recorder := &eventRecorder{}
	hand.EventBus().Subscribe(recorder)

	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.ShowdownType != "showdown" {
		t.Fatalf("showdownType = %q, want showdown", result.ShowdownType)
	}
	if result.Pot != 1000 {
		t.Errorf("pot = %d, want 1000", result.Pot)
	}

	final := result.FinalState
	if final.Players[0].Chips != 1000 || final.Players[1].Chips != 0 {
		t.Errorf("final stacks = %d/%d, want 1000/0",
			final.Players[0].Chips, final.Players[1].Chips)
	}
	if len(final.Community) != 5 {
		t.Errorf("board = %d cards, want full runout", len(final.Community))
	}

	evaluated := 0
	for _, event := range recorder.events {
		if event.EventType() == EventTypeHandEvaluated {
			evaluated++
		}
	}
	if evaluated != 2 {
		t.Errorf("hand-evaluated events = %d, want 2", evaluated)
	}
}

func TestHandEventOrdering(t *testing.T) {
	deck := poker.NewStackedDeck(poker.MustParseCards("AsAhKsKh2c7d9sJcQh")...)

	hand, err := NewHand(twoPlayers(1000),
		HandConfig{HandID: "h5", SmallBlind: 5, BigBlind: 10}, nil,
		WithDeck(deck),
		WithDefaultAgent(checkCallAgent()))
	if err != nil {
		t.Fatal(err)
	}

	recorder := &eventRecorder{}
	hand.EventBus().Subscribe(recorder)

	if _, err := hand.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// hand-evaluated must always precede pot-awarded
	evaluatedSeen := false
	awardIndex, completedIndex := -1, -1
	for i, event := range recorder.events {
		switch event.EventType() {
		case EventTypeHandEvaluated:
			evaluatedSeen = true
			if awardIndex != -1 {
				t.Fatal("hand-evaluated published after pot-awarded")
			}
		case EventTypePotAwarded:
			awardIndex = i
		case EventTypeHandCompleted:
			completedIndex = i
		}
	}
	if !evaluatedSeen {
		t.Fatal("no hand-evaluated events at showdown")
	}
	if awardIndex == -1 || completedIndex == -1 || completedIndex < awardIndex {
		t.Fatal("pot-awarded / hand-completed sequence broken")
	}
	if recorder.events[0].EventType() != EventTypeHandStart {
		t.Errorf("first event = %v, want hand_start", recorder.events[0].EventType())
	}
}

func TestHandDecisionTimeoutAutoFolds(t *testing.T) {
	mClock := quartz.NewMock(t)

	hand, err := NewHand(twoPlayers(1000),
		HandConfig{HandID: "h6", SmallBlind: 5, BigBlind: 10, DecisionTimeout: 5 * time.Second},
		rand.New(rand.NewSource(1)),
		WithClock(mClock))
	if err != nil {
		t.Fatal(err)
	}
	hand.state = PostBlinds(hand.state)

	blocking := AgentFunc(func(ctx context.Context, _ *TableState, _ ValidActions) PlayerAction {
		<-ctx.Done()
		return PlayerAction{}
	})

	va := ValidActionsFor(hand.state)
	done := make(chan PlayerAction, 1)
	go func() {
		done <- hand.decide(context.Background(), blocking, va)
	}()

	time.Sleep(10 * time.Millisecond) // let the decision timer start
	ctx := context.Background()
	mClock.Advance(5 * time.Second).MustWait(ctx)

	action := <-done
	if action.Type != Fold {
		t.Errorf("timed-out decision = %v, want fold (call pending)", action.Type)
	}
}

func TestHandRejectedDecisionsForceFold(t *testing.T) {
	// An agent that keeps checking into a bet gets folded by the engine.
	deck := poker.NewStackedDeck(poker.MustParseCards("AsAhKsKh2c7d9sJcQh")...)

	stubborn := AgentFunc(func(_ context.Context, state *TableState, _ ValidActions) PlayerAction {
		return PlayerAction{PlayerID: state.CurrentPlayer().ID, Type: Check}
	})

	hand, err := NewHand(twoPlayers(1000),
		HandConfig{HandID: "h7", SmallBlind: 5, BigBlind: 10}, nil,
		WithDeck(deck),
		WithAgent("hero", stubborn), // hero faces the small-blind call preflop
		WithAgent("villain", checkCallAgent()))
	if err != nil {
		t.Fatal(err)
	}

	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.ShowdownType != "fold" || result.WinnerIDs[0] != "villain" {
		t.Fatalf("expected villain to win by forced fold, got %+v", result)
	}
}

func TestHandChipConservationAcrossHands(t *testing.T) {
	players := []*Player{
		{ID: "a", Name: "A", Chips: 300},
		{ID: "b", Name: "B", Chips: 1000},
		{ID: "c", Name: "C", Chips: 700},
	}
	rng := rand.New(rand.NewSource(99))

	for handNum := 1; handNum <= 20; handNum++ {
		hand, err := NewHand(players,
			HandConfig{HandNumber: handNum, SmallBlind: 5, BigBlind: 10, DealerIndex: handNum % 3},
			rng,
			WithDefaultAgent(checkCallAgent()))
		if err == ErrNotEnoughPlayers {
			break
		}
		if err != nil {
			t.Fatal(err)
		}

		result, err := hand.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		total := 0
		for i, p := range result.FinalState.Players {
			players[i] = p
			total += p.Chips
		}
		if total != 2000 {
			t.Fatalf("hand %d: total chips = %d, want 2000", handNum, total)
		}
	}
}

// illegalThenFoldAgent opens with an illegal check, then folds, keeping the
// reasons the engine reports back.
type illegalThenFoldAgent struct {
	calls   int
	reasons []string
}

func (a *illegalThenFoldAgent) OnRejection(r Rejection) {
	a.reasons = append(a.reasons, r.Reason)
}

func (a *illegalThenFoldAgent) MakeDecision(_ context.Context, state *TableState, _ ValidActions) PlayerAction {
	a.calls++
	id := state.CurrentPlayer().ID
	if a.calls == 1 {
		return PlayerAction{PlayerID: id, Type: Check}
	}
	return PlayerAction{PlayerID: id, Type: Fold}
}

func TestHandRejectionReportedToAgent(t *testing.T) {
	// Heads-up the dealer posts the small blind and acts first facing the big
	// blind, so an opening check is illegal.
	hero := &illegalThenFoldAgent{}
	hand, err := NewHand(twoPlayers(1000),
		HandConfig{SmallBlind: 5, BigBlind: 10}, rand.New(rand.NewSource(1)),
		WithAgent("hero", hero))
	if err != nil {
		t.Fatal(err)
	}

	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(hero.reasons) != 1 {
		t.Fatalf("reported rejections = %v, want exactly one", hero.reasons)
	}
	if hero.reasons[0] == "" {
		t.Error("rejection reason is empty")
	}
	if hero.calls != 2 {
		t.Errorf("agent asked %d times, want 2", hero.calls)
	}
	if len(result.WinnerIDs) != 1 || result.WinnerIDs[0] != "villain" {
		t.Errorf("winners = %v, want [villain]", result.WinnerIDs)
	}
}
