package settle

import (
	"context"
	"errors"
	"testing"

	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/poker"
)

func TestSettlementValidate(t *testing.T) {
	valid := &Settlement{
		HandID: "h1",
		Pot:    100,
		Entries: []Entry{
			{PlayerID: "a", Seat: 0, Amount: 50},
			{PlayerID: "b", Seat: 1, Amount: -50},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Settlement)
	}{
		{"missing hand id", func(s *Settlement) { s.HandID = "" }},
		{"zero pot", func(s *Settlement) { s.Pot = 0 }},
		{"no entries", func(s *Settlement) { s.Entries = nil }},
		{"nonzero net", func(s *Settlement) { s.Entries[0].Amount = 60 }},
		{"no winner", func(s *Settlement) {
			s.Entries[0].Amount = 0
			s.Entries[1].Amount = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *valid
			s.Entries = append([]Entry{}, valid.Entries...)
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettlement) {
				t.Errorf("expected ErrInvalidSettlement, got %v", err)
			}
		})
	}
}

func TestFromHandDiffsStacks(t *testing.T) {
	players := []*game.Player{
		{ID: "hero", Name: "Hero", Chips: 1000},
		{ID: "villain", Name: "Villain", Chips: 1000},
	}
	starting := map[string]int{"hero": 1000, "villain": 1000}

	deck := poker.NewStackedDeck(poker.MustParseCards("AsAhKsKh2c7d9sJcQh")...)
	checkCall := game.AgentFunc(func(_ context.Context, state *game.TableState, va game.ValidActions) game.PlayerAction {
		id := state.CurrentPlayer().ID
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Call}
	})

	hand, err := game.NewHand(players,
		game.HandConfig{HandID: "s1", SmallBlind: 5, BigBlind: 10}, nil,
		game.WithDeck(deck), game.WithDefaultAgent(checkCall))
	if err != nil {
		t.Fatal(err)
	}
	result, err := hand.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	settlement, err := FromHand(result, starting)
	if err != nil {
		t.Fatal(err)
	}

	if len(settlement.Entries) != 2 {
		t.Fatalf("entries = %+v, want winner and loser", settlement.Entries)
	}
	net := 0
	for _, entry := range settlement.Entries {
		net += entry.Amount
		if entry.PlayerID == "hero" && entry.Amount != 10 {
			t.Errorf("hero delta = %d, want +10", entry.Amount)
		}
	}
	if net != 0 {
		t.Errorf("net = %d, want 0", net)
	}
}

func TestRevenueShareValidate(t *testing.T) {
	good := RevenueShare{OperatorBps: 7000, PartnerBps: 3000, PartnerID: "p1"}
	if err := good.Validate(); err != nil {
		t.Fatal(err)
	}

	bad := []RevenueShare{
		{OperatorBps: 7000, PartnerBps: 2000, PartnerID: "p1"}, // incomplete split
		{OperatorBps: 11000, PartnerBps: -1000},                // negative share
		{OperatorBps: 9000, PartnerBps: 1000},                  // partner share, no id
	}
	for i, share := range bad {
		if err := share.Validate(); !errors.Is(err, ErrInvalidSettlement) {
			t.Errorf("case %d: expected ErrInvalidSettlement, got %v", i, err)
		}
	}
}
