package game

import (
	"fmt"

	"github.com/feltworks/holdem/poker"
)

// Street represents the phase of a hand.
type Street int

const (
	StreetWaiting Street = iota
	StreetPreflop
	StreetFlop
	StreetTurn
	StreetRiver
	StreetShowdown
	StreetComplete
)

func (s Street) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown", "complete"}[s]
}

// communityCardsFor returns the community card count required on a street.
func communityCardsFor(s Street) int {
	switch s {
	case StreetFlop:
		return 3
	case StreetTurn:
		return 4
	case StreetRiver, StreetShowdown:
		return 5
	default:
		return 0
	}
}

// TableState is the aggregate snapshot of one hand in progress. Snapshots are
// immutable: transition functions clone and return a new state, never mutate
// the receiver. Consumers must treat a snapshot as read-only.
type TableState struct {
	Players           []*Player // seat order, fixed for the hand
	Street            Street
	Community         []poker.Card
	Pot               int
	CurrentBet        int
	MinRaise          int
	DealerIndex       int
	ActivePlayerIndex int
	LastRaiserIndex   int
	ActionsThisRound  int
	Winners           []int
	WinningHand       string
	SmallBlind        int
	BigBlind          int
	HandNumber        int
}

// Clone returns a deep copy of the state.
func (s *TableState) Clone() *TableState {
	cp := *s
	cp.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp.Players[i] = p.clone()
	}
	if s.Community != nil {
		cp.Community = make([]poker.Card, len(s.Community))
		copy(cp.Community, s.Community)
	}
	if s.Winners != nil {
		cp.Winners = make([]int, len(s.Winners))
		copy(cp.Winners, s.Winners)
	}
	return &cp
}

// TotalChips returns stacks plus pot, the conserved quantity of a hand.
func (s *TableState) TotalChips() int {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}

// PlayersInHand counts players who still contest the pot.
func (s *TableState) PlayersInHand() int {
	n := 0
	for _, p := range s.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// playersAbleToAct counts active players with chips behind.
func (s *TableState) playersAbleToAct() int {
	n := 0
	for _, p := range s.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// CurrentPlayer returns the player due to act, or nil if the betting round is
// closed.
func (s *TableState) CurrentPlayer() *Player {
	if s.ActivePlayerIndex < 0 || s.ActivePlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.ActivePlayerIndex]
}

// nextActiveFrom returns the first seat at or after from (wrapping) whose
// player can still act, or -1 if none.
func (s *TableState) nextActiveFrom(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		seat := ((from+i)%n + n) % n
		if s.Players[seat].Status == StatusActive {
			return seat
		}
	}
	return -1
}

// Validate checks the structural invariants that must hold after every
// transition. A failure indicates an engine bug, not bad user input.
func (s *TableState) Validate() error {
	if s.Pot < 0 {
		return fmt.Errorf("pot is negative: %d", s.Pot)
	}
	for _, p := range s.Players {
		if p.Chips < 0 {
			return fmt.Errorf("player %s has negative stack: %d", p.Name, p.Chips)
		}
		if p.InHand() && len(p.HoleCards) != 0 && len(p.HoleCards) != 2 {
			return fmt.Errorf("player %s has %d hole cards", p.Name, len(p.HoleCards))
		}
	}
	if want := communityCardsFor(s.Street); s.Street >= StreetFlop && s.Street <= StreetShowdown && len(s.Community) != want {
		return fmt.Errorf("street %s has %d community cards, want %d", s.Street, len(s.Community), want)
	}
	return nil
}

// NewHandState creates a fresh TableState for a new hand. Players carry their
// stacks over; per-hand fields are reset. Players without chips are marked
// out.
func NewHandState(players []*Player, dealerIndex, smallBlind, bigBlind, handNumber int) *TableState {
	seated := make([]*Player, len(players))
	for i, p := range players {
		cp := p.clone()
		cp.Seat = i
		cp.HoleCards = nil
		cp.Bet = 0
		cp.TotalBet = 0
		cp.IsDealer = i == dealerIndex
		if cp.Chips > 0 {
			cp.Status = StatusActive
		} else {
			cp.Status = StatusOut
		}
		seated[i] = cp
	}

	return &TableState{
		Players:           seated,
		Street:            StreetWaiting,
		Pot:               0,
		CurrentBet:        0,
		MinRaise:          bigBlind,
		DealerIndex:       dealerIndex,
		ActivePlayerIndex: -1,
		LastRaiserIndex:   -1,
		SmallBlind:        smallBlind,
		BigBlind:          bigBlind,
		HandNumber:        handNumber,
	}
}
