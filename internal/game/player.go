package game

import (
	"github.com/feltworks/holdem/poker"
)

// PlayerStatus tracks a player's participation in the current hand.
type PlayerStatus int

const (
	StatusActive PlayerStatus = iota
	StatusFolded
	StatusAllIn
	StatusOut
)

func (s PlayerStatus) String() string {
	return [...]string{"active", "folded", "allin", "out"}[s]
}

// Player represents a player within a table state snapshot.
type Player struct {
	ID        string
	Name      string
	Seat      int
	Chips     int // never negative
	HoleCards []poker.Card
	Status    PlayerStatus
	Bet       int // chips committed this street
	TotalBet  int // chips committed this hand
	IsDealer  bool
}

// InHand reports whether the player still contests the pot.
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// CanAct reports whether the player may take a betting decision.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive && p.Chips > 0
}

// clone returns a deep copy of the player.
func (p *Player) clone() *Player {
	cp := *p
	if p.HoleCards != nil {
		cp.HoleCards = make([]poker.Card, len(p.HoleCards))
		copy(cp.HoleCards, p.HoleCards)
	}
	return &cp
}
