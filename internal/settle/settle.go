// Package settle models post-hand settlement and revenue attribution as data.
// Nothing here moves chips: the game engine is the only authority over stacks,
// and these types exist so downstream accounting can consume a validated,
// self-consistent description of what happened.
package settle

import (
	"errors"
	"fmt"
	"time"

	"github.com/feltworks/holdem/internal/game"
)

// ErrInvalidSettlement reports an inconsistent settlement document.
var ErrInvalidSettlement = errors.New("invalid settlement")

// Entry is one player's net chip movement for a hand. Winners carry positive
// amounts, contributors negative; the sum over a hand is always zero.
type Entry struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Amount   int    `json:"amount"`
}

// Settlement describes the chip flow of one completed hand.
type Settlement struct {
	HandID    string    `json:"hand_id"`
	Pot       int       `json:"pot"`
	Entries   []Entry   `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks internal consistency: a positive pot, at least one winner
// and entries that net to zero.
func (s *Settlement) Validate() error {
	if s.HandID == "" {
		return fmt.Errorf("%w: missing hand id", ErrInvalidSettlement)
	}
	if s.Pot <= 0 {
		return fmt.Errorf("%w: pot must be positive, got %d", ErrInvalidSettlement, s.Pot)
	}
	if len(s.Entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidSettlement)
	}

	net, winners := 0, 0
	for _, entry := range s.Entries {
		if entry.PlayerID == "" {
			return fmt.Errorf("%w: entry without player id", ErrInvalidSettlement)
		}
		net += entry.Amount
		if entry.Amount > 0 {
			winners++
		}
	}
	if net != 0 {
		return fmt.Errorf("%w: entries net to %d, want 0", ErrInvalidSettlement, net)
	}
	if winners == 0 {
		return fmt.Errorf("%w: no winning entry", ErrInvalidSettlement)
	}
	return nil
}

// FromHand derives a settlement from a completed hand by diffing final stacks
// against the stacks recorded at hand start.
func FromHand(result *game.HandResult, startingStacks map[string]int) (*Settlement, error) {
	if result == nil || result.FinalState == nil {
		return nil, fmt.Errorf("%w: missing hand result", ErrInvalidSettlement)
	}

	settlement := &Settlement{
		HandID:    result.HandID,
		Pot:       result.Pot,
		CreatedAt: time.Now(),
	}
	for _, p := range result.FinalState.Players {
		before, ok := startingStacks[p.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no starting stack for %s", ErrInvalidSettlement, p.ID)
		}
		if delta := p.Chips - before; delta != 0 {
			settlement.Entries = append(settlement.Entries, Entry{
				PlayerID: p.ID,
				Seat:     p.Seat,
				Amount:   delta,
			})
		}
	}
	if err := settlement.Validate(); err != nil {
		return nil, err
	}
	return settlement, nil
}

// RevenueShare describes how table revenue would be attributed between the
// operator and partners. It is descriptive only; no rake is ever taken from
// a pot and no chips move because of it.
type RevenueShare struct {
	OperatorBps int    `json:"operator_bps"` // basis points of attributable revenue
	PartnerBps  int    `json:"partner_bps"`
	PartnerID   string `json:"partner_id,omitempty"`
}

// Validate checks that the shares describe a complete split.
func (r *RevenueShare) Validate() error {
	if r.OperatorBps < 0 || r.PartnerBps < 0 {
		return fmt.Errorf("%w: negative share", ErrInvalidSettlement)
	}
	if r.OperatorBps+r.PartnerBps != 10000 {
		return fmt.Errorf("%w: shares sum to %d bps, want 10000",
			ErrInvalidSettlement, r.OperatorBps+r.PartnerBps)
	}
	if r.PartnerBps > 0 && r.PartnerID == "" {
		return fmt.Errorf("%w: partner share without partner id", ErrInvalidSettlement)
	}
	return nil
}
