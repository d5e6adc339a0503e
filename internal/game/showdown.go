package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/feltworks/holdem/poker"
)

// FoldWinDescription is the fixed description used when a pot is won without
// a showdown.
const FoldWinDescription = "Opponent folded"

// ErrShowdownConfig wraps all showdown precondition violations. These are
// engine-invariant failures, not user input errors: they mean the
// orchestrator invoked showdown incorrectly. No state is mutated.
var ErrShowdownConfig = errors.New("invalid showdown configuration")

// ShowdownResult is the deterministic outcome of resolving a showdown.
type ShowdownResult struct {
	Winners         []int // seats of the winning players
	WinningHand     string
	IsSplitPot      bool
	FoldWin         bool
	AmountPerWinner int
	OddChipSeat     int         // seat awarded the non-divisible remainder, -1 if none
	Awards          map[int]int // seat -> chips won
	Evaluations     map[int]poker.HandRankResult
	Events          []GameEvent
}

// ResolveShowdown validates a showdown request, evaluates the surviving
// players' hands against the board and computes the pot distribution.
//
// When only one player remains unfolded the pot is awarded without hand
// evaluation (fold-out). Otherwise every non-folded player's best hand is
// evaluated and the pot split evenly among the tie set; the odd remainder
// chip of a non-divisible split goes to the first winner in seat order after
// the dealer.
//
// The event sequence is emitted in a fixed order: showdown-started,
// hand-evaluated (seat order), pot-awarded, hand-completed. Consumers rely
// on this order for history and replay.
func ResolveShowdown(players []*Player, community []poker.Card, pot int, dealerIndex int) (*ShowdownResult, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrShowdownConfig)
	}
	if len(community) != 5 {
		return nil, fmt.Errorf("%w: %d community cards, want 5", ErrShowdownConfig, len(community))
	}
	if pot <= 0 {
		return nil, fmt.Errorf("%w: pot is %d", ErrShowdownConfig, pot)
	}

	contenders := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Status == StatusFolded || p.Status == StatusOut {
			continue
		}
		if len(p.HoleCards) != 2 {
			return nil, fmt.Errorf("%w: player %s has %d hole cards", ErrShowdownConfig, p.Name, len(p.HoleCards))
		}
		contenders = append(contenders, p)
	}
	if len(contenders) == 0 {
		return nil, fmt.Errorf("%w: every player has folded", ErrShowdownConfig)
	}

	now := time.Now()
	result := &ShowdownResult{
		OddChipSeat: -1,
		Awards:      make(map[int]int),
		Evaluations: make(map[int]poker.HandRankResult),
	}
	result.Events = append(result.Events, ShowdownStartedEvent{
		PlayerCount: len(contenders),
		Pot:         pot,
		timestamp:   now,
	})

	// Folded players' hands are evaluated for informational display only;
	// they never influence the winner.
	for _, p := range players {
		if p.Status == StatusFolded && len(p.HoleCards) == 2 {
			if eval, err := poker.Evaluate(append(append([]poker.Card{}, p.HoleCards...), community...)); err == nil {
				result.Evaluations[p.Seat] = eval
			}
		}
	}

	if len(contenders) == 1 {
		winner := contenders[0]
		result.FoldWin = true
		result.Winners = []int{winner.Seat}
		result.WinningHand = FoldWinDescription
		result.AmountPerWinner = pot
		result.Awards[winner.Seat] = pot

		result.Events = append(result.Events,
			PotAwardedEvent{
				WinnerIDs:       []string{winner.ID},
				AmountPerWinner: pot,
				Description:     FoldWinDescription,
				timestamp:       now,
			},
			HandCompletedEvent{
				Winners:     result.Winners,
				WinningHand: FoldWinDescription,
				Pot:         pot,
				FoldWin:     true,
				timestamp:   now,
			})
		return result, nil
	}

	// Genuine showdown: evaluate every contender in seat order.
	evals := make([]poker.HandRankResult, len(contenders))
	for i, p := range contenders {
		cards := append(append([]poker.Card{}, p.HoleCards...), community...)
		eval, err := poker.Evaluate(cards)
		if err != nil {
			return nil, fmt.Errorf("%w: evaluating %s: %v", ErrShowdownConfig, p.Name, err)
		}
		evals[i] = eval
		result.Evaluations[p.Seat] = eval
		result.Events = append(result.Events, HandEvaluatedEvent{
			Seat:      p.Seat,
			PlayerID:  p.ID,
			Name:      p.Name,
			Result:    eval,
			timestamp: now,
		})
	}

	winnerIdx := poker.Winners(evals)
	winnerSeats := make([]int, len(winnerIdx))
	winnerIDs := make([]string, len(winnerIdx))
	for i, idx := range winnerIdx {
		winnerSeats[i] = contenders[idx].Seat
		winnerIDs[i] = contenders[idx].ID
	}

	result.Winners = winnerSeats
	result.WinningHand = evals[winnerIdx[0]].Description
	result.IsSplitPot = len(winnerSeats) > 1
	result.AmountPerWinner = pot / len(winnerSeats)
	for _, seat := range winnerSeats {
		result.Awards[seat] = result.AmountPerWinner
	}

	// The odd chip goes to the first winner in seat order after the dealer.
	oddChipID := ""
	if remainder := pot % len(winnerSeats); remainder > 0 {
		seat := firstSeatAfter(dealerIndex, winnerSeats, len(players))
		result.OddChipSeat = seat
		result.Awards[seat] += remainder
		for i, s := range winnerSeats {
			if s == seat {
				oddChipID = winnerIDs[i]
			}
		}
	}

	result.Events = append(result.Events,
		PotAwardedEvent{
			WinnerIDs:       winnerIDs,
			AmountPerWinner: result.AmountPerWinner,
			OddChipWinnerID: oddChipID,
			IsSplitPot:      result.IsSplitPot,
			Description:     result.WinningHand,
			timestamp:       now,
		},
		HandCompletedEvent{
			Winners:     winnerSeats,
			WinningHand: result.WinningHand,
			Pot:         pot,
			timestamp:   now,
		})

	return result, nil
}

// firstSeatAfter returns the first seat in the candidate set encountered
// walking clockwise from (but excluding) the given seat.
func firstSeatAfter(from int, candidates []int, numSeats int) int {
	inSet := make(map[int]bool, len(candidates))
	for _, s := range candidates {
		inSet[s] = true
	}
	for i := 1; i <= numSeats; i++ {
		seat := (from + i) % numSeats
		if inSet[seat] {
			return seat
		}
	}
	return candidates[0]
}
