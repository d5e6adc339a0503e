// Package training produces advisory hints for the seat currently due to act.
// Hints are derived from the same public snapshot an agent sees; the advisor
// never mutates state and never acts, so it can be layered over any table as
// a teaching aid.
package training

import (
	"fmt"
	"strings"

	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/poker"
)

// Hint is the advice for one decision point.
type Hint struct {
	Street       string          `json:"street"`
	HandLabel    string          `json:"hand_label"`   // "Premium" preflop, "Two Pair, Kings and Nines" postflop
	PotOdds      float64         `json:"pot_odds"`     // pot : call ratio; 0 when checking is free
	Suggested    game.ActionType `json:"suggested"`    // one legal action
	SuggestedAmt int             `json:"suggested_amt"` // for bet/raise suggestions
	Explanation  string          `json:"explanation"`
}

// Advisor generates hints.
type Advisor struct{}

// NewAdvisor creates an advisor.
func NewAdvisor() *Advisor { return &Advisor{} }

// Advise returns a hint for the player due to act, or an error when no
// betting round is open.
func (a *Advisor) Advise(state *game.TableState, va game.ValidActions) (*Hint, error) {
	player := state.CurrentPlayer()
	if player == nil || len(player.HoleCards) != 2 {
		return nil, fmt.Errorf("no decision pending")
	}

	hint := &Hint{Street: state.Street.String()}
	var reasons []string

	if state.Street == game.StreetPreflop {
		category := poker.CategorizeHoleCards(player.HoleCards[0], player.HoleCards[1])
		hint.HandLabel = string(category)
		reasons = append(reasons, fmt.Sprintf("%s %s is a %s holding",
			player.HoleCards[0], player.HoleCards[1], strings.ToLower(string(category))))
	} else {
		cards := append(append([]poker.Card{}, player.HoleCards...), state.Community...)
		result, err := poker.Evaluate(cards)
		if err != nil {
			return nil, err
		}
		hint.HandLabel = result.Description
		reasons = append(reasons, fmt.Sprintf("you hold %s", result.Description))
	}

	if va.CanCall && va.CallAmount > 0 {
		hint.PotOdds = float64(state.Pot) / float64(va.CallAmount)
		reasons = append(reasons, fmt.Sprintf("calling %d to win %d (%.1f:1)",
			va.CallAmount, state.Pot, hint.PotOdds))
	}

	hint.Suggested, hint.SuggestedAmt = a.suggest(state, player, va, hint)
	reasons = append(reasons, fmt.Sprintf("suggested action: %s", hint.Suggested))
	hint.Explanation = strings.Join(reasons, "; ")
	return hint, nil
}

func (a *Advisor) suggest(state *game.TableState, player *game.Player, va game.ValidActions, hint *Hint) (game.ActionType, int) {
	strong := a.isStrong(state, player)

	switch {
	case strong && va.CanRaise:
		return game.Raise, va.MinRaiseTo
	case strong && va.CanBet:
		amount := state.Pot * 2 / 3
		if amount < va.MinBet {
			amount = va.MinBet
		}
		if amount > va.MaxBet {
			amount = va.MaxBet
		}
		return game.Bet, amount
	case strong && va.CanCall:
		return game.Call, 0
	case va.CanCheck:
		return game.Check, 0
	case va.CanCall && hint.PotOdds >= 3 && !a.isTrash(state, player):
		return game.Call, 0
	default:
		return game.Fold, 0
	}
}

func (a *Advisor) isTrash(state *game.TableState, player *game.Player) bool {
	if state.Street == game.StreetPreflop {
		return poker.CategorizeHoleCards(player.HoleCards[0], player.HoleCards[1]) == poker.CategoryTrash
	}
	cards := append(append([]poker.Card{}, player.HoleCards...), state.Community...)
	result, err := poker.Evaluate(cards)
	if err != nil {
		return true
	}
	return result.Category == poker.HighCard
}

func (a *Advisor) isStrong(state *game.TableState, player *game.Player) bool {
	if state.Street == game.StreetPreflop {
		category := poker.CategorizeHoleCards(player.HoleCards[0], player.HoleCards[1])
		return category == poker.CategoryPremium || category == poker.CategoryStrong
	}
	cards := append(append([]poker.Card{}, player.HoleCards...), state.Community...)
	result, err := poker.Evaluate(cards)
	if err != nil {
		return false
	}
	return result.Category >= poker.TwoPair
}
