package ai

import (
	"context"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/poker"
)

// Style selects a built-in opponent personality.
type Style string

const (
	StyleRandom          Style = "random"
	StyleCallingStation  Style = "calling-station"
	StyleTightAggressive Style = "tag"
)

// New returns an agent for the given style. Unknown styles fall back to the
// calling station so a misconfigured table still plays hands.
func New(style Style, rng *rand.Rand, logger *log.Logger) game.Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	switch style {
	case StyleRandom:
		return &RandomAgent{rng: rng, logger: logger.WithPrefix("ai.random")}
	case StyleTightAggressive:
		return &TightAggressiveAgent{rng: rng, logger: logger.WithPrefix("ai.tag")}
	default:
		return &CallingStationAgent{logger: logger.WithPrefix("ai.station")}
	}
}

// RandomAgent picks uniformly among the legal actions, with raise and bet
// sizes drawn from the legal range. Useful as a baseline opponent and for
// soak-testing the engine's legality surface.
type RandomAgent struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandomAgent creates a random agent.
func NewRandomAgent(rng *rand.Rand, logger *log.Logger) *RandomAgent {
	return &RandomAgent{rng: rng, logger: logger.WithPrefix("ai.random")}
}

// MakeDecision implements game.Agent.
func (a *RandomAgent) MakeDecision(_ context.Context, state *game.TableState, va game.ValidActions) game.PlayerAction {
	id := actorID(state)

	type option struct {
		action game.PlayerAction
	}
	var options []option

	if va.CanCheck {
		options = append(options, option{game.PlayerAction{PlayerID: id, Type: game.Check}})
	}
	if va.CanCall {
		options = append(options, option{game.PlayerAction{PlayerID: id, Type: game.Call}})
	}
	if va.CanBet {
		amount := va.MinBet + a.rng.Intn(va.MaxBet-va.MinBet+1)
		options = append(options, option{game.PlayerAction{PlayerID: id, Type: game.Bet, Amount: amount}})
	}
	if va.CanRaise {
		amount := va.MinRaiseTo + a.rng.Intn(va.MaxRaiseTo-va.MinRaiseTo+1)
		options = append(options, option{game.PlayerAction{PlayerID: id, Type: game.Raise, Amount: amount}})
	}
	// folding is always on the menu, but weight it lightly when checking is free
	if !va.CanCheck {
		options = append(options, option{game.PlayerAction{PlayerID: id, Type: game.Fold}})
	}

	if len(options) == 0 {
		return game.PlayerAction{PlayerID: id, Type: game.Fold}
	}
	choice := options[a.rng.Intn(len(options))]
	a.logger.Debug("random decision", "action", choice.action.Type, "amount", choice.action.Amount)
	return choice.action
}

// CallingStationAgent checks when free and calls any bet. It never folds and
// never raises.
type CallingStationAgent struct {
	logger *log.Logger
}

// NewCallingStationAgent creates a calling station.
func NewCallingStationAgent(logger *log.Logger) *CallingStationAgent {
	return &CallingStationAgent{logger: logger.WithPrefix("ai.station")}
}

// MakeDecision implements game.Agent.
func (a *CallingStationAgent) MakeDecision(_ context.Context, state *game.TableState, va game.ValidActions) game.PlayerAction {
	id := actorID(state)
	if va.CanCheck {
		return game.PlayerAction{PlayerID: id, Type: game.Check}
	}
	if va.CanCall {
		return game.PlayerAction{PlayerID: id, Type: game.Call}
	}
	if va.CanAllIn {
		// facing a bet larger than the stack
		return game.PlayerAction{PlayerID: id, Type: game.AllIn}
	}
	return game.PlayerAction{PlayerID: id, Type: game.Fold}
}

// TightAggressiveAgent plays a tight preflop range and bets its strong hands
// hard after the flop. Preflop strength comes from the hole-card category;
// postflop strength from evaluating the made hand against the board, tempered
// by pot odds when facing a bet.
type TightAggressiveAgent struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewTightAggressiveAgent creates a tight-aggressive agent.
func NewTightAggressiveAgent(rng *rand.Rand, logger *log.Logger) *TightAggressiveAgent {
	return &TightAggressiveAgent{rng: rng, logger: logger.WithPrefix("ai.tag")}
}

// MakeDecision implements game.Agent.
func (a *TightAggressiveAgent) MakeDecision(_ context.Context, state *game.TableState, va game.ValidActions) game.PlayerAction {
	id := actorID(state)
	player := state.CurrentPlayer()
	if player == nil || len(player.HoleCards) != 2 {
		return game.PlayerAction{PlayerID: id, Type: game.Fold}
	}

	if state.Street == game.StreetPreflop {
		return a.preflop(id, player, state, va)
	}
	return a.postflop(id, player, state, va)
}

func (a *TightAggressiveAgent) preflop(id string, player *game.Player, state *game.TableState, va game.ValidActions) game.PlayerAction {
	category := poker.CategorizeHoleCards(player.HoleCards[0], player.HoleCards[1])
	a.logger.Debug("preflop decision", "player", player.Name, "category", category)

	switch category {
	case poker.CategoryPremium:
		if va.CanRaise {
			return game.PlayerAction{PlayerID: id, Type: game.Raise, Amount: a.raiseSize(state, va)}
		}
		if va.CanBet {
			return game.PlayerAction{PlayerID: id, Type: game.Bet, Amount: va.MaxBet / 4 * 3}
		}
		if va.CanCall {
			return game.PlayerAction{PlayerID: id, Type: game.Call}
		}
		return game.PlayerAction{PlayerID: id, Type: game.AllIn}

	case poker.CategoryStrong:
		if va.CanRaise && a.rng.Float64() < 0.5 {
			return game.PlayerAction{PlayerID: id, Type: game.Raise, Amount: va.MinRaiseTo}
		}
		if va.CanCall {
			return game.PlayerAction{PlayerID: id, Type: game.Call}
		}
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Fold}

	case poker.CategoryMedium, poker.CategoryWeak:
		// set-mine and speculate cheaply; fold to heavy pressure
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		if va.CanCall && va.CallAmount <= state.BigBlind*3 {
			return game.PlayerAction{PlayerID: id, Type: game.Call}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Fold}

	default:
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Fold}
	}
}

func (a *TightAggressiveAgent) postflop(id string, player *game.Player, state *game.TableState, va game.ValidActions) game.PlayerAction {
	cards := make([]poker.Card, 0, 7)
	cards = append(cards, player.HoleCards...)
	cards = append(cards, state.Community...)

	result, err := poker.Evaluate(cards)
	if err != nil {
		a.logger.Warn("postflop evaluation failed", "error", err)
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Fold}
	}

	a.logger.Debug("postflop decision", "player", player.Name,
		"hand", result.Description, "street", state.Street)

	switch {
	case result.Category >= poker.Straight:
		// monster: get the chips in
		if va.CanRaise {
			return game.PlayerAction{PlayerID: id, Type: game.Raise, Amount: a.raiseSize(state, va)}
		}
		if va.CanBet {
			return game.PlayerAction{PlayerID: id, Type: game.Bet, Amount: betSize(state, va)}
		}
		if va.CanCall {
			return game.PlayerAction{PlayerID: id, Type: game.Call}
		}
		return game.PlayerAction{PlayerID: id, Type: game.AllIn}

	case result.Category >= poker.TwoPair:
		if va.CanBet {
			return game.PlayerAction{PlayerID: id, Type: game.Bet, Amount: betSize(state, va)}
		}
		if va.CanCall {
			return game.PlayerAction{PlayerID: id, Type: game.Call}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Check}

	case result.Category == poker.OnePair:
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		// call when the price is right
		if va.CanCall && goodPotOdds(state.Pot, va.CallAmount) {
			return game.PlayerAction{PlayerID: id, Type: game.Call}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Fold}

	default:
		if va.CanCheck {
			return game.PlayerAction{PlayerID: id, Type: game.Check}
		}
		return game.PlayerAction{PlayerID: id, Type: game.Fold}
	}
}

// raiseSize picks a raise between the minimum and roughly pot size.
func (a *TightAggressiveAgent) raiseSize(state *game.TableState, va game.ValidActions) int {
	target := state.CurrentBet + state.Pot
	if target < va.MinRaiseTo {
		target = va.MinRaiseTo
	}
	if target > va.MaxRaiseTo {
		target = va.MaxRaiseTo
	}
	return target
}

// betSize returns roughly two-thirds pot, clamped to the legal range.
func betSize(state *game.TableState, va game.ValidActions) int {
	amount := state.Pot * 2 / 3
	if amount < va.MinBet {
		amount = va.MinBet
	}
	if amount > va.MaxBet {
		amount = va.MaxBet
	}
	return amount
}

// goodPotOdds reports whether calling offers at least 3:1.
func goodPotOdds(pot, callAmount int) bool {
	if callAmount <= 0 {
		return true
	}
	return pot >= callAmount*3
}

func actorID(state *game.TableState) string {
	if p := state.CurrentPlayer(); p != nil {
		return p.ID
	}
	return ""
}
