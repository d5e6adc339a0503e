package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/feltworks/holdem/poker"
)

// maxRejectedDecisions bounds how often an agent may retry after an illegal
// action before the engine folds the seat.
const maxRejectedDecisions = 3

// ErrNotEnoughPlayers is returned when a hand is started with fewer than two
// funded players.
var ErrNotEnoughPlayers = errors.New("need at least 2 players with chips")

// HandConfig carries the per-hand parameters.
type HandConfig struct {
	HandID          string
	HandNumber      int
	SmallBlind      int
	BigBlind        int
	DealerIndex     int
	DecisionTimeout time.Duration // 0 disables the timeout
}

// HandResult is the outcome of a completed hand.
type HandResult struct {
	HandID       string
	WinnerIDs    []string
	WinningHand  string
	Pot          int
	ShowdownType string // "fold" or "showdown"
	FinalState   *TableState
}

// Hand drives a single hand through its phases: blinds, hole cards, the four
// betting streets, showdown and settlement. It owns the deck and the only
// mutable reference to the evolving TableState; every published snapshot is
// immutable.
type Hand struct {
	state         *TableState
	deck          *poker.Deck
	agents        map[string]Agent
	defaultAgent  Agent
	bus           EventBus
	logger        *log.Logger
	clock         quartz.Clock
	cfg           HandConfig
	startingChips int
}

// HandOption customizes a Hand.
type HandOption func(*Hand)

// WithEventBus routes the hand's events through the given bus.
func WithEventBus(bus EventBus) HandOption {
	return func(h *Hand) { h.bus = bus }
}

// WithLogger sets the hand's logger.
func WithLogger(logger *log.Logger) HandOption {
	return func(h *Hand) { h.logger = logger }
}

// WithClock injects the clock used for decision timeouts (mockable in tests).
func WithClock(clock quartz.Clock) HandOption {
	return func(h *Hand) { h.clock = clock }
}

// WithAgent binds an agent to a player ID.
func WithAgent(playerID string, agent Agent) HandOption {
	return func(h *Hand) { h.agents[playerID] = agent }
}

// WithDefaultAgent sets the agent used for seats without an explicit binding.
func WithDefaultAgent(agent Agent) HandOption {
	return func(h *Hand) { h.defaultAgent = agent }
}

// WithDeck provides a pre-shuffled deck for deterministic testing.
func WithDeck(deck *poker.Deck) HandOption {
	return func(h *Hand) { h.deck = deck }
}

// NewHand creates a hand for the given players. The rng drives the shuffle
// unless a deck is supplied via WithDeck.
func NewHand(players []*Player, cfg HandConfig, rng *rand.Rand, opts ...HandOption) (*Hand, error) {
	funded := 0
	for _, p := range players {
		if p.Chips > 0 {
			funded++
		}
	}
	if funded < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if cfg.HandID == "" {
		cfg.HandID = fmt.Sprintf("hand-%d", cfg.HandNumber)
	}

	h := &Hand{
		state:        NewHandState(players, cfg.DealerIndex, cfg.SmallBlind, cfg.BigBlind, cfg.HandNumber),
		agents:       make(map[string]Agent),
		defaultAgent: FoldAgent{},
		bus:          NewEventBus(),
		logger:       log.New(io.Discard),
		clock:        quartz.NewReal(),
		cfg:          cfg,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.deck == nil {
		h.deck = poker.NewDeck(rng)
	}
	h.startingChips = h.state.TotalChips()
	return h, nil
}

// EventBus returns the bus the hand publishes to.
func (h *Hand) EventBus() EventBus { return h.bus }

// State returns the current snapshot.
func (h *Hand) State() *TableState { return h.state }

// Run plays the hand to completion and returns the result.
//
// After every betting round the phase ladder is checked in order: fold-out
// settles immediately with no showdown; all remaining players all-in deals
// the rest of the board with no further betting; otherwise the next street
// is dealt and a new betting round opens. The order decides whether hand
// evaluation ever runs.
func (h *Hand) Run(ctx context.Context) (*HandResult, error) {
	if err := h.begin(); err != nil {
		h.abort("begin", err)
		return nil, err
	}

	for h.state.Street != StreetComplete {
		if err := h.playBettingRound(ctx); err != nil {
			h.abort("betting", err)
			return nil, err
		}

		switch {
		case h.state.PlayersInHand() <= 1:
			// (a) fold-out: settle straight away, never evaluate for the win
			return h.settleFoldOut()

		case h.state.playersAbleToAct() <= 1 && len(h.state.Community) < 5:
			// (b) all-in runout: deal the remaining board, no more betting
			if err := h.runOutBoard(); err != nil {
				h.abort("runout", err)
				return nil, err
			}
			return h.settleShowdown()

		case h.state.Street == StreetRiver:
			return h.settleShowdown()

		default:
			// (c) next street, new betting round
			if err := h.advanceStreet(); err != nil {
				h.abort("deal", err)
				return nil, err
			}
		}
	}

	return nil, errors.New("hand completed without settlement")
}

// begin posts the blinds and deals hole cards.
func (h *Hand) begin() error {
	h.state = PostBlinds(h.state)

	next := h.state.Clone()
	for _, p := range next.Players {
		if !p.InHand() {
			continue
		}
		cards := h.deck.Deal(2)
		if cards == nil {
			return errors.New("deck exhausted dealing hole cards")
		}
		p.HoleCards = cards
	}
	h.state = next

	if err := h.state.Validate(); err != nil {
		return err
	}

	h.bus.Publish(HandStartEvent{
		HandID:     h.cfg.HandID,
		HandNumber: h.cfg.HandNumber,
		Players:    h.state.Players,
		DealerSeat: h.state.DealerIndex,
		SmallBlind: h.state.SmallBlind,
		BigBlind:   h.state.BigBlind,
		timestamp:  time.Now(),
	})

	h.logger.Debug("hand started",
		"handID", h.cfg.HandID, "players", len(h.state.Players),
		"blinds", fmt.Sprintf("%d/%d", h.state.SmallBlind, h.state.BigBlind))
	return nil
}

// playBettingRound processes decisions until the open round is complete.
func (h *Hand) playBettingRound(ctx context.Context) error {
	for !RoundComplete(h.state) {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := h.state.CurrentPlayer()
		if current == nil {
			return nil
		}

		agent := h.defaultAgent
		if a, ok := h.agents[current.ID]; ok {
			agent = a
		}

		va := ValidActionsFor(h.state)
		action := h.decide(ctx, agent, va)

		next, rejection := ApplyAction(h.state, action)
		for attempt := 0; rejection != nil && attempt < maxRejectedDecisions; attempt++ {
			h.logger.Warn("action rejected",
				"player", current.Name, "action", action.Type, "reason", rejection.Reason)
			if aware, ok := agent.(RejectionAware); ok {
				aware.OnRejection(*rejection)
			}
			action = h.decide(ctx, agent, va)
			next, rejection = ApplyAction(h.state, action)
		}
		if rejection != nil {
			// The agent keeps proposing illegal actions; fold the seat.
			action = PlayerAction{PlayerID: current.ID, Type: Fold}
			next, rejection = ApplyAction(h.state, action)
			if rejection != nil {
				return fmt.Errorf("forced fold rejected: %s", rejection.Reason)
			}
		}
		h.state = next

		h.bus.Publish(PlayerActionEvent{
			PlayerID:  current.ID,
			Name:      current.Name,
			Seat:      current.Seat,
			Street:    h.state.Street,
			Action:    action.Type,
			Amount:    action.Amount,
			PotAfter:  h.state.Pot,
			timestamp: time.Now(),
		})

		if err := h.state.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// decide queries the agent, applying the decision timeout when configured.
// A timed-out or cancelled wait checks when free, otherwise folds.
func (h *Hand) decide(ctx context.Context, agent Agent, va ValidActions) PlayerAction {
	if h.cfg.DecisionTimeout <= 0 {
		return agent.MakeDecision(ctx, h.state, va)
	}

	decisionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan PlayerAction, 1)
	state := h.state
	go func() {
		resultCh <- agent.MakeDecision(decisionCtx, state, va)
	}()

	timer := h.clock.NewTimer(h.cfg.DecisionTimeout)
	defer timer.Stop()

	select {
	case action := <-resultCh:
		return action
	case <-timer.C:
		h.logger.Info("decision timeout, auto-folding",
			"player", state.CurrentPlayer().Name, "timeout", h.cfg.DecisionTimeout)
		return safeExit(state, va)
	case <-ctx.Done():
		return safeExit(state, va)
	}
}

// advanceStreet moves to the next street and deals its community cards.
func (h *Hand) advanceStreet() error {
	h.state = NextStreet(h.state)

	need := communityCardsFor(h.state.Street) - len(h.state.Community)
	if need > 0 {
		cards := h.deck.Deal(need)
		if cards == nil {
			return errors.New("deck exhausted dealing community cards")
		}
		next := h.state.Clone()
		next.Community = append(next.Community, cards...)
		h.state = next
	}

	if err := h.state.Validate(); err != nil {
		return err
	}

	h.bus.Publish(StreetChangeEvent{
		Street:    h.state.Street,
		Community: h.state.Community,
		Pot:       h.state.Pot,
		timestamp: time.Now(),
	})

	h.logger.Debug("street dealt", "street", h.state.Street,
		"board", poker.FormatCards(h.state.Community))
	return nil
}

// runOutBoard deals all remaining community cards with no betting in between.
func (h *Hand) runOutBoard() error {
	for len(h.state.Community) < 5 {
		if err := h.advanceStreet(); err != nil {
			return err
		}
	}
	next := h.state.Clone()
	next.Street = StreetShowdown
	h.state = next
	return nil
}

// settleFoldOut awards the whole pot to the last player in the hand. No hand
// evaluation influences the winner.
func (h *Hand) settleFoldOut() (*HandResult, error) {
	var winner *Player
	for _, p := range h.state.Players {
		if p.InHand() {
			winner = p
			break
		}
	}
	if winner == nil {
		err := errors.New("fold-out with no remaining player")
		h.abort("settlement", err)
		return nil, err
	}

	pot := h.state.Pot
	next := h.state.Clone()
	next.Players[winner.Seat].Chips += pot
	next.Pot = 0
	next.Winners = []int{winner.Seat}
	next.WinningHand = FoldWinDescription
	next.Street = StreetComplete
	next.ActivePlayerIndex = -1
	h.state = next

	now := time.Now()
	h.bus.Publish(PotAwardedEvent{
		WinnerIDs:       []string{winner.ID},
		AmountPerWinner: pot,
		Description:     FoldWinDescription,
		timestamp:       now,
	})
	h.bus.Publish(HandCompletedEvent{
		HandID:      h.cfg.HandID,
		Winners:     next.Winners,
		WinningHand: FoldWinDescription,
		Pot:         pot,
		FoldWin:     true,
		timestamp:   now,
	})

	if err := h.checkConservation(); err != nil {
		return nil, err
	}

	h.logger.Debug("hand won by fold", "winner", winner.Name, "pot", pot)
	return &HandResult{
		HandID:       h.cfg.HandID,
		WinnerIDs:    []string{winner.ID},
		WinningHand:  FoldWinDescription,
		Pot:          pot,
		ShowdownType: "fold",
		FinalState:   h.state,
	}, nil
}

// settleShowdown resolves the showdown and applies the distribution.
func (h *Hand) settleShowdown() (*HandResult, error) {
	pot := h.state.Pot
	result, err := ResolveShowdown(h.state.Players, h.state.Community, pot, h.state.DealerIndex)
	if err != nil {
		h.abort("showdown", err)
		return nil, err
	}

	next := h.state.Clone()
	for seat, amount := range result.Awards {
		next.Players[seat].Chips += amount
	}
	next.Pot = 0
	next.Winners = result.Winners
	next.WinningHand = result.WinningHand
	next.Street = StreetComplete
	next.ActivePlayerIndex = -1
	h.state = next

	for _, event := range result.Events {
		h.bus.Publish(event)
	}

	if err := h.checkConservation(); err != nil {
		return nil, err
	}

	winnerIDs := make([]string, len(result.Winners))
	for i, seat := range result.Winners {
		winnerIDs[i] = h.state.Players[seat].ID
	}

	h.logger.Debug("hand settled at showdown",
		"winners", winnerIDs, "hand", result.WinningHand, "pot", pot)
	return &HandResult{
		HandID:       h.cfg.HandID,
		WinnerIDs:    winnerIDs,
		WinningHand:  result.WinningHand,
		Pot:          pot,
		ShowdownType: "showdown",
		FinalState:   h.state,
	}, nil
}

// checkConservation verifies that settlement neither created nor destroyed
// chips.
func (h *Hand) checkConservation() error {
	if total := h.state.TotalChips(); total != h.startingChips {
		err := fmt.Errorf("chip conservation violated: %d != %d", total, h.startingChips)
		h.logger.Error("chip conservation violation", "error", err)
		return err
	}
	return nil
}

// abort surfaces an orchestrator fault as a typed event and parks the hand in
// the complete phase so the table stays queryable.
func (h *Hand) abort(stage string, err error) {
	h.logger.Error("hand aborted", "stage", stage, "error", err)
	next := h.state.Clone()
	next.Street = StreetComplete
	next.ActivePlayerIndex = -1
	h.state = next
	h.bus.Publish(HandErrorEvent{
		HandID:    h.cfg.HandID,
		Stage:     stage,
		Err:       err,
		timestamp: time.Now(),
	})
}
