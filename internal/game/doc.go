// Package game implements the core Texas Hold'em rules engine: betting-round
// legality, table state transitions, showdown resolution and the hand
// lifecycle.
//
// The central type is TableState, an immutable snapshot of one hand in
// progress. Every transition (PostBlinds, ApplyAction, street advancement,
// settlement) returns a fresh snapshot; the previous one remains valid. This
// keeps the engine deterministic, replayable and trivially testable.
//
// # Basic Usage
//
// Drive a complete hand with the lifecycle orchestrator:
//
//	rng := rand.New(rand.NewSource(42))
//	hand, _ := game.NewHand(players, game.HandConfig{SmallBlind: 5, BigBlind: 10}, rng)
//	result, err := hand.Run(ctx)
//
// Or use the transition functions directly:
//
//	state = game.PostBlinds(state)
//	va := game.ValidActionsFor(state)
//	next, rejection := game.ApplyAction(state, action)
//
// # Error Model
//
// Precondition violations (evaluating short hands, malformed showdown input)
// are returned as errors and indicate orchestrator bugs. Illegal player
// actions are never errors: ApplyAction returns a *Rejection with a reason
// and leaves the state untouched so the actor can retry.
//
// # Scope
//
// Side pots are not computed: when players are all-in for unequal amounts the
// single pot is still split evenly among showdown winners.
package game
