package game

import (
	"context"
)

// Agent makes betting decisions for one seat. It is queried only when that
// seat is due to act. The engine does not care how the decision is produced:
// an AI policy, a human at a terminal or a remote connection all satisfy the
// same contract.
//
// The state passed in is a read-only snapshot; agents must not mutate it.
// Implementations may block (a human thinking, a network round trip); the
// context is cancelled when the engine stops waiting.
type Agent interface {
	MakeDecision(ctx context.Context, state *TableState, actions ValidActions) PlayerAction
}

// AgentFunc adapts a plain function to the Agent interface.
type AgentFunc func(ctx context.Context, state *TableState, actions ValidActions) PlayerAction

// MakeDecision implements Agent.
func (f AgentFunc) MakeDecision(ctx context.Context, state *TableState, actions ValidActions) PlayerAction {
	return f(ctx, state, actions)
}

// RejectionAware is implemented by agents that relay decisions to a person,
// local or remote. The engine reports why the previous decision was rejected
// before asking again, so the client can show the reason and resubmit.
type RejectionAware interface {
	OnRejection(rejection Rejection)
}

// FoldAgent always folds (checking when free). Used as the fallback when a
// seat has no agent bound.
type FoldAgent struct{}

// MakeDecision implements Agent.
func (FoldAgent) MakeDecision(_ context.Context, state *TableState, actions ValidActions) PlayerAction {
	return safeExit(state, actions)
}

// safeExit returns a check when it is free, otherwise a fold. It is the
// action applied on decision timeouts and agent failures.
func safeExit(state *TableState, actions ValidActions) PlayerAction {
	p := state.CurrentPlayer()
	id := ""
	if p != nil {
		id = p.ID
	}
	if actions.CanCheck {
		return PlayerAction{PlayerID: id, Type: Check}
	}
	return PlayerAction{PlayerID: id, Type: Fold}
}
