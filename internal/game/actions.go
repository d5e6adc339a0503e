package game

import "fmt"

// ActionType represents a player action
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a ActionType) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// ParseActionType parses the wire form of an action ("fold", "check", ...).
func ParseActionType(s string) (ActionType, bool) {
	switch s {
	case "fold":
		return Fold, true
	case "check":
		return Check, true
	case "call":
		return Call, true
	case "bet":
		return Bet, true
	case "raise":
		return Raise, true
	case "allin", "all-in":
		return AllIn, true
	}
	return 0, false
}

// PlayerAction is the action input contract. Amount is the total street
// commitment for bet/raise ("raise to") and ignored otherwise.
type PlayerAction struct {
	PlayerID string     `json:"player_id"`
	Type     ActionType `json:"type"`
	Amount   int        `json:"amount,omitempty"`
}

// ValidActions is the legality surface at one decision point, derived purely
// from the current player and table numbers.
type ValidActions struct {
	CanFold  bool `json:"can_fold"`
	CanCheck bool `json:"can_check"`
	CanCall  bool `json:"can_call"`
	CanBet   bool `json:"can_bet"`
	CanRaise bool `json:"can_raise"`
	CanAllIn bool `json:"can_all_in"`

	CallAmount  int `json:"call_amount"`  // chips needed to match the table bet
	MinBet      int `json:"min_bet"`      // opening bet lower bound (big blind)
	MaxBet      int `json:"max_bet"`      // opening bet upper bound (stack)
	MinRaiseTo  int `json:"min_raise_to"` // smallest legal total raise
	MaxRaiseTo  int `json:"max_raise_to"` // full commitment (stack + street bet)
	AllInAmount int `json:"all_in_amount"`
}

// Rejection reports an illegal action. It is a value, not an error: the state
// is unchanged and the actor may retry with a legal action.
type Rejection struct {
	Reason string `json:"reason"`
}

func reject(format string, args ...any) *Rejection {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}
