package game

import (
	"time"

	"github.com/feltworks/holdem/poker"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeHandStart       EventType = "hand_start"
	EventTypeStreetChange    EventType = "street_change"
	EventTypePlayerAction    EventType = "player_action"
	EventTypeShowdownStarted EventType = "showdown_started"
	EventTypeHandEvaluated   EventType = "hand_evaluated"
	EventTypePotAwarded      EventType = "pot_awarded"
	EventTypeHandCompleted   EventType = "hand_completed"
	EventTypeHandError       EventType = "hand_error"
)

func (et EventType) String() string { return string(et) }

// GameEvent represents any event that occurs during a poker hand
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartEvent is published when a new hand begins
type HandStartEvent struct {
	HandID     string
	HandNumber int
	Players    []*Player
	DealerSeat int
	SmallBlind int
	BigBlind   int
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// StreetChangeEvent is published when a new street is dealt
type StreetChangeEvent struct {
	Street    Street
	Community []poker.Card
	Pot       int
	timestamp time.Time
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published when a player acts
type PlayerActionEvent struct {
	PlayerID  string
	Name      string
	Seat      int
	Street    Street
	Action    ActionType
	Amount    int
	PotAfter  int
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// ShowdownStartedEvent opens the settlement event sequence.
type ShowdownStartedEvent struct {
	PlayerCount int
	Pot         int
	timestamp   time.Time
}

func (e ShowdownStartedEvent) EventType() EventType { return EventTypeShowdownStarted }
func (e ShowdownStartedEvent) Timestamp() time.Time { return e.timestamp }

// HandEvaluatedEvent is emitted once per active player, in seat order,
// always before PotAwardedEvent. History logs depend on this ordering.
type HandEvaluatedEvent struct {
	Seat      int
	PlayerID  string
	Name      string
	Result    poker.HandRankResult
	timestamp time.Time
}

func (e HandEvaluatedEvent) EventType() EventType { return EventTypeHandEvaluated }
func (e HandEvaluatedEvent) Timestamp() time.Time { return e.timestamp }

// PotAwardedEvent reports the pot distribution.
type PotAwardedEvent struct {
	WinnerIDs       []string
	AmountPerWinner int
	OddChipWinnerID string // empty when the pot split evenly
	IsSplitPot      bool
	Description     string
	timestamp       time.Time
}

func (e PotAwardedEvent) EventType() EventType { return EventTypePotAwarded }
func (e PotAwardedEvent) Timestamp() time.Time { return e.timestamp }

// HandCompletedEvent closes the settlement event sequence.
type HandCompletedEvent struct {
	HandID      string
	Winners     []int
	WinningHand string
	Pot         int
	FoldWin     bool
	timestamp   time.Time
}

func (e HandCompletedEvent) EventType() EventType { return EventTypeHandCompleted }
func (e HandCompletedEvent) Timestamp() time.Time { return e.timestamp }

// HandErrorEvent surfaces an orchestrator-level fault. The table remains
// queryable; the hand is aborted rather than left mid-phase.
type HandErrorEvent struct {
	HandID    string
	Stage     string
	Err       error
	timestamp time.Time
}

func (e HandErrorEvent) EventType() EventType { return EventTypeHandError }
func (e HandErrorEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{subscribers: make([]EventSubscriber, 0)}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
