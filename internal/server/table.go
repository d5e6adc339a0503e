package server

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feltworks/holdem/internal/ai"
	"github.com/feltworks/holdem/internal/config"
	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/internal/history"
	"github.com/feltworks/holdem/internal/training"
	"github.com/feltworks/holdem/poker"
)

// seat binds a player to its decision source: a connection for remote
// players, an agent for bots.
type seat struct {
	player *game.Player
	conn   *Connection
	agent  game.Agent
}

// Table seats players and runs hands back to back. Hands run strictly one at
// a time; all seat mutation goes through the mutex so joins and leaves
// between hands never race the runner.
type Table struct {
	ID      string
	cfg     config.TableConfig
	timeout time.Duration
	logger  *log.Logger
	rng     *rand.Rand
	writer  history.Writer
	advisor *training.Advisor

	mu          sync.Mutex
	seats       []*seat
	pending     map[string]chan game.PlayerAction
	dealerIndex int
	handNumber  int
}

// NewTable creates a table from its configuration.
func NewTable(cfg config.TableConfig, writer history.Writer, rng *rand.Rand, logger *log.Logger) (*Table, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	if writer == nil {
		writer = history.NoOpWriter{}
	}
	t := &Table{
		ID:      cfg.Name,
		cfg:     cfg,
		timeout: timeout,
		logger:  logger.WithPrefix("table." + cfg.Name),
		rng:     rng,
		writer:  writer,
		pending: make(map[string]chan game.PlayerAction),
	}
	if cfg.Training {
		t.advisor = training.NewAdvisor()
	}
	return t, nil
}

// Join seats a player. Returns the seat number and starting chips.
func (t *Table) Join(playerID string, buyIn int, conn *Connection) (int, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.seats {
		if s.player.ID == playerID {
			return 0, 0, fmt.Errorf("player %s already seated", playerID)
		}
	}
	if len(t.seats) >= t.cfg.MaxPlayers {
		return 0, 0, fmt.Errorf("table %s is full", t.ID)
	}
	if buyIn <= 0 {
		buyIn = t.cfg.BuyIn
	}

	player := &game.Player{
		ID:     playerID,
		Name:   playerID,
		Seat:   len(t.seats),
		Chips:  buyIn,
		Status: game.StatusActive,
	}
	t.seats = append(t.seats, &seat{player: player, conn: conn})
	t.pending[playerID] = make(chan game.PlayerAction, 1)

	t.logger.Info("player joined", "player", playerID, "seat", player.Seat, "chips", buyIn)
	return player.Seat, buyIn, nil
}

// AddBot seats a computer opponent.
func (t *Table) AddBot(name string, style ai.Style, buyIn int) error {
	agent := ai.New(style, t.rng, t.logger)
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.seats) >= t.cfg.MaxPlayers {
		return fmt.Errorf("table %s is full", t.ID)
	}
	if buyIn <= 0 {
		buyIn = t.cfg.BuyIn
	}
	player := &game.Player{
		ID:     name,
		Name:   name,
		Seat:   len(t.seats),
		Chips:  buyIn,
		Status: game.StatusActive,
	}
	t.seats = append(t.seats, &seat{player: player, agent: agent})
	t.logger.Info("bot seated", "bot", name, "style", style, "seat", player.Seat)
	return nil
}

// Leave removes a player. During a hand the player's pending decision channel
// is dropped, so the engine folds the seat out; the settled stack leaves the
// table with the player.
func (t *Table) Leave(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.seats {
		if s.player.ID == playerID {
			t.seats = append(t.seats[:i], t.seats[i+1:]...)
			delete(t.pending, playerID)
			for j, remaining := range t.seats {
				remaining.player.Seat = j
			}
			t.logger.Info("player left", "player", playerID)
			return nil
		}
	}
	return fmt.Errorf("player %s not seated", playerID)
}

// SubmitAction delivers a remote player's decision to the waiting hand.
func (t *Table) SubmitAction(playerID, action string, amount int) error {
	actionType, ok := game.ParseActionType(action)
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}

	t.mu.Lock()
	ch, ok := t.pending[playerID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("player %s not seated", playerID)
	}

	select {
	case ch <- game.PlayerAction{PlayerID: playerID, Type: actionType, Amount: amount}:
		return nil
	default:
		return fmt.Errorf("no decision pending for %s", playerID)
	}
}

// PlayerCount returns the number of seated players.
func (t *Table) PlayerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seats)
}

// Info describes the table for listings.
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TableInfo{
		ID:          t.ID,
		PlayerCount: len(t.seats),
		MaxPlayers:  t.cfg.MaxPlayers,
		Stakes:      fmt.Sprintf("%d/%d", t.cfg.SmallBlind, t.cfg.BigBlind),
	}
}

// Run plays hands until the context is cancelled. With fewer than two funded
// players the runner idles until someone joins.
func (t *Table) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if !t.ready() {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if err := t.playHand(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			t.logger.Error("hand failed", "error", err)
		}
	}
}

func (t *Table) ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	funded := 0
	for _, s := range t.seats {
		if s.player.Chips > 0 {
			funded++
		}
	}
	return funded >= 2
}

func (t *Table) playHand(ctx context.Context) error {
	t.mu.Lock()
	t.handNumber++
	handNumber := t.handNumber
	players := make([]*game.Player, len(t.seats))
	opts := []game.HandOption{game.WithLogger(t.logger)}
	for i, s := range t.seats {
		players[i] = s.player
		if s.conn != nil {
			opts = append(opts, game.WithAgent(s.player.ID, &networkAgent{table: t, seat: s}))
		} else if s.agent != nil {
			opts = append(opts, game.WithAgent(s.player.ID, s.agent))
		}
	}
	dealerIndex := t.dealerIndex % len(t.seats)
	t.mu.Unlock()

	hand, err := game.NewHand(players, game.HandConfig{
		HandNumber:      handNumber,
		HandID:          fmt.Sprintf("%s-%d", t.ID, handNumber),
		SmallBlind:      t.cfg.SmallBlind,
		BigBlind:        t.cfg.BigBlind,
		DealerIndex:     dealerIndex,
		DecisionTimeout: t.timeout,
	}, t.rng, opts...)
	if err != nil {
		return err
	}

	hand.EventBus().Subscribe(history.NewRecorder(t.writer, t.logger))
	hand.EventBus().Subscribe(&eventForwarder{table: t})

	result, err := hand.Run(ctx)
	if err != nil {
		return err
	}

	// Seats may have shifted mid-hand (a disconnect removes and re-indexes),
	// so settled stacks are matched back by player ID, never by index.
	settled := make(map[string]*game.Player, len(result.FinalState.Players))
	for _, p := range result.FinalState.Players {
		settled[p.ID] = p
	}
	t.mu.Lock()
	for i, s := range t.seats {
		if p, ok := settled[s.player.ID]; ok {
			p.Seat = i
			s.player = p
		}
	}
	if n := len(t.seats); n > 0 {
		t.dealerIndex = (dealerIndex + 1) % n
	}
	t.mu.Unlock()

	t.logger.Info("hand complete",
		"handID", result.HandID, "winners", result.WinnerIDs, "pot", result.Pot)
	return nil
}

// networkAgent bridges the engine's decision request to a remote connection.
// The engine owns the timeout; on cancellation the agent just returns a fold,
// which the engine discards in favor of its own safe exit.
type networkAgent struct {
	table *Table
	seat  *seat

	mu        sync.Mutex
	rejection string
}

// OnRejection stashes the reason for the next action request, so the client
// sees why its action bounced and can resubmit.
func (a *networkAgent) OnRejection(r game.Rejection) {
	a.mu.Lock()
	a.rejection = r.Reason
	a.mu.Unlock()
}

// MakeDecision implements game.Agent.
func (a *networkAgent) MakeDecision(ctx context.Context, state *game.TableState, va game.ValidActions) game.PlayerAction {
	t, s := a.table, a.seat

	a.mu.Lock()
	rejection := a.rejection
	a.rejection = ""
	a.mu.Unlock()

	request := ActionRequestData{
		TableID:   t.ID,
		Board:     cardStrings(state.Community),
		Pot:       state.Pot,
		Actions:   va,
		Rejection: rejection,
	}
	if current := state.CurrentPlayer(); current != nil {
		request.HoleCards = cardStrings(current.HoleCards)
	}

	msg, err := NewMessage(MessageTypeActionRequest, request)
	if err == nil {
		_ = s.conn.SendMessage(msg)
	}

	if t.advisor != nil {
		if hint, err := t.advisor.Advise(state, va); err == nil {
			if hintMsg, err := NewMessage(MessageTypeHint, HintData{TableID: t.ID, Hint: *hint}); err == nil {
				_ = s.conn.SendMessage(hintMsg)
			}
		}
	}

	t.mu.Lock()
	ch := t.pending[s.player.ID]
	t.mu.Unlock()
	if ch == nil {
		return game.PlayerAction{PlayerID: s.player.ID, Type: game.Fold}
	}

	select {
	case action := <-ch:
		return action
	case <-ctx.Done():
		return game.PlayerAction{PlayerID: s.player.ID, Type: game.Fold}
	}
}

// Broadcast sends a message to every connected player at the table.
func (t *Table) Broadcast(msg *Message) {
	t.mu.Lock()
	conns := make([]*Connection, 0, len(t.seats))
	for _, s := range t.seats {
		if s.conn != nil {
			conns = append(conns, s.conn)
		}
	}
	t.mu.Unlock()

	for _, conn := range conns {
		if err := conn.SendMessage(msg); err != nil {
			t.logger.Debug("broadcast failed", "player", conn.PlayerID(), "error", err)
		}
	}
}

// eventForwarder mirrors engine events to connected clients.
type eventForwarder struct {
	table *Table
}

func (f *eventForwarder) OnEvent(event game.GameEvent) {
	data := eventToWire(event)
	if data == nil {
		return
	}
	msg, err := NewMessage(MessageTypeGameEvent, data)
	if err != nil {
		return
	}
	f.table.Broadcast(msg)
}

// eventToWire converts an engine event to its wire form. Hole cards never
// cross this path; players see only their own cards via action requests.
func eventToWire(event game.GameEvent) *GameEventData {
	switch e := event.(type) {
	case game.HandStartEvent:
		return &GameEventData{
			Event:  string(game.EventTypeHandStart),
			HandID: e.HandID,
		}
	case game.StreetChangeEvent:
		return &GameEventData{
			Event:  string(game.EventTypeStreetChange),
			Street: e.Street.String(),
			Board:  cardStrings(e.Community),
			Pot:    e.Pot,
		}
	case game.PlayerActionEvent:
		return &GameEventData{
			Event:      string(game.EventTypePlayerAction),
			Seat:       e.Seat,
			PlayerName: e.Name,
			Street:     e.Street.String(),
			Action:     e.Action.String(),
			Amount:     e.Amount,
			Pot:        e.PotAfter,
		}
	case game.ShowdownStartedEvent:
		return &GameEventData{
			Event: string(game.EventTypeShowdownStarted),
			Pot:   e.Pot,
		}
	case game.HandEvaluatedEvent:
		return &GameEventData{
			Event:      string(game.EventTypeHandEvaluated),
			Seat:       e.Seat,
			PlayerName: e.Name,
			HandRank:   e.Result.Description,
		}
	case game.PotAwardedEvent:
		return &GameEventData{
			Event:       string(game.EventTypePotAwarded),
			WinnerIDs:   e.WinnerIDs,
			Amount:      e.AmountPerWinner,
			IsSplitPot:  e.IsSplitPot,
			WinningHand: e.Description,
		}
	case game.HandCompletedEvent:
		return &GameEventData{
			Event:       string(game.EventTypeHandCompleted),
			HandID:      e.HandID,
			Pot:         e.Pot,
			WinningHand: e.WinningHand,
			FoldWin:     e.FoldWin,
		}
	default:
		return nil
	}
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
