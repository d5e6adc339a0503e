package tui

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/feltworks/holdem/internal/ai"
	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/internal/history"
	"github.com/feltworks/holdem/internal/training"
)

// Sender is the slice of tea.Program the session needs.
type Sender interface {
	Send(msg tea.Msg)
}

// SessionConfig configures a local game against bots.
type SessionConfig struct {
	PlayerName      string
	BotStyles       []ai.Style
	BuyIn           int
	SmallBlind      int
	BigBlind        int
	DecisionTimeout time.Duration
	Training        bool
	HistoryWriter   history.Writer
}

// Session drives hands between the human and the configured bots, pushing
// display updates into the program and reading decisions from the channel
// the model writes to.
type Session struct {
	cfg       SessionConfig
	program   Sender
	decisions <-chan game.PlayerAction
	logger    *log.Logger
	rng       *rand.Rand
	advisor   *training.Advisor
}

// NewSession creates a session.
func NewSession(cfg SessionConfig, program Sender, decisions <-chan game.PlayerAction, logger *log.Logger) *Session {
	if cfg.HistoryWriter == nil {
		cfg.HistoryWriter = history.NoOpWriter{}
	}
	s := &Session{
		cfg:       cfg,
		program:   program,
		decisions: decisions,
		logger:    logger.WithPrefix("session"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.Training {
		s.advisor = training.NewAdvisor()
	}
	return s
}

// Run plays hands until the human busts, the bots bust, or the context ends.
func (s *Session) Run(ctx context.Context) error {
	defer s.program.Send(SessionDoneMsg{})

	players := []*game.Player{{
		ID:     s.cfg.PlayerName,
		Name:   s.cfg.PlayerName,
		Seat:   0,
		Chips:  s.cfg.BuyIn,
		Status: game.StatusActive,
	}}
	for i, style := range s.cfg.BotStyles {
		players = append(players, &game.Player{
			ID:     fmt.Sprintf("bot-%d", i+1),
			Name:   fmt.Sprintf("%s-%d", style, i+1),
			Seat:   i + 1,
			Chips:  s.cfg.BuyIn,
			Status: game.StatusActive,
		})
	}

	dealerIndex := 0
	for handNumber := 1; ; handNumber++ {
		if err := ctx.Err(); err != nil {
			return nil
		}

		opts := []game.HandOption{
			game.WithLogger(s.logger),
			game.WithAgent(s.cfg.PlayerName, &humanAgent{session: s}),
		}
		for i, style := range s.cfg.BotStyles {
			opts = append(opts, game.WithAgent(fmt.Sprintf("bot-%d", i+1), ai.New(style, s.rng, s.logger)))
		}

		hand, err := game.NewHand(players, game.HandConfig{
			HandNumber:      handNumber,
			SmallBlind:      s.cfg.SmallBlind,
			BigBlind:        s.cfg.BigBlind,
			DealerIndex:     dealerIndex % len(players),
			DecisionTimeout: s.cfg.DecisionTimeout,
		}, s.rng, opts...)
		if err == game.ErrNotEnoughPlayers {
			s.program.Send(LogMsg("game over"))
			return nil
		}
		if err != nil {
			return err
		}

		hand.EventBus().Subscribe(history.NewRecorder(s.cfg.HistoryWriter, s.logger))
		hand.EventBus().Subscribe(&logSubscriber{program: s.program})

		result, err := hand.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		players = result.FinalState.Players
		dealerIndex++

		if humanChips(players, s.cfg.PlayerName) == 0 {
			s.program.Send(LogMsg("you are out of chips"))
			return nil
		}
	}
}

// humanAgent surfaces decision requests in the UI and waits for the model.
type humanAgent struct {
	session *Session

	mu        sync.Mutex
	rejection string
}

// OnRejection stashes the reason so the retry prompt shows why the last
// input bounced.
func (a *humanAgent) OnRejection(r game.Rejection) {
	a.mu.Lock()
	a.rejection = r.Reason
	a.mu.Unlock()
}

// MakeDecision implements game.Agent.
func (a *humanAgent) MakeDecision(ctx context.Context, state *game.TableState, va game.ValidActions) game.PlayerAction {
	s := a.session

	a.mu.Lock()
	rejection := a.rejection
	a.rejection = ""
	a.mu.Unlock()

	request := ActionRequestMsg{
		PlayerID:  s.cfg.PlayerName,
		Board:     state.Community,
		Pot:       state.Pot,
		Actions:   va,
		Rejection: rejection,
	}
	if p := state.CurrentPlayer(); p != nil {
		request.HoleCards = p.HoleCards
	}
	if s.advisor != nil {
		if hint, err := s.advisor.Advise(state, va); err == nil {
			request.Hint = hint.Explanation
		}
	}
	s.program.Send(request)

	select {
	case action := <-s.decisions:
		return action
	case <-ctx.Done():
		return game.PlayerAction{PlayerID: s.cfg.PlayerName, Type: game.Fold}
	}
}

func humanChips(players []*game.Player, name string) int {
	for _, p := range players {
		if p.ID == name {
			return p.Chips
		}
	}
	return 0
}

// logSubscriber narrates engine events into the scrollback.
type logSubscriber struct {
	program Sender
}

func (l *logSubscriber) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.HandStartEvent:
		l.program.Send(LogMsg(fmt.Sprintf("--- hand %s (blinds %d/%d) ---",
			e.HandID, e.SmallBlind, e.BigBlind)))
	case game.StreetChangeEvent:
		l.program.Send(LogMsg(fmt.Sprintf("%s: %s (pot %d)",
			e.Street, RenderCards(e.Community), e.Pot)))
	case game.PlayerActionEvent:
		line := fmt.Sprintf("%s %ss", e.Name, e.Action)
		if e.Amount > 0 {
			line = fmt.Sprintf("%s %ss %d", e.Name, e.Action, e.Amount)
		}
		l.program.Send(LogMsg(line))
	case game.HandEvaluatedEvent:
		l.program.Send(LogMsg(fmt.Sprintf("%s shows %s", e.Name, e.Result.Description)))
	case game.PotAwardedEvent:
		l.program.Send(LogMsg(fmt.Sprintf("pot %d to %v (%s)",
			e.AmountPerWinner, e.WinnerIDs, e.Description)))
	case game.HandErrorEvent:
		l.program.Send(LogMsg(fmt.Sprintf("hand aborted: %v", e.Err)))
	}
}
