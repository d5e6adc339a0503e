package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/feltworks/holdem/internal/ai"
	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/internal/history"
	"github.com/feltworks/holdem/internal/tui"
)

// PlayCmd plays a local game against bots in the terminal.
type PlayCmd struct {
	Name       string   `default:"You" help:"Your player name"`
	Bots       []string `default:"calling-station,tag" help:"Bot styles to seat (random, calling-station, tag)"`
	BuyIn      int      `default:"1000" help:"Starting chips per player"`
	SmallBlind int      `default:"5" help:"Small blind"`
	BigBlind   int      `default:"10" help:"Big blind"`
	Timeout    string   `default:"0" help:"Decision timeout (e.g. 30s, 0 to disable)"`
	Training   bool     `help:"Show advisory hints before each decision"`
	History    string   `help:"Directory for hand history JSON files (empty to disable)"`
	LogFile    string   `default:"holdem-play.log" help:"Debug log file"`
}

func (c *PlayCmd) Run() error {
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}

	styles := make([]ai.Style, len(c.Bots))
	for i, style := range c.Bots {
		styles[i] = ai.Style(style)
	}

	var writer history.Writer = history.NoOpWriter{}
	if c.History != "" {
		writer = history.NewFileWriter(c.History)
	}

	decisions := make(chan game.PlayerAction, 1)
	model := tui.NewModel(decisions)
	program := tea.NewProgram(model, tea.WithAltScreen())

	session := tui.NewSession(tui.SessionConfig{
		PlayerName:      c.Name,
		BotStyles:       styles,
		BuyIn:           c.BuyIn,
		SmallBlind:      c.SmallBlind,
		BigBlind:        c.BigBlind,
		DecisionTimeout: timeout,
		Training:        c.Training,
		HistoryWriter:   writer,
	}, program, decisions, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return session.Run(ctx)
	})
	group.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return err
	})
	return group.Wait()
}
