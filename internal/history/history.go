// Package history records completed hands as JSON documents. A Recorder
// subscribes to the game event bus, accumulates the per-hand narrative and
// hands the finished record to a Writer when the hand completes. Recording is
// an observer: it never feeds back into the engine.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feltworks/holdem/internal/fileutil"
	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/poker"
)

// SeatRecord captures one player's state at hand start.
type SeatRecord struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Chips int    `json:"chips"`
}

// ActionRecord is one betting decision.
type ActionRecord struct {
	Seat   int       `json:"seat"`
	Name   string    `json:"name"`
	Street string    `json:"street"`
	Action string    `json:"action"`
	Amount int       `json:"amount,omitempty"`
	Pot    int       `json:"pot"`
	At     time.Time `json:"at"`
}

// EvaluationRecord is a player's showdown hand.
type EvaluationRecord struct {
	Seat        int    `json:"seat"`
	Name        string `json:"name"`
	Category    int    `json:"category"`
	Description string `json:"description"`
}

// HandRecord is the full document written per hand.
type HandRecord struct {
	HandID      string             `json:"hand_id"`
	HandNumber  int                `json:"hand_number"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
	SmallBlind  int                `json:"small_blind"`
	BigBlind    int                `json:"big_blind"`
	DealerSeat  int                `json:"dealer_seat"`
	Seats       []SeatRecord       `json:"seats"`
	Actions     []ActionRecord     `json:"actions"`
	Board       []string           `json:"board"`
	Showdown    []EvaluationRecord `json:"showdown,omitempty"`
	WinnerIDs   []string           `json:"winner_ids"`
	WinningHand string             `json:"winning_hand"`
	Pot         int                `json:"pot"`
	FoldWin     bool               `json:"fold_win"`
}

// Writer persists completed hand records.
type Writer interface {
	WriteHand(record *HandRecord) error
}

// FileWriter writes one JSON file per hand under a directory. Writes are
// atomic so a crash never leaves a truncated record.
type FileWriter struct {
	directory string
}

// NewFileWriter creates a file-backed writer rooted at directory.
func NewFileWriter(directory string) *FileWriter {
	return &FileWriter{directory: directory}
}

// WriteHand implements Writer.
func (w *FileWriter) WriteHand(record *HandRecord) error {
	if err := os.MkdirAll(w.directory, 0755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hand record: %w", err)
	}
	path := filepath.Join(w.directory, fmt.Sprintf("hand_%s.json", record.HandID))
	return fileutil.WriteFileAtomic(path, data, 0644)
}

// NoOpWriter discards records.
type NoOpWriter struct{}

// WriteHand implements Writer.
func (NoOpWriter) WriteHand(*HandRecord) error { return nil }

// ReadHand loads a previously written record.
func ReadHand(path string) (*HandRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record HandRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode hand record %s: %w", path, err)
	}
	return &record, nil
}

// Recorder builds HandRecords from the event stream.
type Recorder struct {
	writer  Writer
	logger  *log.Logger
	current *HandRecord
}

// NewRecorder creates a recorder that persists through the given writer.
func NewRecorder(writer Writer, logger *log.Logger) *Recorder {
	if writer == nil {
		writer = NoOpWriter{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{writer: writer, logger: logger.WithPrefix("history")}
}

// OnEvent implements game.EventSubscriber.
func (r *Recorder) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.HandStartEvent:
		record := &HandRecord{
			HandID:     e.HandID,
			HandNumber: e.HandNumber,
			StartedAt:  e.Timestamp(),
			SmallBlind: e.SmallBlind,
			BigBlind:   e.BigBlind,
			DealerSeat: e.DealerSeat,
		}
		for _, p := range e.Players {
			record.Seats = append(record.Seats, SeatRecord{
				Seat:  p.Seat,
				Name:  p.Name,
				Chips: p.Chips,
			})
		}
		r.current = record

	case game.PlayerActionEvent:
		if r.current == nil {
			return
		}
		r.current.Actions = append(r.current.Actions, ActionRecord{
			Seat:   e.Seat,
			Name:   e.Name,
			Street: e.Street.String(),
			Action: e.Action.String(),
			Amount: e.Amount,
			Pot:    e.PotAfter,
			At:     e.Timestamp(),
		})

	case game.StreetChangeEvent:
		if r.current == nil {
			return
		}
		r.current.Board = cardStrings(e.Community)

	case game.HandEvaluatedEvent:
		if r.current == nil {
			return
		}
		r.current.Showdown = append(r.current.Showdown, EvaluationRecord{
			Seat:        e.Seat,
			Name:        e.Name,
			Category:    int(e.Result.Category),
			Description: e.Result.Description,
		})

	case game.PotAwardedEvent:
		if r.current == nil {
			return
		}
		r.current.WinnerIDs = e.WinnerIDs
		r.current.WinningHand = e.Description

	case game.HandCompletedEvent:
		if r.current == nil {
			return
		}
		r.current.CompletedAt = e.Timestamp()
		r.current.Pot = e.Pot
		r.current.FoldWin = e.FoldWin
		if r.current.WinningHand == "" {
			r.current.WinningHand = e.WinningHand
		}
		if err := r.writer.WriteHand(r.current); err != nil {
			// recording must never take the game down
			r.logger.Error("failed to persist hand record",
				"handID", r.current.HandID, "error", err)
		}
		r.current = nil

	case game.HandErrorEvent:
		// aborted hands are dropped; the record would be misleading
		r.logger.Warn("discarding record for aborted hand", "handID", e.HandID)
		r.current = nil
	}
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
