package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/feltworks/holdem/internal/ai"
	"github.com/feltworks/holdem/internal/config"
	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/internal/history"
)

func testLogger() *log.Logger { return log.New(io.Discard) }

func testTableConfig(name string) config.TableConfig {
	return config.TableConfig{
		Name:            name,
		MaxPlayers:      6,
		SmallBlind:      5,
		BigBlind:        10,
		BuyIn:           1000,
		DecisionTimeout: "1s",
	}
}

func TestTableJoinAndLeave(t *testing.T) {
	table, err := NewTable(testTableConfig("main"), history.NoOpWriter{},
		rand.New(rand.NewSource(1)), testLogger())
	require.NoError(t, err)

	seat, chips, err := table.Join("alice", 0, nil)
	require.NoError(t, err)
	require.Equal(t, 0, seat)
	require.Equal(t, 1000, chips) // table buy-in applied

	_, _, err = table.Join("alice", 0, nil)
	require.Error(t, err, "duplicate join must fail")

	require.NoError(t, table.Leave("alice"))
	require.Error(t, table.Leave("alice"), "double leave must fail")
}

func TestTableFullRejectsJoin(t *testing.T) {
	cfg := testTableConfig("tiny")
	cfg.MaxPlayers = 2
	table, err := NewTable(cfg, history.NoOpWriter{}, rand.New(rand.NewSource(1)), testLogger())
	require.NoError(t, err)

	require.NoError(t, table.AddBot("b1", ai.StyleCallingStation, 0))
	require.NoError(t, table.AddBot("b2", ai.StyleCallingStation, 0))
	require.Error(t, table.AddBot("b3", ai.StyleCallingStation, 0))
	_, _, err = table.Join("human", 0, nil)
	require.Error(t, err)
}

func TestSubmitActionValidation(t *testing.T) {
	table, err := NewTable(testTableConfig("main"), history.NoOpWriter{},
		rand.New(rand.NewSource(1)), testLogger())
	require.NoError(t, err)

	require.Error(t, table.SubmitAction("ghost", "fold", 0), "unseated player")

	_, _, err = table.Join("alice", 0, nil)
	require.NoError(t, err)
	require.Error(t, table.SubmitAction("alice", "levitate", 0), "unknown action")
	require.NoError(t, table.SubmitAction("alice", "fold", 0), "queued for the next request")
}

func TestTableBotsPlayHands(t *testing.T) {
	table, err := NewTable(testTableConfig("bots"), history.NoOpWriter{},
		rand.New(rand.NewSource(7)), testLogger())
	require.NoError(t, err)
	require.NoError(t, table.AddBot("station1", ai.StyleCallingStation, 0))
	require.NoError(t, table.AddBot("station2", ai.StyleCallingStation, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = table.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		table.mu.Lock()
		defer table.mu.Unlock()
		return table.handNumber >= 3
	}, 10*time.Second, 10*time.Millisecond, "bots should play hands unattended")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("table runner did not stop on cancellation")
	}

	// chips conserved across all hands
	table.mu.Lock()
	total := 0
	for _, s := range table.seats {
		total += s.player.Chips
	}
	table.mu.Unlock()
	require.Equal(t, 2000, total)
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return &msg
		}
	}
}

func sendMessage(t *testing.T, conn *websocket.Conn, messageType MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func TestServerWebSocketSession(t *testing.T) {
	cfg := config.Default()
	cfg.History.Enabled = false
	cfg.Tables = []config.TableConfig{testTableConfig("main")}
	cfg.Bots = []config.BotConfig{
		{Name: "station", Style: string(ai.StyleCallingStation), Tables: []string{"main"}, BuyIn: 1000},
	}

	srv, err := NewServer(cfg, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Table("main").Run(ctx) }()

	httpServer := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// authenticate
	sendMessage(t, conn, MessageTypeAuth, AuthData{PlayerName: "human"})
	authMsg := readUntil(t, conn, MessageTypeAuthResponse)
	var auth AuthResponseData
	require.NoError(t, json.Unmarshal(authMsg.Data, &auth))
	require.True(t, auth.Success)

	// join; the seated bot makes two players, so a hand starts
	sendMessage(t, conn, MessageTypeJoinTable, JoinTableData{TableID: "main"})
	joinedMsg := readUntil(t, conn, MessageTypeTableJoined)
	var joined TableJoinedData
	require.NoError(t, json.Unmarshal(joinedMsg.Data, &joined))
	require.Equal(t, "main", joined.TableID)
	require.Equal(t, 1000, joined.Chips)

	// the engine asks for a decision; fold it
	requestMsg := readUntil(t, conn, MessageTypeActionRequest)
	var request ActionRequestData
	require.NoError(t, json.Unmarshal(requestMsg.Data, &request))
	require.Len(t, request.HoleCards, 2)
	require.True(t, request.Actions.CanFold)

	sendMessage(t, conn, MessageTypeAction, ActionData{TableID: "main", Action: "fold"})

	// the hand settles and the completion event is broadcast
	eventMsg := readUntil(t, conn, MessageTypeGameEvent)
	for {
		var event GameEventData
		require.NoError(t, json.Unmarshal(eventMsg.Data, &event))
		if event.Event == "hand_completed" {
			require.True(t, event.FoldWin)
			break
		}
		eventMsg = readUntil(t, conn, MessageTypeGameEvent)
	}
}

func TestTableLeaveDuringHandSettlesRemaining(t *testing.T) {
	table, err := NewTable(testTableConfig("mid-leave"), history.NoOpWriter{},
		rand.New(rand.NewSource(3)), testLogger())
	require.NoError(t, err)

	// alice has no decision source, so the engine folds her seat when asked
	_, _, err = table.Join("alice", 0, nil)
	require.NoError(t, err)

	leaveThenFold := game.AgentFunc(func(_ context.Context, state *game.TableState, _ game.ValidActions) game.PlayerAction {
		require.NoError(t, table.Leave("alice"))
		return game.PlayerAction{PlayerID: state.CurrentPlayer().ID, Type: game.Fold}
	})
	table.mu.Lock()
	table.seats = append(table.seats,
		&seat{player: &game.Player{ID: "bob", Name: "bob", Seat: 1, Chips: 1000, Status: game.StatusActive}, agent: leaveThenFold},
		&seat{player: &game.Player{ID: "carol", Name: "carol", Seat: 2, Chips: 1000, Status: game.StatusActive}})
	table.mu.Unlock()

	// preflop: alice (first to act) folds, bob leaves alice and folds, and
	// carol's big blind wins the 15-chip pot unopposed
	require.NoError(t, table.playHand(context.Background()))

	table.mu.Lock()
	defer table.mu.Unlock()
	require.Len(t, table.seats, 2)
	require.Equal(t, "bob", table.seats[0].player.ID)
	require.Equal(t, 995, table.seats[0].player.Chips, "small blind paid")
	require.Equal(t, 0, table.seats[0].player.Seat)
	require.Equal(t, "carol", table.seats[1].player.ID)
	require.Equal(t, 1005, table.seats[1].player.Chips, "pot must land despite the mid-hand leave")
	require.Equal(t, 1, table.seats[1].player.Seat)
	require.Equal(t, 1, table.dealerIndex)
}

func TestTableAllLeaveDuringHand(t *testing.T) {
	table, err := NewTable(testTableConfig("empty-out"), history.NoOpWriter{},
		rand.New(rand.NewSource(4)), testLogger())
	require.NoError(t, err)

	leaveEveryone := game.AgentFunc(func(_ context.Context, state *game.TableState, _ game.ValidActions) game.PlayerAction {
		require.NoError(t, table.Leave("alice"))
		require.NoError(t, table.Leave("bob"))
		return game.PlayerAction{PlayerID: state.CurrentPlayer().ID, Type: game.Fold}
	})
	table.mu.Lock()
	table.seats = append(table.seats,
		&seat{player: &game.Player{ID: "alice", Name: "alice", Chips: 1000, Status: game.StatusActive}, agent: leaveEveryone},
		&seat{player: &game.Player{ID: "bob", Name: "bob", Seat: 1, Chips: 1000, Status: game.StatusActive}})
	table.mu.Unlock()

	require.NoError(t, table.playHand(context.Background()))
	require.Equal(t, 0, table.PlayerCount())
}
