package server

import (
	"encoding/json"
	"time"

	"github.com/feltworks/holdem/internal/game"
	"github.com/feltworks/holdem/internal/training"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// client → server
	MessageTypeAuth       MessageType = "auth"
	MessageTypeJoinTable  MessageType = "join_table"
	MessageTypeLeaveTable MessageType = "leave_table"
	MessageTypeListTables MessageType = "list_tables"
	MessageTypeAction     MessageType = "action"

	// server → client
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeError         MessageType = "error"
	MessageTypeTableList     MessageType = "table_list"
	MessageTypeTableJoined   MessageType = "table_joined"
	MessageTypeTableLeft     MessageType = "table_left"
	MessageTypeGameEvent     MessageType = "game_event"
	MessageTypeActionRequest MessageType = "action_request"
	MessageTypeHint          MessageType = "hint"
)

func (t MessageType) String() string { return string(t) }

// Message is the wire envelope. Data carries the type-specific payload.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// client → server payloads

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
	BuyIn   int    `json:"buyIn,omitempty"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

// ActionData is a remote player's betting decision. Amount is the total
// street commitment for bet/raise.
type ActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

// server → client payloads

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Stakes      string `json:"stakes"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableJoinedData struct {
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
	Chips   int    `json:"chips"`
}

// GameEventData mirrors engine events onto the wire. Only the fields relevant
// to the event type are populated.
type GameEventData struct {
	Event       string   `json:"event"`
	HandID      string   `json:"handId,omitempty"`
	Street      string   `json:"street,omitempty"`
	Board       []string `json:"board,omitempty"`
	Pot         int      `json:"pot,omitempty"`
	Seat        int      `json:"seat,omitempty"`
	PlayerName  string   `json:"playerName,omitempty"`
	Action      string   `json:"action,omitempty"`
	Amount      int      `json:"amount,omitempty"`
	HandRank    string   `json:"handRank,omitempty"`
	WinnerIDs   []string `json:"winnerIds,omitempty"`
	IsSplitPot  bool     `json:"isSplitPot,omitempty"`
	WinningHand string   `json:"winningHand,omitempty"`
	FoldWin     bool     `json:"foldWin,omitempty"`
}

// ActionRequestData asks a remote player to act. Rejections re-use the same
// message with Rejection set so the client can correct and resubmit.
type ActionRequestData struct {
	TableID   string            `json:"tableId"`
	HandID    string            `json:"handId"`
	HoleCards []string          `json:"holeCards"`
	Board     []string          `json:"board"`
	Pot       int               `json:"pot"`
	Actions   game.ValidActions `json:"actions"`
	Rejection string            `json:"rejection,omitempty"`
}

// HintData delivers a training hint alongside an action request.
type HintData struct {
	TableID string        `json:"tableId"`
	Hint    training.Hint `json:"hint"`
}
