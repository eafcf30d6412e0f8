package server

import (
	"encoding/json"
	"time"

	"github.com/haveebot/agentpoker/internal/game"
)

// MessageType identifies a WebSocket message on the wire.
type MessageType string

const (
	// Client to server.
	MessageTypeAuth        MessageType = "auth"
	MessageTypeListTables  MessageType = "list_tables"
	MessageTypeCreateTable MessageType = "create_table"
	MessageTypeJoinTable   MessageType = "join_table"
	MessageTypeLeaveTable  MessageType = "leave_table"
	MessageTypeWatchTable  MessageType = "watch_table"
	MessageTypeAction      MessageType = "action"
	MessageTypeGetState    MessageType = "get_state"

	// Server to client.
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeTableList    MessageType = "table_list"
	MessageTypeTableCreated MessageType = "table_created"
	MessageTypeTableJoined  MessageType = "table_joined"
	MessageTypeTableLeft    MessageType = "table_left"
	MessageTypeState        MessageType = "state"
	MessageTypeEvent        MessageType = "event"
	MessageTypeError        MessageType = "error"
)

func (mt MessageType) String() string { return string(mt) }

// Message is the wire envelope. Data holds the type-specific payload.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage builds an envelope around a marshalled payload.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Data: raw, Timestamp: time.Now()}, nil
}

// Client request payloads.

type AuthData struct {
	AgentID  string `json:"agentId"`
	AgentKey string `json:"agentKey,omitempty"`
	HumanKey string `json:"humanKey,omitempty"`
}

type CreateTableData struct {
	SmallBlind  int `json:"smallBlind"`
	BigBlind    int `json:"bigBlind"`
	MinBuyIn    int `json:"minBuyIn"`
	MaxBuyIn    int `json:"maxBuyIn"`
	MaxPlayers  int `json:"maxPlayers"`
	RakeMicros  int `json:"rakeMicros"`
	HandDelayMS int `json:"handDelayMs"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
	BuyIn   int    `json:"buyIn"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type WatchTableData struct {
	TableID string `json:"tableId"`
}

type ActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

type GetStateData struct {
	TableID string `json:"tableId"`
}

// Server response payloads.

type AuthResponseData struct {
	Success bool   `json:"success"`
	AgentID string `json:"agentId"`
}

type TableListData struct {
	Tables []game.Info `json:"tables"`
}

type TableCreatedData struct {
	TableID string `json:"tableId"`
}

type TableJoinedData struct {
	TableID string             `json:"tableId"`
	State   game.TableSnapshot `json:"state"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
	Stack   int    `json:"stack"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
