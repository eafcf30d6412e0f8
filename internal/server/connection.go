package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/haveebot/agentpoker/internal/game"
	"github.com/haveebot/agentpoker/internal/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one WebSocket client: an agent or a spectator. It owns the
// client's table subscriptions and filters private events before forwarding.
type Connection struct {
	conn     *websocket.Conn
	send     chan *Message
	logger   *log.Logger
	registry *registry.Registry
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	agentID  string
	agentKey string
	humanKey string
	joined   map[string]bool   // tables this agent is seated at
	unsubs   map[string]func() // active event subscriptions by table ID

	closeOnce sync.Once
}

// NewConnection wraps an upgraded WebSocket.
func NewConnection(conn *websocket.Conn, logger *log.Logger, reg *registry.Registry) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		logger:   logger.WithPrefix("conn"),
		registry: reg,
		ctx:      ctx,
		cancel:   cancel,
		joined:   make(map[string]bool),
		unsubs:   make(map[string]func()),
	}
}

// Start begins the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down: subscriptions are dropped and any seats
// still held are vacated, folding the agent out of live hands.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		unsubs := c.unsubs
		joined := c.joined
		agentID := c.agentID
		c.unsubs = map[string]func(){}
		c.joined = map[string]bool{}
		c.mu.Unlock()

		for _, unsub := range unsubs {
			unsub()
		}
		for tableID := range joined {
			if _, leaveErr := c.registry.LeaveTable(tableID, agentID); leaveErr != nil {
				c.logger.Debug("cleanup leave failed", "table", tableID, "agent", agentID, "error", leaveErr)
			}
		}

		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A full send buffer closes the
// connection rather than blocking a table.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "agent", c.AgentID())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// AgentID returns the authenticated agent ID, empty before auth.
func (c *Connection) AgentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "agent", c.AgentID())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeListTables:
		c.handleListTables()

	case MessageTypeCreateTable:
		var data CreateTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse create table data")
			return
		}
		c.handleCreateTable(data)

	case MessageTypeJoinTable:
		var data JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join table data")
			return
		}
		c.handleJoinTable(data)

	case MessageTypeLeaveTable:
		var data LeaveTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse leave table data")
			return
		}
		c.handleLeaveTable(data)

	case MessageTypeWatchTable:
		var data WatchTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse watch table data")
			return
		}
		c.handleWatchTable(data)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse action data")
			return
		}
		c.handleAction(data)

	case MessageTypeGetState:
		var data GetStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse get state data")
			return
		}
		c.handleGetState(data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

func (c *Connection) sendPayload(msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		c.logger.Error("failed to marshal payload", "type", msgType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// handleAuth records the agent's identity. The keys are opaque: the gateway
// stores them on the seat at join time, it never verifies them.
func (c *Connection) handleAuth(data AuthData) {
	if data.AgentID == "" {
		c.sendError("invalid_auth", "agent id required")
		return
	}

	c.mu.Lock()
	c.agentID = data.AgentID
	c.agentKey = data.AgentKey
	c.humanKey = data.HumanKey
	c.mu.Unlock()

	c.logger.Info("agent authenticated", "agent", data.AgentID)
	c.sendPayload(MessageTypeAuthResponse, AuthResponseData{Success: true, AgentID: data.AgentID})
}

func (c *Connection) requireAuth() (string, bool) {
	id := c.AgentID()
	if id == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return "", false
	}
	return id, true
}

func (c *Connection) handleListTables() {
	c.sendPayload(MessageTypeTableList, TableListData{Tables: c.registry.ListTables()})
}

func (c *Connection) handleCreateTable(data CreateTableData) {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	cfg := game.Config{
		SmallBlind: data.SmallBlind,
		BigBlind:   data.BigBlind,
		MinBuyIn:   data.MinBuyIn,
		MaxBuyIn:   data.MaxBuyIn,
		MaxPlayers: data.MaxPlayers,
		RakeMicros: data.RakeMicros,
		HandDelay:  time.Duration(data.HandDelayMS) * time.Millisecond,
	}
	tbl, err := c.registry.CreateTable(cfg)
	if err != nil {
		c.sendError("create_failed", err.Error())
		return
	}
	c.sendPayload(MessageTypeTableCreated, TableCreatedData{TableID: tbl.ID()})
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	agentID, ok := c.requireAuth()
	if !ok {
		return
	}

	c.mu.Lock()
	agentKey, humanKey := c.agentKey, c.humanKey
	c.mu.Unlock()

	// Subscribe before joining so the agent sees its own join and any hand
	// that starts because of it, hole cards included.
	if err := c.subscribeTable(data.TableID); err != nil {
		c.sendError("join_failed", err.Error())
		return
	}

	if err := c.registry.JoinTable(data.TableID, agentID, agentKey, humanKey, data.BuyIn); err != nil {
		c.dropSubscription(data.TableID)
		c.sendError("join_failed", err.Error())
		return
	}

	c.mu.Lock()
	c.joined[data.TableID] = true
	c.mu.Unlock()

	state, err := c.registry.Snapshot(data.TableID, agentID)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	c.sendPayload(MessageTypeTableJoined, TableJoinedData{TableID: data.TableID, State: state})
}

func (c *Connection) handleLeaveTable(data LeaveTableData) {
	agentID, ok := c.requireAuth()
	if !ok {
		return
	}

	stack, err := c.registry.LeaveTable(data.TableID, agentID)
	if err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}

	c.mu.Lock()
	delete(c.joined, data.TableID)
	c.mu.Unlock()
	c.dropSubscription(data.TableID)

	c.sendPayload(MessageTypeTableLeft, TableLeftData{TableID: data.TableID, Stack: stack})
}

func (c *Connection) handleWatchTable(data WatchTableData) {
	if err := c.subscribeTable(data.TableID); err != nil {
		c.sendError("watch_failed", err.Error())
	}
}

func (c *Connection) handleAction(data ActionData) {
	agentID, ok := c.requireAuth()
	if !ok {
		return
	}

	action, err := game.ParseAction(data.Action)
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}
	if err := c.registry.HandleAction(data.TableID, agentID, action, data.Amount); err != nil {
		c.sendError("action_failed", err.Error())
	}
	// No direct response: the resulting table events carry the outcome.
}

func (c *Connection) handleGetState(data GetStateData) {
	state, err := c.registry.Snapshot(data.TableID, c.AgentID())
	if err != nil {
		c.sendError("state_failed", err.Error())
		return
	}
	c.sendPayload(MessageTypeState, state)
}

// subscribeTable starts forwarding the table's events to this client.
// Idempotent per table.
func (c *Connection) subscribeTable(tableID string) error {
	c.mu.Lock()
	if _, ok := c.unsubs[tableID]; ok {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	unsub, err := c.registry.Subscribe(tableID, c.forwardEvent)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.unsubs[tableID] = unsub
	c.mu.Unlock()
	return nil
}

func (c *Connection) dropSubscription(tableID string) {
	c.mu.Lock()
	unsub := c.unsubs[tableID]
	delete(c.unsubs, tableID)
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// forwardEvent relays one table event to the client, withholding events that
// are private to another seat.
func (c *Connection) forwardEvent(ev game.Event) {
	if !eventVisibleTo(ev, c.AgentID()) {
		return
	}
	msg, err := NewMessage(MessageTypeEvent, ev)
	if err != nil {
		c.logger.Error("failed to marshal event", "kind", ev.Kind, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// eventVisibleTo reports whether agentID may see ev. Hole cards dealt to a
// seat reach only that seat's connection; everything else is public.
func eventVisibleTo(ev game.Event, agentID string) bool {
	switch p := ev.Payload.(type) {
	case game.CardsDealt:
		return !p.Private || p.AgentID == agentID
	case game.ErrorOccurred:
		return p.AgentID == "" || p.AgentID == agentID
	default:
		return true
	}
}
