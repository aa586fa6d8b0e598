package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/dealerd/dealerd/internal/game"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	room      string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	registry  *game.Registry
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, registry *game.Registry) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		logger:   logger.WithPrefix("conn"),
		ctx:      ctx,
		cancel:   cancel,
		registry: registry,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = room
}

// GetRoom returns the associated room
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

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
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
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
				c.logger.Error("Failed to write message", "error", err)
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

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeStartGame:
		c.handleStartGame()

	case MessageTypeGameAction:
		var data GameActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse game action data")
			return
		}
		c.handleGameAction(data)

	case MessageTypePlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse place bet data")
			return
		}
		c.handlePlaceBet(data)

	case MessageTypeAddBalance:
		c.handleAddBalance()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

// sendGameError maps engine errors onto protocol error codes.
func (c *Connection) sendGameError(err error) {
	switch {
	case errors.Is(err, game.ErrNoSession):
		c.sendError("no_session", "No game running in this room")
	case errors.Is(err, game.ErrSessionActive):
		c.sendError("session_active", "A game is already running in this room")
	case errors.Is(err, game.ErrWrongPhase):
		c.sendError("wrong_phase", "That action isn't available right now")
	case errors.Is(err, game.ErrNotYourTurn):
		c.sendError("not_your_turn", "It isn't your turn")
	case errors.Is(err, game.ErrNotPlaying):
		c.sendError("not_playing", "You aren't in this game")
	case errors.Is(err, game.ErrInvalidBet):
		c.sendError("invalid_bet", "That bet isn't valid")
	default:
		c.sendError("action_failed", err.Error())
	}
}

// authedInRoom checks the auth and room preconditions shared by every
// game message, reporting to the client on failure.
func (c *Connection) authedInRoom() (playerID, room string, ok bool) {
	playerID = c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return "", "", false
	}
	room = c.GetRoom()
	if room == "" {
		c.sendError("no_room", "Must join a room first")
		return "", "", false
	}
	return playerID, room, true
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	// Simple authentication - just accept any player name
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	c.SetPlayer(data.PlayerName)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerName,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	c.logger.Info("Join room request", "room", data.Room, "player", c.GetPlayer())

	if c.GetPlayer() == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if data.Room == "" {
		c.sendError("invalid_room", "Room name required")
		return
	}

	c.SetRoom(data.Room)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{Room: data.Room})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleStartGame() {
	if c.registry == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	_, room, ok := c.authedInRoom()
	if !ok {
		return
	}

	if err := c.registry.StartGame(room); err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) handleGameAction(data GameActionData) {
	if c.registry == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	playerID, room, ok := c.authedInRoom()
	if !ok {
		return
	}

	var err error
	switch {
	case data.Action == "join":
		err = c.registry.Join(room, playerID, playerID)
	case data.Action == "hit":
		err = c.registry.Hit(room, playerID)
	case data.Action == "stand":
		err = c.registry.Stand(room, playerID)
	case data.Action == "done":
		err = c.registry.MarkDone(room, playerID)
	case strings.HasPrefix(data.Action, "bet_"):
		err = c.registry.PlaceBet(room, playerID, strings.TrimPrefix(data.Action, "bet_"))
	default:
		c.sendError("unknown_action", "Unknown game action: "+data.Action)
		return
	}

	if err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) handlePlaceBet(data PlaceBetData) {
	if c.registry == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	playerID, room, ok := c.authedInRoom()
	if !ok {
		return
	}

	if err := c.registry.PlaceBet(room, playerID, strings.TrimSpace(data.Amount)); err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) handleAddBalance() {
	if c.registry == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	playerID, room, ok := c.authedInRoom()
	if !ok {
		return
	}

	if err := c.registry.RequestRefill(room, playerID, playerID); err != nil {
		c.sendGameError(err)
	}
}
