package server

import (
	"encoding/json"
	"time"

	"github.com/dealerd/dealerd/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
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

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type JoinRoomData struct {
	Room string `json:"room"`
}

// GameActionData carries a button press. Action is the button's action
// string: "join", "hit", "stand", "done", or "bet_<choice>".
type GameActionData struct {
	Action string `json:"action"`
}

// PlaceBetData carries a bet typed as chat text rather than pressed as
// a button. Amount is passed to the engine unparsed.
type PlaceBetData struct {
	Amount string `json:"amount"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type RoomJoinedData struct {
	Room string `json:"room"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ButtonData is one pressable option on a room message. Pressing it
// sends the action string back as a game_action.
type ButtonData struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// RoomMessageData is a new message posted to a room on behalf of the
// game. The id is room-unique so later edits and deletes can target it.
type RoomMessageData struct {
	ID      int64          `json:"id"`
	Room    string         `json:"room"`
	Text    string         `json:"text"`
	Buttons [][]ButtonData `json:"buttons,omitempty"`
}

type MessageEditData struct {
	ID      int64          `json:"id"`
	Room    string         `json:"room"`
	Text    string         `json:"text"`
	Buttons [][]ButtonData `json:"buttons,omitempty"`
}

type MessageDeleteData struct {
	ID   int64  `json:"id"`
	Room string `json:"room"`
}

func buttonsFromGame(buttons [][]game.Button) [][]ButtonData {
	if len(buttons) == 0 {
		return nil
	}
	out := make([][]ButtonData, len(buttons))
	for i, row := range buttons {
		out[i] = make([]ButtonData, len(row))
		for j, b := range row {
			out[i][j] = ButtonData{Label: b.Label, Action: b.Action}
		}
	}
	return out
}
