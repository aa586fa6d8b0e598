package server

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dealerd/dealerd/internal/game"
)

// roomBroadcaster delivers a message to everyone in a room. The Server
// implements it; tests substitute a recorder.
type roomBroadcaster interface {
	BroadcastToRoom(room string, msg *Message)
}

// RoomMessenger adapts room broadcasts to the game engine's Messenger
// contract. Message ids are process-local and monotonic; clients key
// their rendered messages on them so edits and deletes land on the
// right one.
type RoomMessenger struct {
	broadcaster roomBroadcaster
	logger      *log.Logger
	nextID      atomic.Int64
}

// NewRoomMessenger creates a messenger that posts through the given
// broadcaster.
func NewRoomMessenger(b roomBroadcaster, logger *log.Logger) *RoomMessenger {
	return &RoomMessenger{
		broadcaster: b,
		logger:      logger.WithPrefix("messenger"),
	}
}

// Send posts a new message to the room and returns its id.
func (m *RoomMessenger) Send(room, text string, buttons [][]game.Button) (int64, error) {
	id := m.nextID.Add(1)

	msg, err := NewMessage(MessageTypeRoomMessage, RoomMessageData{
		ID:      id,
		Room:    room,
		Text:    text,
		Buttons: buttonsFromGame(buttons),
	})
	if err != nil {
		return 0, err
	}

	m.broadcaster.BroadcastToRoom(room, msg)
	return id, nil
}

// Edit replaces the text and buttons of an earlier message.
func (m *RoomMessenger) Edit(room string, msgID int64, text string, buttons [][]game.Button) error {
	msg, err := NewMessage(MessageTypeMessageEdit, MessageEditData{
		ID:      msgID,
		Room:    room,
		Text:    text,
		Buttons: buttonsFromGame(buttons),
	})
	if err != nil {
		return err
	}

	m.broadcaster.BroadcastToRoom(room, msg)
	return nil
}

// Delete removes an earlier message from the room.
func (m *RoomMessenger) Delete(room string, msgID int64) error {
	msg, err := NewMessage(MessageTypeMessageDelete, MessageDeleteData{
		ID:   msgID,
		Room: room,
	})
	if err != nil {
		return err
	}

	m.broadcaster.BroadcastToRoom(room, msg)
	return nil
}
