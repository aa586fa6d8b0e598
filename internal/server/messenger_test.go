package server

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerd/dealerd/internal/game"
)

type recordingBroadcaster struct {
	rooms    []string
	messages []*Message
}

func (b *recordingBroadcaster) BroadcastToRoom(room string, msg *Message) {
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, msg)
}

func TestRoomMessengerSendAssignsIDs(t *testing.T) {
	b := &recordingBroadcaster{}
	m := NewRoomMessenger(b, log.New(io.Discard))

	buttons := [][]game.Button{{{Label: "Hit", Action: "hit"}, {Label: "Stand", Action: "stand"}}}

	id1, err := m.Send("room-1", "first", buttons)
	require.NoError(t, err)
	id2, err := m.Send("room-1", "second", nil)
	require.NoError(t, err)
	assert.Equal(t, id1+1, id2)

	require.Len(t, b.messages, 2)
	assert.Equal(t, []string{"room-1", "room-1"}, b.rooms)
	assert.Equal(t, MessageTypeRoomMessage, b.messages[0].Type)

	var data RoomMessageData
	require.NoError(t, json.Unmarshal(b.messages[0].Data, &data))
	assert.Equal(t, id1, data.ID)
	assert.Equal(t, "first", data.Text)
	require.Len(t, data.Buttons, 1)
	assert.Equal(t, ButtonData{Label: "Hit", Action: "hit"}, data.Buttons[0][0])

	var second RoomMessageData
	require.NoError(t, json.Unmarshal(b.messages[1].Data, &second))
	assert.Empty(t, second.Buttons)
}

func TestRoomMessengerEditAndDelete(t *testing.T) {
	b := &recordingBroadcaster{}
	m := NewRoomMessenger(b, log.New(io.Discard))

	id, err := m.Send("room-1", "hello", nil)
	require.NoError(t, err)

	require.NoError(t, m.Edit("room-1", id, "changed", nil))
	require.NoError(t, m.Delete("room-1", id))

	require.Len(t, b.messages, 3)
	assert.Equal(t, MessageTypeMessageEdit, b.messages[1].Type)
	assert.Equal(t, MessageTypeMessageDelete, b.messages[2].Type)

	var edit MessageEditData
	require.NoError(t, json.Unmarshal(b.messages[1].Data, &edit))
	assert.Equal(t, id, edit.ID)
	assert.Equal(t, "changed", edit.Text)

	var del MessageDeleteData
	require.NoError(t, json.Unmarshal(b.messages[2].Data, &del))
	assert.Equal(t, id, del.ID)
}
