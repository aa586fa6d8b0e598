package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypeGameAction MessageType = "game_action"
	MessageTypePlaceBet   MessageType = "place_bet"
	MessageTypeAddBalance MessageType = "add_balance"

	// Server to client messages
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeRoomJoined    MessageType = "room_joined"
	MessageTypeError         MessageType = "error"
	MessageTypeRoomMessage   MessageType = "room_message"
	MessageTypeMessageEdit   MessageType = "message_edit"
	MessageTypeMessageDelete MessageType = "message_delete"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
