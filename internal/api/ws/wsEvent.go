package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
)

// WsEvent is the envelope of every outbound frame.
type WsEvent struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Inbound frame types.
const (
	TypeJoinRoom      = "join_room"
	TypeChatMessage   = "chat_message"
	TypeTyping        = "typing"
	TypeStoppedTyping = "stopped_typing"
)

// Outbound frame types.
const (
	TypeRoomJoined  = "room_joined"
	TypeNewMessage  = "new_message"
	TypeMessageSent = "message_sent"
	TypeTypingQueue = "typing_queue"
	TypeError       = "error"
)

var ErrMalformedFrame = errors.New("malformed frame")

// InboundFrame is one of JoinRoomFrame, ChatMessageFrame or TypingFrame.
type InboundFrame interface{ inbound() }

type JoinRoomFrame struct {
	MeetupID uint
}

type ChatMessageFrame struct {
	MeetupID uint
	UserID   uint
	Message  string
}

type TypingFrame struct {
	Typing bool
}

func (JoinRoomFrame) inbound()    {}
func (ChatMessageFrame) inbound() {}
func (TypingFrame) inbound()      {}

type inboundWire struct {
	Type     string `json:"type"`
	MeetupID *uint  `json:"meetupId"`
	UserID   *uint  `json:"userId"`
	Message  string `json:"message"`
}

// DecodeInbound parses a client frame. Errors wrap ErrMalformedFrame and
// carry a reason that is safe to echo back to the client.
func DecodeInbound(data []byte) (InboundFrame, error) {
	var w inboundWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedFrame)
	}

	switch w.Type {
	case TypeJoinRoom:
		if w.MeetupID == nil || *w.MeetupID == 0 {
			return nil, fmt.Errorf("%w: meetupId is required", ErrMalformedFrame)
		}
		return JoinRoomFrame{MeetupID: *w.MeetupID}, nil
	case TypeChatMessage:
		if w.MeetupID == nil || *w.MeetupID == 0 {
			return nil, fmt.Errorf("%w: meetupId is required", ErrMalformedFrame)
		}
		if w.UserID == nil || *w.UserID == 0 {
			return nil, fmt.Errorf("%w: userId is required", ErrMalformedFrame)
		}
		return ChatMessageFrame{MeetupID: *w.MeetupID, UserID: *w.UserID, Message: w.Message}, nil
	case TypeTyping:
		return TypingFrame{Typing: true}, nil
	case TypeStoppedTyping:
		return TypingFrame{Typing: false}, nil
	case "":
		return nil, fmt.Errorf("%w: type is required", ErrMalformedFrame)
	default:
		return nil, fmt.Errorf("%w: unknown frame type %q", ErrMalformedFrame, w.Type)
	}
}

// OutboundFrame is one of RoomJoinedFrame, NewMessageFrame, MessageSentFrame,
// TypingQueueFrame or ErrorFrame.
type OutboundFrame interface {
	event() (WsEvent, error)
}

type RoomJoinedFrame struct {
	MeetupID uint
}

type NewMessageFrame struct {
	Message models.ChatMessage
}

type MessageSentFrame struct {
	Message models.ChatMessage
}

type TypingQueueFrame struct {
	Usernames []string
}

type ErrorFrame struct {
	Message string
}

func (f RoomJoinedFrame) event() (WsEvent, error) {
	return withData(TypeRoomJoined, map[string]uint{"meetupId": f.MeetupID})
}

func (f NewMessageFrame) event() (WsEvent, error) { return withData(TypeNewMessage, f.Message) }

func (f MessageSentFrame) event() (WsEvent, error) { return withData(TypeMessageSent, f.Message) }

func (f TypingQueueFrame) event() (WsEvent, error) {
	usernames := f.Usernames
	if usernames == nil {
		usernames = []string{}
	}
	return withData(TypeTypingQueue, usernames)
}

func (f ErrorFrame) event() (WsEvent, error) {
	return WsEvent{Type: TypeError, Message: f.Message}, nil
}

func withData(eventType string, payload any) (WsEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Type: eventType, Data: data}, nil
}

// Encode renders an outbound frame as JSON text.
func Encode(f OutboundFrame) ([]byte, error) {
	evt, err := f.event()
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", f, err)
	}
	return json.Marshal(evt)
}
