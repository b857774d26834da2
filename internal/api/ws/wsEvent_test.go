package ws

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    InboundFrame
		wantErr string
	}{
		{"join", `{"type":"join_room","meetupId":7}`, JoinRoomFrame{MeetupID: 7}, ""},
		{"chat", `{"type":"chat_message","meetupId":7,"userId":3,"message":"hi"}`, ChatMessageFrame{MeetupID: 7, UserID: 3, Message: "hi"}, ""},
		{"typing", `{"type":"typing"}`, TypingFrame{Typing: true}, ""},
		{"stopped typing", `{"type":"stopped_typing"}`, TypingFrame{Typing: false}, ""},
		{"not json", `{`, nil, "invalid JSON"},
		{"wrong field type", `{"type":"join_room","meetupId":"seven"}`, nil, "invalid JSON"},
		{"no type", `{"meetupId":7}`, nil, "type is required"},
		{"unknown type", `{"type":"shout"}`, nil, `unknown frame type "shout"`},
		{"join without meetup", `{"type":"join_room"}`, nil, "meetupId is required"},
		{"join meetup zero", `{"type":"join_room","meetupId":0}`, nil, "meetupId is required"},
		{"chat without user", `{"type":"chat_message","meetupId":7,"message":"hi"}`, nil, "userId is required"},
		{"chat without meetup", `{"type":"chat_message","userId":3,"message":"hi"}`, nil, "meetupId is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tc.in))
			if tc.wantErr != "" {
				if !errors.Is(err, ErrMalformedFrame) {
					t.Fatalf("err = %v, want ErrMalformedFrame", err)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %q, want it to mention %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInbound: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	msg := models.ChatMessage{ID: 9, MeetupID: 7, UserID: 3, Username: "ana", Message: "hi", CreatedAt: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)}

	t.Run("new_message and message_sent carry the same record", func(t *testing.T) {
		a, err := Encode(NewMessageFrame{Message: msg})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		b, err := Encode(MessageSentFrame{Message: msg})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		var ea, eb WsEvent
		if err := json.Unmarshal(a, &ea); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(b, &eb); err != nil {
			t.Fatal(err)
		}
		if ea.Type != TypeNewMessage || eb.Type != TypeMessageSent {
			t.Fatalf("types = %q, %q", ea.Type, eb.Type)
		}
		if string(ea.Data) != string(eb.Data) {
			t.Fatalf("data differs:\n%s\n%s", ea.Data, eb.Data)
		}
		var got models.ChatMessage
		if err := json.Unmarshal(ea.Data, &got); err != nil {
			t.Fatal(err)
		}
		if got.ID != msg.ID || got.Username != msg.Username || got.Message != msg.Message || !got.CreatedAt.Equal(msg.CreatedAt) {
			t.Fatalf("decoded %+v, want %+v", got, msg)
		}
	})

	t.Run("room_joined", func(t *testing.T) {
		b, _ := Encode(RoomJoinedFrame{MeetupID: 7})
		if string(b) != `{"type":"room_joined","data":{"meetupId":7}}` {
			t.Fatalf("got %s", b)
		}
	})

	t.Run("empty typing queue is an array", func(t *testing.T) {
		b, _ := Encode(TypingQueueFrame{})
		if string(b) != `{"type":"typing_queue","data":[]}` {
			t.Fatalf("got %s", b)
		}
	})

	t.Run("error", func(t *testing.T) {
		b, _ := Encode(ErrorFrame{Message: "join a room first"})
		if string(b) != `{"type":"error","message":"join a room first"}` {
			t.Fatalf("got %s", b)
		}
	})
}
