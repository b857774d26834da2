package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	stdpath "path"
	"sync"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/ws"
	"github.com/gorilla/websocket"
)

// Frame is an outbound client frame.
type Frame struct {
	Type     string `json:"type"`
	MeetupID uint   `json:"meetupId,omitempty"`
	UserID   uint   `json:"userId,omitempty"`
	Message  string `json:"message,omitempty"`
}

func JoinRoom(meetupID uint) Frame {
	return Frame{Type: ws.TypeJoinRoom, MeetupID: meetupID}
}

func ChatMessage(meetupID, userID uint, text string) Frame {
	return Frame{Type: ws.TypeChatMessage, MeetupID: meetupID, UserID: userID, Message: text}
}

func Typing(isTyping bool) Frame {
	if isTyping {
		return Frame{Type: ws.TypeTyping}
	}
	return Frame{Type: ws.TypeStoppedTyping}
}

// Subscribe opens the chat socket. It returns:
//   - a channel of incoming events, closed when the socket drops,
//   - a cancel function to close the stream,
//   - and a send function to push frames to the server.
func (c *APIClient) Subscribe() (<-chan ws.WsEvent, func(), func(Frame) error, error) {
	if c.baseURL == "" {
		return nil, nil, nil, fmt.Errorf("client not initialized")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = stdpath.Join(u.Path, "meetups/ws")

	header := http.Header{}
	if c.accessToken != "" {
		header.Set("Authorization", "Bearer "+c.accessToken)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, nil, nil, fmt.Errorf("ws dial failed: %s", resp.Status)
		}
		return nil, nil, nil, fmt.Errorf("ws dial error: %w", err)
	}

	ch := make(chan ws.WsEvent, 32)
	go func() {
		defer close(ch)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var evt ws.WsEvent
			if err := json.Unmarshal(data, &evt); err == nil {
				ch <- evt
			}
		}
	}()

	var writeMu sync.Mutex
	send := func(f Frame) error {
		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	cancel := func() {
		writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		writeMu.Unlock()
		_ = conn.Close()
	}

	return ch, cancel, send, nil
}
