package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/metrics"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/gorilla/websocket"
)

// MessageSender persists a chat message and returns the stored record.
type MessageSender interface {
	Send(ctx context.Context, meetupID, userID uint, text string) (models.ChatMessage, error)
}

// MembershipChecker reports whether a user is an active participant.
type MembershipChecker interface {
	IsParticipant(ctx context.Context, meetupID, userID uint) (bool, error)
}

// Bus carries new_message frames and room evictions to relay instances in
// other processes.
type Bus interface {
	Publish(ctx context.Context, meetupID uint, frame []byte) error
	PublishEviction(ctx context.Context, meetupID, userID uint) error
}

type RelayConfig struct {
	// AllowedOrigins lists browser origins allowed to open a socket. Requests
	// without an Origin header (non-browser clients) are always accepted.
	AllowedOrigins []string
	// StoreTimeout bounds each persistence call made for a frame.
	StoreTimeout time.Duration
}

// Relay routes client frames: room subscription, chat messages and typing.
type Relay struct {
	hub      *Hub
	messages MessageSender
	members  MembershipChecker
	bus      Bus
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	timeout  time.Duration
}

func NewRelay(hub *Hub, messages MessageSender, members MembershipChecker, m *metrics.Metrics, cfg RelayConfig) *Relay {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 10 * time.Second
	}
	origins := slices.Clone(cfg.AllowedOrigins)
	return &Relay{
		hub:      hub,
		messages: messages,
		members:  members,
		metrics:  m,
		timeout:  cfg.StoreTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin) || slices.Contains(origins, "*")
			},
		},
	}
}

// SetBus attaches a cross-process bus. Must be called before serving.
func (r *Relay) SetBus(b Bus) { r.bus = b }

func (r *Relay) Hub() *Hub { return r.hub }

// Serve upgrades the request and runs the connection until it closes.
func (r *Relay) Serve(w http.ResponseWriter, req *http.Request, userID uint, username string) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Warn("ws upgrade", "error", err)
		return
	}

	c := newClient(r.hub, conn, userID, username)
	if !r.hub.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.close()
		return
	}
	slog.Debug("ws connected", "conn_id", c.id, "user_id", userID)

	go c.writePump()
	c.readPump(r)
}

// HandleFrame processes one raw frame from c.
func (r *Relay) HandleFrame(c *Client, data []byte) {
	frame, err := DecodeInbound(data)
	if err != nil {
		r.reject(c, "malformed", err.Error())
		return
	}

	switch f := frame.(type) {
	case JoinRoomFrame:
		r.joinRoom(c, f)
	case ChatMessageFrame:
		r.chatMessage(c, f)
	case TypingFrame:
		if !r.hub.setTyping(c, f.Typing) {
			r.reject(c, "not_subscribed", "join a room first")
		}
	}
}

func (r *Relay) joinRoom(c *Client, f JoinRoomFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	ok, err := r.members.IsParticipant(ctx, f.MeetupID, c.userID)
	if err != nil {
		r.rejectErr(c, err)
		return
	}
	if !ok {
		r.reject(c, "not_participant", services.ErrNotParticipant.Error())
		return
	}
	if !r.hub.subscribe(c, f.MeetupID) {
		return
	}
	// A leave that finished between the check and subscribe evicted nothing,
	// so confirm the membership once the connection is in the room.
	ok, err = r.members.IsParticipant(ctx, f.MeetupID, c.userID)
	if err != nil || !ok {
		r.hub.unsubscribe(c, f.MeetupID)
		if err != nil {
			r.rejectErr(c, err)
		} else {
			r.reject(c, "not_participant", services.ErrNotParticipant.Error())
		}
		return
	}
	r.send(c, RoomJoinedFrame{MeetupID: f.MeetupID})
}

func (r *Relay) chatMessage(c *Client, f ChatMessageFrame) {
	room := r.hub.Subscription(c)
	switch {
	case room == 0:
		r.reject(c, "not_subscribed", "join a room first")
		return
	case f.MeetupID != room:
		r.reject(c, "not_subscribed", fmt.Sprintf("not subscribed to meetup %d", f.MeetupID))
		return
	case f.UserID != c.userID:
		r.reject(c, "validation", "userId does not match the authenticated user")
		return
	}

	// The write must not be abandoned if the sender disconnects mid-call.
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	msg, err := r.messages.Send(ctx, f.MeetupID, f.UserID, f.Message)
	if err != nil {
		r.rejectErr(c, err)
		return
	}

	r.Publish(ctx, msg, c)
	r.send(c, MessageSentFrame{Message: msg})
}

// Publish fans a persisted message out as new_message to every local
// connection in its room except exclude, and to the bus if one is attached.
func (r *Relay) Publish(ctx context.Context, msg models.ChatMessage, exclude *Client) {
	payload, err := Encode(NewMessageFrame{Message: msg})
	if err != nil {
		slog.Error("ws encode new_message", "meetup_id", msg.MeetupID, "error", err)
		return
	}
	r.hub.Broadcast(msg.MeetupID, payload, exclude)
	if r.bus != nil {
		if err := r.bus.Publish(ctx, msg.MeetupID, payload); err != nil {
			slog.Warn("ws bus publish", "meetup_id", msg.MeetupID, "error", err)
		}
	}
}

// Deliver hands a frame that arrived over the bus to local connections.
func (r *Relay) Deliver(meetupID uint, payload []byte) {
	r.hub.Broadcast(meetupID, payload, nil)
}

// Evict takes every connection of userID out of the meetup room, here and on
// other instances. Call it once the user stops being a participant.
func (r *Relay) Evict(meetupID, userID uint) {
	r.DeliverEviction(meetupID, userID)
	if r.bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.bus.PublishEviction(ctx, meetupID, userID); err != nil {
			slog.Warn("ws bus publish eviction", "meetup_id", meetupID, "user_id", userID, "error", err)
		}
	}
}

// DeliverEviction applies an eviction to local connections only.
func (r *Relay) DeliverEviction(meetupID, userID uint) {
	for _, c := range r.hub.Evict(meetupID, userID) {
		slog.Debug("ws evicted from room", "conn_id", c.id, "meetup_id", meetupID, "user_id", userID)
		r.send(c, ErrorFrame{Message: fmt.Sprintf("no longer a participant of meetup %d", meetupID)})
	}
}

func (r *Relay) send(c *Client, f OutboundFrame) {
	payload, err := Encode(f)
	if err != nil {
		slog.Error("ws encode", "conn_id", c.id, "error", err)
		return
	}
	if !c.enqueue(payload) && !c.isClosed() {
		slog.Warn("ws peer too slow, disconnecting", "conn_id", c.id, "user_id", c.userID)
		r.metrics.PeerDropped()
		r.hub.unregister(c)
	}
}

func (r *Relay) reject(c *Client, reason, message string) {
	r.metrics.FrameRejected(reason)
	r.send(c, ErrorFrame{Message: message})
}

func (r *Relay) rejectErr(c *Client, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		r.reject(c, "validation", err.Error())
	case errors.Is(err, services.ErrNotParticipant):
		r.reject(c, "not_participant", services.ErrNotParticipant.Error())
	case errors.Is(err, services.ErrNotFound):
		r.reject(c, "not_found", "meetup not found")
	default:
		slog.Error("ws frame failed", "conn_id", c.id, "user_id", c.userID, "error", err)
		r.reject(c, "persistence", "temporary server error, please retry")
	}
}
