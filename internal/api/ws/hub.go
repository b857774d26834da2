package ws

import (
	"log/slog"
	"sync"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/metrics"
)

// Hub tracks live connections and the meetup room each one is subscribed to.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[uint]*Room
	closed  bool
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[uint]*Room),
		metrics: m,
	}
}

// register adds a connection. It reports false once the hub is shut down.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.ConnectionOpened()
	return true
}

// unregister removes a connection and its room subscription and closes it.
// Calling it more than once is harmless.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	var typing []*Client
	var payload []byte
	if ok {
		delete(h.clients, c)
		typing, payload = h.leaveRoomLocked(c)
		h.metrics.ConnectionClosed()
	}
	h.mu.Unlock()

	c.close()
	if payload != nil {
		h.deliver(typing, payload, nil)
	}
}

// subscribe moves a connection into the room for meetupID, leaving any room
// it was in before.
func (h *Hub) subscribe(c *Client, meetupID uint) bool {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return false
	}
	var typing []*Client
	var payload []byte
	if c.room != meetupID {
		typing, payload = h.leaveRoomLocked(c)
	}
	r := h.rooms[meetupID]
	if r == nil {
		r = newRoom(meetupID)
		h.rooms[meetupID] = r
	}
	r.clients[c] = struct{}{}
	c.room = meetupID
	h.mu.Unlock()

	if payload != nil {
		h.deliver(typing, payload, nil)
	}
	return true
}

// unsubscribe drops c from the room for meetupID if it is still subscribed there.
func (h *Hub) unsubscribe(c *Client, meetupID uint) {
	h.mu.Lock()
	var typing []*Client
	var payload []byte
	if c.room == meetupID {
		typing, payload = h.leaveRoomLocked(c)
	}
	h.mu.Unlock()

	if payload != nil {
		h.deliver(typing, payload, nil)
	}
}

// Evict unsubscribes every connection of userID from the meetup room and
// returns them. The connections stay open.
func (h *Hub) Evict(meetupID, userID uint) []*Client {
	h.mu.Lock()
	r := h.rooms[meetupID]
	if r == nil {
		h.mu.Unlock()
		return nil
	}
	var evicted []*Client
	changed := false
	for _, c := range r.members() {
		if c.userID != userID {
			continue
		}
		evicted = append(evicted, c)
		if _, p := h.leaveRoomLocked(c); p != nil {
			changed = true
		}
	}
	var typing []*Client
	var payload []byte
	if changed && len(r.clients) > 0 {
		typing, payload = r.members(), typingQueuePayload(r)
	}
	h.mu.Unlock()

	if payload != nil {
		h.deliver(typing, payload, nil)
	}
	return evicted
}

// leaveRoomLocked drops c from its room. If that changed the room's typing
// queue it returns the remaining members and the typing_queue frame to send.
func (h *Hub) leaveRoomLocked(c *Client) ([]*Client, []byte) {
	r := h.rooms[c.room]
	c.room = 0
	if r == nil {
		return nil, nil
	}
	changed := r.clearTyping(c)
	delete(r.clients, c)
	if len(r.clients) == 0 {
		delete(h.rooms, r.meetupID)
		return nil, nil
	}
	if !changed {
		return nil, nil
	}
	return r.members(), typingQueuePayload(r)
}

// Subscription returns the meetup the connection is subscribed to, or 0.
func (h *Hub) Subscription(c *Client) uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.room
}

// RoomSize reports how many connections are subscribed to a meetup.
func (h *Hub) RoomSize(meetupID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r := h.rooms[meetupID]; r != nil {
		return len(r.clients)
	}
	return 0
}

// Broadcast queues payload for every connection in the meetup room except
// exclude and returns how many connections accepted it. Delivery is best
// effort: a connection whose queue is full is disconnected.
func (h *Hub) Broadcast(meetupID uint, payload []byte, exclude *Client) int {
	h.mu.RLock()
	var targets []*Client
	if r := h.rooms[meetupID]; r != nil {
		targets = r.members()
	}
	h.mu.RUnlock()
	return h.deliver(targets, payload, exclude)
}

func (h *Hub) deliver(targets []*Client, payload []byte, exclude *Client) int {
	delivered := 0
	for _, c := range targets {
		if c == exclude {
			continue
		}
		if c.enqueue(payload) {
			delivered++
			continue
		}
		if c.isClosed() {
			continue
		}
		slog.Warn("ws peer too slow, disconnecting", "conn_id", c.id, "user_id", c.userID)
		h.metrics.PeerDropped()
		h.unregister(c)
	}
	return delivered
}

// setTyping updates the typing queue of the connection's room and broadcasts
// it when it changed.
func (h *Hub) setTyping(c *Client, isTyping bool) bool {
	h.mu.Lock()
	r := h.rooms[c.room]
	if r == nil {
		h.mu.Unlock()
		return false
	}
	if !r.applyTyping(c, c.username, isTyping) {
		h.mu.Unlock()
		return true
	}
	targets := r.members()
	payload := typingQueuePayload(r)
	h.mu.Unlock()

	if payload != nil {
		h.deliver(targets, payload, nil)
	}
	return true
}

func typingQueuePayload(r *Room) []byte {
	b, err := Encode(TypingQueueFrame{Usernames: r.typingEventQ.snapshot()})
	if err != nil {
		slog.Error("ws typing queue encode", "meetup_id", r.meetupID, "error", err)
		return nil
	}
	return b
}

// Shutdown closes every connection and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}
