package ws

import "strings"

// Room holds the connections subscribed to one meetup and its typing state.
// All fields are guarded by the owning Hub's mutex.
type Room struct {
	meetupID     uint
	clients      map[*Client]struct{}
	typingEventQ typingEventQueue
	typingByConn map[*Client]string // username each connection is typing as
	typingCounts map[string]int     // typing connections per username (multi-tab)
}

func newRoom(meetupID uint) *Room {
	return &Room{
		meetupID:     meetupID,
		clients:      make(map[*Client]struct{}),
		typingByConn: make(map[*Client]string),
		typingCounts: make(map[string]int),
	}
}

func (r *Room) members() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

// applyTyping records a typing start or stop for a connection and reports
// whether the visible typing queue changed.
func (r *Room) applyTyping(c *Client, username string, isTyping bool) bool {
	if !isTyping {
		return r.clearTyping(c)
	}
	if _, ok := r.clients[c]; !ok {
		return false
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return false
	}

	prev, wasTyping := r.typingByConn[c]
	if wasTyping && prev == username {
		return false
	}

	changed := false
	if wasTyping {
		changed = r.decrementTyping(prev)
	}
	r.typingByConn[c] = username
	return r.incrementTyping(username) || changed
}

func (r *Room) clearTyping(c *Client) bool {
	prev, ok := r.typingByConn[c]
	if !ok {
		return false
	}
	delete(r.typingByConn, c)
	return r.decrementTyping(prev)
}

func (r *Room) incrementTyping(username string) bool {
	count := r.typingCounts[username]
	r.typingCounts[username] = count + 1
	if count == 0 {
		r.typingEventQ.add(username)
		return true
	}
	return false
}

func (r *Room) decrementTyping(username string) bool {
	count := r.typingCounts[username]
	if count <= 1 {
		delete(r.typingCounts, username)
		r.typingEventQ.remove(username)
		return true
	}
	r.typingCounts[username] = count - 1
	return false
}
