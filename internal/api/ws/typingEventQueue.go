package ws

import (
	"slices"
	"strings"
)

// typingEventQueue lists who is typing, in the order they started.
type typingEventQueue []string

func (q *typingEventQueue) add(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	if slices.Contains(*q, username) {
		return
	}
	*q = append(*q, username)
}

func (q *typingEventQueue) remove(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	if i := slices.Index(*q, username); i >= 0 {
		*q = slices.Delete(*q, i, i+1)
	}
}

func (q typingEventQueue) snapshot() []string {
	return slices.Clone(q)
}
