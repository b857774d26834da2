package handlers

import (
	"net/http"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type postMessageRequest struct {
	Message string `json:"message"`
}

func (h *Handlers) GetMessages(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	messages, err := h.Messages.History(c.Request.Context(), middleware.MeetupID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// PostMessage persists a message and relays it to every live connection in
// the meetup room.
func (h *Handlers) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.Messages.Send(c.Request.Context(), middleware.MeetupID(c), middleware.UserID(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Relay != nil {
		h.Relay.Publish(c.Request.Context(), msg, nil)
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
