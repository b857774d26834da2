package handlers

import (
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// MeetupWebSocket upgrades an authenticated request to the chat relay.
func (h *Handlers) MeetupWebSocket(c *gin.Context) {
	h.Relay.Serve(c.Writer, c.Request, middleware.UserID(c), middleware.Username(c))
}
