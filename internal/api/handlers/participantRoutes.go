package handlers

import (
	"net/http"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) JoinMeetup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	meetup, err := h.Participants.Join(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetup": meetup})
}

func (h *Handlers) LeaveMeetup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	meetup, err := h.Participants.Leave(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetup": meetup})
}

// RemoveParticipant lets the meetup creator remove another participant.
func (h *Handlers) RemoveParticipant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	meetup, err := h.Participants.Remove(c.Request.Context(), id, middleware.UserID(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetup": meetup})
}

func (h *Handlers) ListParticipants(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	participants, err := h.Participants.ListParticipants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}
