package handlers

import (
	"net/http"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/middleware"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) CreateMeetup(c *gin.Context) {
	var in services.CreateMeetupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	meetup, err := h.Meetups.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meetup": meetup})
}

// ListMeetups returns joinable meetups, optionally filtered by ?type=.
func (h *Handlers) ListMeetups(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	meetupType := models.MeetupType(c.Query("type"))
	if meetupType != "" && meetupType.MaxParticipants() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown meetup type"})
		return
	}
	meetups, err := h.Meetups.ListOpen(c.Request.Context(), meetupType, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetups": meetups})
}

func (h *Handlers) ListMyMeetups(c *gin.Context) {
	meetups, err := h.Meetups.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetups": meetups})
}

func (h *Handlers) GetMeetup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	meetup, err := h.Meetups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetup": meetup})
}

func (h *Handlers) UpdateMeetup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.LogisticsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	meetup, err := h.Meetups.UpdateLogistics(c.Request.Context(), middleware.UserID(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetup": meetup})
}

func (h *Handlers) CancelMeetup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	meetup, err := h.Meetups.Cancel(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetup": meetup})
}
