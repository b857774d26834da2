package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

const ctxMeetupID = "meetupID"

type MembershipChecker interface {
	IsParticipant(ctx context.Context, meetupID, userID uint) (bool, error)
}

// MeetupMember lets the request through only when the caller is an active
// participant of the meetup named by the :id path parameter.
func MeetupMember(members MembershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid meetup id"})
			return
		}

		ok, err := members.IsParticipant(c.Request.Context(), uint(id), UserID(c))
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "meetup not found"})
			return
		case err != nil:
			slog.Error("membership check", "meetup_id", id, "user_id", UserID(c), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "error retrieving membership"})
			return
		case !ok:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrNotParticipant.Error()})
			return
		}

		c.Set(ctxMeetupID, uint(id))
		c.Next()
	}
}

// MeetupID returns the id validated by MeetupMember.
func MeetupID(c *gin.Context) uint {
	return c.GetUint(ctxMeetupID)
}
