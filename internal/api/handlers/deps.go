package handlers

import (
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/ws"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
)

// Handlers holds the services the HTTP layer calls into.
type Handlers struct {
	Users        *services.UserService
	Meetups      *services.MeetupService
	Participants *services.ParticipantService
	Messages     *services.MessageService
	Relay        *ws.Relay
	Tokens       *utils.TokenManager
	Started      time.Time
}
