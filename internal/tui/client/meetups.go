package client

import (
	"fmt"
	"net/url"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/patrickmn/go-cache"
)

type meetupsResponse struct {
	Meetups []models.Meetup `json:"meetups"`
}

type meetupResponse struct {
	Meetup models.Meetup `json:"meetup"`
}

// OpenMeetups lists joinable meetups. Results are cached briefly; membership
// changes made through this client flush the cache.
func (c *APIClient) OpenMeetups(meetupType models.MeetupType) ([]models.Meetup, error) {
	path := "/meetups"
	if meetupType != "" {
		path += "?type=" + url.QueryEscape(string(meetupType))
	}
	if cached, found := c.cache.Get(path); found {
		return cached.([]models.Meetup), nil
	}
	res, err := decode[meetupsResponse](c.get(path))
	if err != nil {
		return nil, err
	}
	c.cache.Set(path, res.Meetups, cache.DefaultExpiration)
	return res.Meetups, nil
}

func (c *APIClient) MyMeetups() ([]models.Meetup, error) {
	res, err := decode[meetupsResponse](c.get("/meetups/mine"))
	return res.Meetups, err
}

func (c *APIClient) CreateMeetup(in services.CreateMeetupInput) (models.Meetup, error) {
	res, err := decode[meetupResponse](c.post("/meetups", in))
	c.cache.Flush()
	return res.Meetup, err
}

func (c *APIClient) JoinMeetup(meetupID uint) (models.Meetup, error) {
	res, err := decode[meetupResponse](c.post(fmt.Sprintf("/meetups/%d/join", meetupID), nil))
	c.cache.Flush()
	return res.Meetup, err
}

func (c *APIClient) LeaveMeetup(meetupID uint) (models.Meetup, error) {
	res, err := decode[meetupResponse](c.post(fmt.Sprintf("/meetups/%d/leave", meetupID), nil))
	c.cache.Flush()
	return res.Meetup, err
}

func (c *APIClient) Participants(meetupID uint) ([]models.ParticipantWithUser, error) {
	res, err := decode[struct {
		Participants []models.ParticipantWithUser `json:"participants"`
	}](c.get(fmt.Sprintf("/meetups/%d/participants", meetupID)))
	return res.Participants, err
}
