package client

import (
	"fmt"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
)

func (c *APIClient) GetMessages(meetupID uint, limit int) ([]models.ChatMessage, error) {
	path := fmt.Sprintf("/meetups/%d/messages", meetupID)
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	res, err := decode[struct {
		Messages []models.ChatMessage `json:"messages"`
	}](c.get(path))
	return res.Messages, err
}

// SendMessage posts over HTTP, for when no socket is open.
func (c *APIClient) SendMessage(meetupID uint, text string) (models.ChatMessage, error) {
	res, err := decode[struct {
		Message models.ChatMessage `json:"message"`
	}](c.post(fmt.Sprintf("/meetups/%d/messages", meetupID), map[string]string{"message": text}))
	return res.Message, err
}
