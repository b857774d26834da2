package client

import (
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
)

// Register creates a profile and switches the client to its token.
func (c *APIClient) Register(username, email string) (models.User, string, error) {
	res, err := decode[struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}](c.post("/users", map[string]string{"username": username, "email": email}))
	if err != nil {
		return models.User{}, "", err
	}
	c.SetToken(res.Token)
	return res.User, res.Token, nil
}

func (c *APIClient) Me() (models.User, error) {
	res, err := decode[struct {
		User models.User `json:"user"`
	}](c.get("/users/me"))
	return res.User, err
}
