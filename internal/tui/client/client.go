package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type APIClient struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
	cache       *cache.Cache
}

// NewAPIClient checks that the server at serverURL answers its health check.
func NewAPIClient(serverURL string) (*APIClient, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, fmt.Errorf("server URL is empty")
	}

	c := &APIClient{
		baseURL:    serverURL + "/api",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.New(30*time.Second, time.Minute),
	}
	if _, err := c.get("/health"); err != nil {
		return nil, fmt.Errorf("failed to connect to server at %s: %w", c.baseURL, err)
	}
	return c, nil
}

func (c *APIClient) SetToken(token string) {
	c.accessToken = token
	c.cache.Flush()
}
