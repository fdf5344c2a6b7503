package linksdk

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the invitation link service. It serves the public
// endpoints and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckScopes makes sessions refuse requests their token has no scope
	// for, without a round trip. Tests disable it to exercise the server.
	CheckScopes bool
}

// NewClient creates a client with scope checking enabled.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckScopes: true,
	}
}
