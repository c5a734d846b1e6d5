// Package publisher provides the transport for pushing prepared articles to
// an external CMS. Implementations include the WordPress REST API and a
// generic signed webhook.
package publisher

import (
	"context"
	"fmt"

	"publishplane/internal/autopublish"
)

// Receipt is what the transport hands back after a successful publish.
type Receipt struct {
	PostID int64
	URL    string
}

// Publisher pushes a prepared article to the external CMS.
type Publisher interface {
	// Publish sends the payload and returns the CMS receipt.
	Publish(ctx context.Context, req autopublish.PublishRequest) (*Receipt, error)
}

// TransportError is a non-2xx response from the CMS.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("publish transport returned %d: %s", e.StatusCode, e.Message)
}
