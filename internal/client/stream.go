package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/feed"
)

// Stream connects to a match's websocket feed and calls fn with each event,
// starting with the current snapshot, until ctx ends, the server closes the
// stream, or fn returns an error. fn runs on the calling goroutine.
func (c *Client) Stream(ctx context.Context, matchID string, fn func(feed.Event) error) error {
	url := c.baseURL + api.StreamPath(matchID)
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}

	header := http.Header{}
	if token, ok := c.session.Token(); ok {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return classify(resp.StatusCode, resp.Header, api.ErrorBody{Message: "stream refused"})
		}
		return &Error{Kind: KindNetwork, Message: "dial stream", Err: err}
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller cancels.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev feed.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &Error{Kind: KindNetwork, Message: "read stream", Err: err}
		}
		if err := fn(ev); err != nil {
			return fmt.Errorf("stream handler: %w", err)
		}
	}
}
