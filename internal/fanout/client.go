package fanout

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/footy-advisor/internal/events"
	"github.com/charleschow/footy-advisor/internal/telemetry"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 30 * time.Second
)

// Client connects to a central fanout server and republishes received
// advisory events onto a local in-process bus. Downstream consumers
// (dashboards, tail loggers) run this instead of the full pipeline.
type Client struct {
	addr      string
	fixtureID string
	league    string
	bus       *events.Bus
}

func NewClient(addr, fixtureID, league string, bus *events.Bus) *Client {
	return &Client{
		addr:      addr,
		fixtureID: fixtureID,
		league:    league,
		bus:       bus,
	}
}

// ConnectWithRetry connects to the fanout server and reconnects on failure
// with exponential backoff. Blocks until ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}

		attempt++
		backoff := time.Duration(float64(minBackoff) * math.Pow(2, float64(min(attempt-1, 5))))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		if err != nil {
			telemetry.Warnf("fanout: connection lost (attempt %d): %v, retrying in %s", attempt, err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	q := url.Values{}
	if c.fixtureID != "" {
		q.Set("fixture", c.fixtureID)
	}
	if c.league != "" {
		q.Set("league", c.league)
	}
	wsURL := fmt.Sprintf("ws://%s/ws", c.addr)
	if enc := q.Encode(); enc != "" {
		wsURL += "?" + enc
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	telemetry.Infof("fanout: connected to %s fixture=%q league=%q", c.addr, c.fixtureID, c.league)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		evt, err := UnmarshalEvent(msg)
		if err != nil {
			telemetry.Warnf("fanout: unmarshal error: %v", err)
			continue
		}

		c.bus.Publish(evt)
	}
}
