package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

const (
	maxMessageSize = 4 * 1024
	readTimeout    = 10 * time.Minute
)

// Dialer opens the push channel the backend uses to stream progress,
// completion and error events for one submission.
type Dialer struct {
	channelURL string
	dialer     *websocket.Dialer
}

func NewDialer(channelURL string) *Dialer {
	return &Dialer{
		channelURL: channelURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Dial connects with the client-generated socket id so the backend can
// correlate events with the multipart request carrying the same id.
func (d *Dialer) Dial(ctx context.Context, socketID string) (ports.ProgressEvents, error) {
	endpoint, err := url.Parse(d.channelURL)
	if err != nil {
		return nil, fmt.Errorf("parse push channel url: %w", err)
	}
	query := endpoint.Query()
	query.Set("socket_id", socketID)
	endpoint.RawQuery = query.Encode()

	conn, resp, err := d.dialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial push channel: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial push channel: %w", err)
	}

	ch := &Channel{
		conn:   conn,
		events: make(chan domain.UploadEvent, 16),
	}
	go ch.readLoop()
	return ch, nil
}

// Channel is one open push channel. Events closes when the peer goes
// away, a terminal event arrives, or Close is called.
type Channel struct {
	conn      *websocket.Conn
	events    chan domain.UploadEvent
	closeOnce sync.Once
}

func (c *Channel) Events() <-chan domain.UploadEvent {
	return c.events
}

func (c *Channel) readLoop() {
	defer close(c.events)
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		var event domain.UploadEvent
		if err := c.conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("push channel closed", "error", err)
			}
			return
		}

		switch event.Kind {
		case domain.EventProgress, domain.EventComplete, domain.EventError:
			c.events <- event
		default:
			// Unknown event kinds are ignored so the backend can add
			// new ones without breaking older clients.
			continue
		}
		if event.Kind == domain.EventComplete || event.Kind == domain.EventError {
			return
		}
	}
}

// Close tears the channel down; safe to call more than once. The upload
// workflow calls it whenever it leaves the Submitting state.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		err = c.conn.Close()
	})
	return err
}
