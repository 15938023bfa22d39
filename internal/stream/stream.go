// Package stream provides the realtime event feed from the backend.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	terrors "tradegate/internal/errors"
	"tradegate/internal/models"
	"tradegate/internal/session"
)

// Client consumes the backend's realtime websocket feed. The bearer token
// is attached during the handshake; a 401 on the handshake surfaces as
// ErrUnauthenticated and the caller re-authenticates, the feed does not
// refresh tokens itself.
type Client struct {
	url    string
	tokens session.Store
	logger zerolog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	onEvent   func(models.StreamEvent)
	onError   func(error)
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a realtime stream client for the given websocket URL.
func NewClient(url string, tokens session.Store, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		tokens: tokens,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// OnEvent registers the handler invoked for every decoded event.
func (c *Client) OnEvent(handler func(models.StreamEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = handler
}

// OnError registers the handler invoked for read or decode failures.
func (c *Client) OnError(handler func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = handler
}

// Connect dials the feed and starts the read loop. It returns once the
// handshake completed; events are delivered on a background goroutine.
func (c *Client) Connect(ctx context.Context) error {
	tokens, ok := c.tokens.Get()
	if !ok {
		return terrors.ErrUnauthenticated
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tokens.Access)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return terrors.Wrap(terrors.ErrUnauthenticated, "stream handshake rejected")
		}
		return fmt.Errorf("stream connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info().Str("url", c.url).Msg("Realtime stream connected")
	go c.readLoop(conn)
	return nil
}

// Disconnect closes the feed.
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn().Err(err).Msg("Realtime stream read failed")
				c.emitError(err)
			}
			return
		}

		var event models.StreamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.emitError(fmt.Errorf("decode stream event: %w", err))
			continue
		}
		c.emitEvent(event)
	}
}

func (c *Client) emitEvent(event models.StreamEvent) {
	c.mu.Lock()
	handler := c.onEvent
	c.mu.Unlock()
	if handler != nil {
		handler(event)
	}
}

func (c *Client) emitError(err error) {
	c.mu.Lock()
	handler := c.onError
	c.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}
