// Package push subscribes to the dashboard's websocket notifications.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/logging"
)

// Handler receives every well-formed push message.
type Handler func(domain.PushMessage)

// Client keeps a websocket subscription open. After a close or a failed
// dial it waits a fixed delay and reconnects, forever, until its context
// ends. The delay never grows.
type Client struct {
	url      string
	delay    time.Duration
	dialer   *websocket.Dialer
	log      *logging.Logger
	connects atomic.Int64
}

// WebSocketURL derives ws(s)://host/ws from the dashboard API URL.
func WebSocketURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parsing api url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

func New(apiURL string, delay time.Duration, logger *logging.Logger) (*Client, error) {
	wsURL, err := WebSocketURL(apiURL)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = 3 * time.Second
	}
	return &Client{
		url:    wsURL,
		delay:  delay,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		log:    logger.With("push"),
	}, nil
}

// URL returns the websocket endpoint.
func (c *Client) URL() string { return c.url }

// Connects reports how many connections have been established so far.
func (c *Client) Connects() int64 { return c.connects.Load() }

// Run blocks, delivering messages to h until ctx is done.
func (c *Client) Run(ctx context.Context, h Handler) error {
	for {
		err := c.session(ctx, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Infof("disconnected url=%s error=%v; reconnecting in %s", c.url, err, c.delay)

		t := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (c *Client) session(ctx context.Context, h Handler) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	c.connects.Add(1)
	c.log.Infof("connected url=%s", c.url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg domain.PushMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.log.Debugf("ignoring malformed message: %s", truncate(data, 120))
			continue
		}
		c.log.Debugf("message type=%s", msg.Type)
		h(msg)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
