// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/bureau-foundation/turtlebridge/lib/netutil"
)

// Compile-time interface check.
var _ Bus = (*Client)(nil)

// ErrClosed is returned by operations on a Client whose connection has
// ended.
var ErrClosed = errors.New("rosbridge: connection closed")

// ClientConfig configures Dial.
type ClientConfig struct {
	// URL is the rosbridge websocket endpoint (ws:// or wss://).
	URL string

	// Origin is sent in the websocket handshake.
	Origin string

	// Logger receives connection and protocol events. Required.
	Logger *slog.Logger
}

// Client is a rosbridge websocket connection. It is safe for concurrent
// use: writes are serialized, and handlers run on the single read loop
// goroutine.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// writeMu serializes frames on the connection.
	writeMu sync.Mutex

	mu         sync.Mutex
	handlers   map[string][]Handler
	advertised map[string]string // topic -> message type
	nextID     uint64

	done    chan struct{}
	readErr error
}

// Dial opens a websocket connection to the rosbridge server and starts
// the read loop. The connection lives until Close is called or the
// server goes away; ctx bounds only the handshake.
func Dial(ctx context.Context, config ClientConfig) (*Client, error) {
	if config.Logger == nil {
		return nil, fmt.Errorf("rosbridge: ClientConfig.Logger is required")
	}
	origin := config.Origin
	if origin == "" {
		origin = "http://localhost/"
	}
	wsConfig, err := websocket.NewConfig(config.URL, origin)
	if err != nil {
		return nil, fmt.Errorf("rosbridge: configuring %s: %w", config.URL, err)
	}
	conn, err := wsConfig.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosbridge: connecting to %s: %w", config.URL, err)
	}

	client := &Client{
		conn:       conn,
		logger:     config.Logger.With("rosbridge", config.URL),
		handlers:   make(map[string][]Handler),
		advertised: make(map[string]string),
		done:       make(chan struct{}),
	}
	go client.readLoop()

	client.logger.Info("connected to rosbridge")
	return client, nil
}

// Subscribe registers handler for topic. The subscribe operation is
// sent to the server only for the first handler of a topic.
func (c *Client) Subscribe(topic, messageType string, options SubscribeOptions, handler Handler) error {
	c.mu.Lock()
	first := len(c.handlers[topic]) == 0
	c.handlers[topic] = append(c.handlers[topic], handler)
	id := c.allocateIDLocked(opSubscribe, topic)
	c.mu.Unlock()

	if !first {
		return nil
	}
	err := c.send(frame{
		Op:           opSubscribe,
		ID:           id,
		Topic:        topic,
		Type:         messageType,
		ThrottleRate: options.ThrottleRate,
		QueueLength:  options.QueueLength,
	})
	if err != nil {
		return fmt.Errorf("rosbridge: subscribing to %s: %w", topic, err)
	}
	c.logger.Debug("subscribed", "topic", topic, "type", messageType)
	return nil
}

// Publish advertises topic on first use and sends message on it.
func (c *Client) Publish(topic, messageType string, message any) error {
	encoded, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("rosbridge: encoding message for %s: %w", topic, err)
	}

	c.mu.Lock()
	_, advertised := c.advertised[topic]
	if !advertised {
		c.advertised[topic] = messageType
	}
	advertiseID := c.allocateIDLocked(opAdvertise, topic)
	publishID := c.allocateIDLocked(opPublish, topic)
	c.mu.Unlock()

	if !advertised {
		if err := c.send(frame{Op: opAdvertise, ID: advertiseID, Topic: topic, Type: messageType}); err != nil {
			c.mu.Lock()
			delete(c.advertised, topic)
			c.mu.Unlock()
			return fmt.Errorf("rosbridge: advertising %s: %w", topic, err)
		}
	}
	if err := c.send(frame{Op: opPublish, ID: publishID, Topic: topic, Msg: encoded}); err != nil {
		return fmt.Errorf("rosbridge: publishing on %s: %w", topic, err)
	}
	return nil
}

// Done returns a channel closed when the read loop exits.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns the error that ended the read loop, or nil while the
// connection is open.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.readErr
	default:
		return nil
	}
}

// Close unsubscribes from every topic and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	topics := make([]string, 0, len(c.handlers))
	for topic := range c.handlers {
		topics = append(topics, topic)
	}
	c.mu.Unlock()

	for _, topic := range topics {
		// Best effort: the server drops subscriptions of closed
		// connections anyway.
		_ = c.send(frame{Op: opUnsubscribe, Topic: topic})
	}
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) allocateIDLocked(op, topic string) string {
	c.nextID++
	return fmt.Sprintf("%s:%s:%d", op, topic, c.nextID)
}

func (c *Client) send(f frame) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return websocket.JSON.Send(c.conn, f)
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var incoming frame
		if err := websocket.JSON.Receive(c.conn, &incoming); err != nil {
			c.readErr = fmt.Errorf("%w: %v", ErrClosed, err)
			if netutil.IsExpectedCloseError(err) {
				c.logger.Info("rosbridge connection closed")
			} else {
				c.logger.Error("rosbridge read loop failed", "error", err)
			}
			return
		}

		switch incoming.Op {
		case opPublish:
			c.dispatch(incoming.Topic, incoming.Msg)
		case opStatus:
			c.logger.Warn("rosbridge status",
				"level", incoming.Level,
				"id", incoming.ID,
				"message", incoming.statusText(),
			)
		default:
			c.logger.Debug("ignoring rosbridge frame", "op", incoming.Op, "topic", incoming.Topic)
		}
	}
}

func (c *Client) dispatch(topic string, message json.RawMessage) {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[topic]...)
	c.mu.Unlock()

	if len(handlers) == 0 {
		c.logger.Debug("message on unsubscribed topic", "topic", topic)
		return
	}
	for _, handler := range handlers {
		handler(message)
	}
}
