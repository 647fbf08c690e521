// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosbridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Topic caches the most recent message of one ROS topic and publishes
// on it. T is the Go shape of the message's JSON.
//
// The cached value and the update signal are guarded by one mutex, so
// a reader never pairs a value with the signal of a different update.
type Topic[T any] struct {
	bus         Bus
	name        string
	messageType string
	logger      *slog.Logger

	mu       sync.Mutex
	value    T
	received bool
	updated  chan struct{}
}

// NewTopic subscribes to name on bus and returns the cache. The
// subscription is made exactly once, here.
func NewTopic[T any](bus Bus, name, messageType string, options SubscribeOptions, logger *slog.Logger) (*Topic[T], error) {
	topic := &Topic[T]{
		bus:         bus,
		name:        name,
		messageType: messageType,
		logger:      logger.With("topic", name),
		updated:     make(chan struct{}),
	}
	if err := bus.Subscribe(name, messageType, options, topic.receive); err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", name, err)
	}
	return topic, nil
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// Value returns the latest message and whether any has arrived.
func (t *Topic[T]) Value() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.received
}

// Updated returns a channel that is closed when the next message
// arrives. Fetch the channel before reading Value to avoid missing an
// update between the two calls.
func (t *Topic[T]) Updated() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updated
}

// Publish sends message on the topic.
func (t *Topic[T]) Publish(message T) error {
	if err := t.bus.Publish(t.name, t.messageType, message); err != nil {
		return err
	}
	t.logger.Debug("published")
	return nil
}

// receive is the bus handler. Undecodable messages are dropped and the
// previous value kept.
func (t *Topic[T]) receive(raw json.RawMessage) {
	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.logger.Warn("dropping undecodable message", "error", err)
		return
	}

	t.mu.Lock()
	t.value = decoded
	t.received = true
	close(t.updated)
	t.updated = make(chan struct{})
	t.mu.Unlock()

	t.logger.Debug("updated value")
}
