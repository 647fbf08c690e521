// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosbridge

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Compile-time interface check.
var _ Bus = (*MemoryBus)(nil)

// MemoryBus is an in-process Bus for tests. Nothing crosses a network:
// Deliver hands a message straight to the subscribed handlers, and
// Publish records the message and runs the OnPublish hooks for its
// topic.
type MemoryBus struct {
	mu        sync.Mutex
	handlers  map[string][]Handler
	options   map[string]SubscribeOptions
	published map[string][]json.RawMessage
	hooks     map[string][]func(json.RawMessage)
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers:  make(map[string][]Handler),
		options:   make(map[string]SubscribeOptions),
		published: make(map[string][]json.RawMessage),
		hooks:     make(map[string][]func(json.RawMessage)),
	}
}

func (b *MemoryBus) Subscribe(topic, _ string, options SubscribeOptions, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	b.options[topic] = options
	return nil
}

func (b *MemoryBus) Publish(topic, _ string, message any) error {
	encoded, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("rosbridge: encoding message for %s: %w", topic, err)
	}

	b.mu.Lock()
	b.published[topic] = append(b.published[topic], encoded)
	hooks := append(([]func(json.RawMessage))(nil), b.hooks[topic]...)
	b.mu.Unlock()

	for _, hook := range hooks {
		hook(encoded)
	}
	return nil
}

// Deliver encodes message as JSON and passes it to every handler
// subscribed to topic, synchronously, as if the robot had published it.
func (b *MemoryBus) Deliver(topic string, message any) error {
	encoded, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("rosbridge: encoding message for %s: %w", topic, err)
	}
	b.DeliverRaw(topic, encoded)
	return nil
}

// DeliverRaw passes pre-encoded JSON to every handler subscribed to
// topic. Use it to deliver malformed messages.
func (b *MemoryBus) DeliverRaw(topic string, message json.RawMessage) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[topic]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(message)
	}
}

// OnPublish registers hook to run (on the publisher's goroutine) after
// each Publish on topic.
func (b *MemoryBus) OnPublish(topic string, hook func(message json.RawMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks[topic] = append(b.hooks[topic], hook)
}

// Published returns the messages published on topic, oldest first.
func (b *MemoryBus) Published(topic string) []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]json.RawMessage(nil), b.published[topic]...)
}

// Subscribers returns the number of handlers subscribed to topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[topic])
}

// Options returns the options of the latest subscription to topic.
func (b *MemoryBus) Options(topic string) SubscribeOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options[topic]
}
