// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/turtlebridge/lib/binhash"
	"github.com/bureau-foundation/turtlebridge/lib/clock"
	"github.com/bureau-foundation/turtlebridge/rosbridge"
)

// DefaultMessageType is the ROS type of the camera topic.
const DefaultMessageType = "sensor_msgs/CompressedImage"

// CompressedImage is the JSON form of sensor_msgs/CompressedImage as
// rosbridge delivers it. Data is base64 encoded.
type CompressedImage struct {
	Format string `json:"format"`
	Data   string `json:"data"`
}

// Slot is a storage location allocated for one requested frame.
type Slot struct {
	// Sequence increases with every Arm and survives restarts.
	Sequence uint64

	// Path is where the frame is written.
	Path string
}

// ChannelConfig configures Open.
type ChannelConfig struct {
	// Bus delivers camera frames. Required.
	Bus rosbridge.Bus

	// Topic is the camera topic, e.g. /camera/rgb/image_raw/compressed.
	Topic string

	// MessageType defaults to DefaultMessageType.
	MessageType string

	// ThrottleRate is passed to the subscription, in milliseconds.
	ThrottleRate int

	// StorageFolder receives the images and the index. Created on
	// demand.
	StorageFolder string

	// Clock stamps storage times. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is required.
	Logger *slog.Logger
}

// Channel captures exactly one frame per Arm. The armed flag, current
// slot, sequence counter, and index are guarded by one mutex, so no
// caller observes the flag and the slot from different moments.
type Channel struct {
	folder string
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.Mutex
	armed    bool
	current  Slot
	sequence uint64
	index    *Index
	stored   chan struct{}
}

// Open loads the index from the storage folder and subscribes to the
// camera topic.
func Open(config ChannelConfig) (*Channel, error) {
	if config.Bus == nil {
		return nil, fmt.Errorf("capture: ChannelConfig.Bus is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("capture: ChannelConfig.Logger is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("capture: ChannelConfig.Topic is required")
	}
	if config.StorageFolder == "" {
		return nil, fmt.Errorf("capture: ChannelConfig.StorageFolder is required")
	}
	if config.MessageType == "" {
		config.MessageType = DefaultMessageType
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}

	index, err := LoadIndex(filepath.Join(config.StorageFolder, IndexFileName))
	if err != nil {
		return nil, err
	}

	channel := &Channel{
		folder:   config.StorageFolder,
		clock:    config.Clock,
		logger:   config.Logger.With("topic", config.Topic),
		sequence: index.MaxSequence(),
		index:    index,
		stored:   make(chan struct{}),
	}

	channel.logger.Debug("capture index loaded", "path", index.Path(), "max_sequence", channel.sequence)

	options := rosbridge.SubscribeOptions{ThrottleRate: config.ThrottleRate, QueueLength: 1}
	if err := config.Bus.Subscribe(config.Topic, config.MessageType, options, channel.Deliver); err != nil {
		return nil, fmt.Errorf("capture: subscribing to %s: %w", config.Topic, err)
	}
	return channel, nil
}

// Arm allocates a new slot and makes it current. A pending slot that
// has not received a frame is abandoned.
func (c *Channel) Arm() (Slot, error) {
	if err := os.MkdirAll(c.folder, 0755); err != nil {
		return Slot{}, fmt.Errorf("capture: creating %s: %w", c.folder, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.armed {
		c.logger.Info("discarding pending capture", "sequence", c.current.Sequence)
		c.index.Discard(c.current.Sequence)
	}

	c.sequence++
	slot := Slot{
		Sequence: c.sequence,
		Path:     filepath.Join(c.folder, uuid.NewString()+".jpeg"),
	}
	c.index.Add(slot)
	if err := c.index.Save(); err != nil {
		return Slot{}, err
	}

	c.current = slot
	c.armed = true
	c.logger.Debug("armed", "sequence", slot.Sequence, "path", slot.Path)
	return slot, nil
}

// Bind associates id with slot. Unlike RegisterRunID it does not
// depend on whether the frame already arrived.
func (c *Channel) Bind(slot Slot, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.index.Bind(id, slot.Sequence); err != nil {
		return err
	}
	return c.index.Save()
}

// RegisterRunID associates id with the current slot, but only while
// the channel is still armed. Once the frame has arrived it does
// nothing and returns false: an id that was not bound at arm time then
// stays unresolvable. An id already bound to another slot keeps its
// binding.
func (c *Channel) RegisterRunID(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed {
		c.logger.Debug("run id registered after capture completed", "run_id", id)
		return false
	}
	if record, ok := c.index.Lookup(id); ok {
		if record.Sequence != c.current.Sequence {
			c.logger.Debug("run id already bound to another slot", "run_id", id, "sequence", record.Sequence)
			return false
		}
		return true
	}
	if err := c.index.Bind(id, c.current.Sequence); err != nil {
		c.logger.Error("registering run id", "run_id", id, "error", err)
		return false
	}
	if err := c.index.Save(); err != nil {
		c.logger.Error("registering run id", "run_id", id, "error", err)
		return false
	}
	return true
}

// Deliver is the camera topic handler. It runs for every frame; frames
// arriving while disarmed are dropped.
func (c *Channel) Deliver(raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed {
		return
	}

	var message CompressedImage
	if err := json.Unmarshal(raw, &message); err != nil {
		c.logger.Warn("dropping undecodable image message", "error", err)
		return
	}
	data, err := base64.StdEncoding.DecodeString(message.Data)
	if err != nil {
		c.logger.Warn("dropping image with invalid base64 data", "error", err)
		return
	}

	if err := writeFileAtomic(c.current.Path, data, 0644); err != nil {
		c.logger.Error("storing captured image", "path", c.current.Path, "error", err)
		return
	}
	digest := binhash.Sum(data)
	c.index.MarkStored(c.current.Sequence, digest[:], c.clock.Now())
	if err := c.index.Save(); err != nil {
		c.logger.Error("recording captured image", "error", err)
	}

	c.armed = false
	close(c.stored)
	c.stored = make(chan struct{})
	c.logger.Info("stored captured image",
		"sequence", c.current.Sequence,
		"path", c.current.Path,
		"bytes", len(data),
		"digest", binhash.FormatDigest(digest[:]),
	)
}

// Armed reports whether the channel is waiting for a frame.
func (c *Channel) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// Stored reports whether the current slot's file exists.
func (c *Channel) Stored() bool {
	c.mu.Lock()
	path := c.current.Path
	c.mu.Unlock()

	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// StoredSignal returns a channel closed when the next frame is stored.
// Fetch it before checking Stored.
func (c *Channel) StoredSignal() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stored
}

// Disarm abandons a pending capture.
func (c *Channel) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.armed {
		c.logger.Info("capture abandoned", "sequence", c.current.Sequence)
	}
	c.armed = false
}

// Read returns the image stored for id after verifying its digest.
func (c *Channel) Read(id string) ([]byte, error) {
	c.mu.Lock()
	record, ok := c.index.Lookup(id)
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: no slot for run id %q", ErrNotFound, id)
	}
	if !record.Stored() {
		return nil, fmt.Errorf("%w: run id %q has not received an image", ErrNotFound, id)
	}

	data, err := os.ReadFile(record.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s was removed", ErrNotFound, record.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("capture: reading image for %q: %w", id, err)
	}

	digest := binhash.Sum(data)
	if !bytes.Equal(digest[:], record.Digest) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, record.Path)
	}
	return data, nil
}
