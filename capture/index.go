// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/bureau-foundation/turtlebridge/lib/codec"
)

// IndexFileName is the name of the index file in the storage folder.
const IndexFileName = "index.cbor"

// Record describes one allocated slot.
type Record struct {
	Sequence uint64 `cbor:"sequence"`
	Path     string `cbor:"path"`

	// Digest is the BLAKE3-256 digest of the stored image. Empty until
	// the image is written.
	Digest []byte `cbor:"digest,omitempty"`

	StoredAt time.Time `cbor:"stored_at"`
}

// Stored reports whether an image was written to the slot.
func (r Record) Stored() bool { return len(r.Digest) > 0 }

// indexFile is the on-disk form of an Index.
type indexFile struct {
	Slots  map[uint64]Record `cbor:"slots"`
	RunIDs map[string]uint64 `cbor:"run_ids"`
}

// Index maps run identifiers to slots and records what was stored in
// each slot. It is not safe for concurrent use; Channel guards it with
// its own mutex.
type Index struct {
	path   string
	slots  map[uint64]Record
	runIDs map[string]uint64
}

// LoadIndex reads the index at path. A missing file yields an empty
// index that will be created on the first Save.
func LoadIndex(path string) (*Index, error) {
	index := &Index{
		path:   path,
		slots:  make(map[uint64]Record),
		runIDs: make(map[string]uint64),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return index, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading capture index: %w", err)
	}

	var file indexFile
	if err := codec.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding capture index %s: %w", path, err)
	}
	for sequence, record := range file.Slots {
		index.slots[sequence] = record
	}
	for id, sequence := range file.RunIDs {
		index.runIDs[id] = sequence
	}
	return index, nil
}

// Path returns the file the index is saved to.
func (x *Index) Path() string { return x.path }

// MaxSequence returns the highest slot sequence number in the index.
func (x *Index) MaxSequence() uint64 {
	var highest uint64
	for sequence := range x.slots {
		if sequence > highest {
			highest = sequence
		}
	}
	return highest
}

// Add records a newly allocated slot.
func (x *Index) Add(slot Slot) {
	x.slots[slot.Sequence] = Record{Sequence: slot.Sequence, Path: slot.Path}
}

// Discard removes a slot that was never written and never bound to a
// run identifier. Slots that are stored or bound are kept.
func (x *Index) Discard(sequence uint64) {
	record, ok := x.slots[sequence]
	if !ok || record.Stored() {
		return
	}
	for _, bound := range x.runIDs {
		if bound == sequence {
			return
		}
	}
	delete(x.slots, sequence)
}

// Bind associates id with the slot. A later Bind of the same id
// replaces the association.
func (x *Index) Bind(id string, sequence uint64) error {
	if _, ok := x.slots[sequence]; !ok {
		return fmt.Errorf("capture: binding %q: unknown slot %d", id, sequence)
	}
	x.runIDs[id] = sequence
	return nil
}

// MarkStored records the digest and storage time of the slot's image.
func (x *Index) MarkStored(sequence uint64, digest []byte, storedAt time.Time) {
	record := x.slots[sequence]
	record.Sequence = sequence
	record.Digest = digest
	record.StoredAt = storedAt.UTC()
	x.slots[sequence] = record
}

// Lookup returns the slot record bound to id.
func (x *Index) Lookup(id string) (Record, bool) {
	sequence, ok := x.runIDs[id]
	if !ok {
		return Record{}, false
	}
	record, ok := x.slots[sequence]
	return record, ok
}

// Save writes the index atomically.
func (x *Index) Save() error {
	data, err := codec.Marshal(indexFile{Slots: x.slots, RunIDs: x.runIDs})
	if err != nil {
		return fmt.Errorf("encoding capture index: %w", err)
	}
	if err := writeFileAtomic(x.path, data, 0600); err != nil {
		return fmt.Errorf("saving capture index: %w", err)
	}
	return nil
}
