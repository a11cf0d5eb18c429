/*
 * Copyright 2026 The Margin Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package document defines the contract between the annotation engine and
// the externally replicated shared document. The engine never talks to the
// replication layer directly; it consumes this narrow interface, and the
// host wires in whatever CRDT-backed implementation it runs.
package document

import (
	"context"
)

// Span is a half-open range [From, To) in the document's coordinate space.
// Offsets are measured in runes.
type Span struct {
	From int
	To   int
}

// Collapsed returns whether this span covers no text.
func (s Span) Collapsed() bool {
	return s.From >= s.To
}

// Len returns the number of runes this span covers.
func (s Span) Len() int {
	if s.Collapsed() {
		return 0
	}
	return s.To - s.From
}

// Mark is a set of attributes attached to a span of text, such as a comment
// highlight or a track-changes attribution.
type Mark map[string]string

// DeepCopy copies itself deeply.
func (m Mark) DeepCopy() Mark {
	copied := make(Mark, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return copied
}

// MarkedSpan pairs a span with the mark currently applied to it.
type MarkedSpan struct {
	Span Span
	Mark Mark
}

// Range is a live handle to a span of the shared document. The implementation
// keeps the underlying offsets valid as the document mutates; callers hold
// the handle and read Span on demand instead of caching integer offsets.
type Range interface {
	// Span returns the current offsets of this range.
	Span() Span

	// Valid returns false once the tracked text has been removed entirely.
	Valid() bool
}

// EventType represents the type of document event delivered to subscribers.
type EventType string

const (
	// SelectionUpdated is fired when the local selection changes.
	SelectionUpdated EventType = "selection-updated"

	// ContentChanged is fired after a structural change to the document text.
	ContentChanged EventType = "content-changed"
)

// Event is a document event delivered to subscribers.
type Event struct {
	Type EventType

	// Selection carries the new selection for SelectionUpdated events.
	Selection Span

	// Edit carries the splice for ContentChanged events.
	Edit Edit
}

// Edit describes one splice applied to the document text: at Pos,
// RemovedLen runes were removed and InsertedLen runes were inserted.
type Edit struct {
	Pos         int
	RemovedLen  int
	InsertedLen int

	// Local is true when the splice originated from this client.
	Local bool
}

// Engine is the shared-document handle the annotation engine operates on.
//
// Connect and Disconnect drive the replication transport; everything else
// reads or decorates the locally observed document state. Implementations
// are expected to remap tracked ranges and marked spans on every splice so
// that anchors survive edits elsewhere in the document.
type Engine interface {
	// Connect attaches this handle to the replication transport.
	Connect(ctx context.Context) error

	// Disconnect detaches this handle from the replication transport.
	Disconnect(ctx context.Context) error

	// ReadRange returns the literal text the given span currently covers.
	ReadRange(span Span) (string, error)

	// TrackRange registers a live range over the given span. The returned
	// handle is remapped as the document mutates.
	TrackRange(span Span) (Range, error)

	// ApplyMark attaches the given attributes to the given span.
	ApplyMark(span Span, mark Mark) error

	// RemoveMark detaches the attributes stored under the given keys from
	// the given span.
	RemoveMark(span Span, keys ...string) error

	// RemoveMarkEverywhere detaches the attributes stored under the given
	// keys from every span in the document.
	RemoveMarkEverywhere(keys ...string) error

	// ClearCaretMarks prevents marks carrying the given keys from extending
	// over text typed at the current caret position.
	ClearCaretMarks(keys ...string) error

	// MarkedSpans returns every span currently carrying the given key.
	MarkedSpans(key string) ([]MarkedSpan, error)

	// SetSelection moves the local selection to the given span.
	SetSelection(span Span) error

	// Selection returns the current local selection.
	Selection() Span

	// Subscribe registers a handler for document events and returns a
	// function that unsubscribes it.
	Subscribe(handler func(Event)) func()
}
