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

// Package memdoc implements document.Engine with an in-process buffer.
//
// It performs genuine position remapping: every splice transforms the
// offsets of tracked ranges and marked spans, so anchors and marks keep
// pointing at the text they were created over. It backs tests and
// single-writer embeddings; CRDT-backed hosts provide their own Engine
// with the same remapping contract.
package memdoc

import (
	"context"
	"fmt"

	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/errors"
)

// trackedRange is a live range handle remapped on every splice.
type trackedRange struct {
	span  document.Span
	valid bool
}

// Span returns the current offsets of this range.
func (r *trackedRange) Span() document.Span {
	return r.span
}

// Valid returns false once the tracked text has been removed entirely.
func (r *trackedRange) Valid() bool {
	return r.valid
}

// markSpan is one marked stretch of text. stickyEnd controls whether text
// inserted exactly at To joins the mark, which is how attribution bleeds
// into adjacent typing until the caret marks are cleared.
type markSpan struct {
	span      document.Span
	mark      document.Mark
	stickyEnd bool
}

// Document is an in-process shared-document handle.
type Document struct {
	text      []rune
	selection document.Span
	connected bool

	ranges []*trackedRange
	marks  []*markSpan

	subs      map[int]func(document.Event)
	nextSubID int
}

// New creates a Document with the given initial content.
func New(content string) *Document {
	return &Document{
		text: []rune(content),
		subs: make(map[int]func(document.Event)),
	}
}

// Connect attaches this handle. For an in-process document there is no
// transport, so it only flips the connected flag.
func (d *Document) Connect(_ context.Context) error {
	d.connected = true
	return nil
}

// Disconnect detaches this handle.
func (d *Document) Disconnect(_ context.Context) error {
	d.connected = false
	return nil
}

// Content returns the current document text.
func (d *Document) Content() string {
	return string(d.text)
}

// Len returns the current document length in runes.
func (d *Document) Len() int {
	return len(d.text)
}

// ReadRange returns the literal text the given span currently covers.
func (d *Document) ReadRange(span document.Span) (string, error) {
	if err := d.checkSpan(span); err != nil {
		return "", err
	}
	return string(d.text[span.From:span.To]), nil
}

// TrackRange registers a live range over the given span.
func (d *Document) TrackRange(span document.Span) (document.Range, error) {
	if err := d.checkSpan(span); err != nil {
		return nil, err
	}

	r := &trackedRange{span: span, valid: true}
	d.ranges = append(d.ranges, r)
	return r, nil
}

// ApplyMark attaches the given attributes to the given span. The mark's end
// is sticky: text typed at the end of the span joins it until the caret
// marks are cleared.
func (d *Document) ApplyMark(span document.Span, mark document.Mark) error {
	if err := d.checkSpan(span); err != nil {
		return err
	}
	if span.Collapsed() {
		return errors.InvalidArgument("cannot mark a collapsed span")
	}

	d.marks = append(d.marks, &markSpan{
		span:      span,
		mark:      mark.DeepCopy(),
		stickyEnd: true,
	})
	return nil
}

// RemoveMark detaches the attributes stored under the given keys from the
// given span. Partially covered marks are split so only the covered part
// loses the keys.
func (d *Document) RemoveMark(span document.Span, keys ...string) error {
	if err := d.checkSpan(span); err != nil {
		return err
	}

	var kept []*markSpan
	for _, ms := range d.marks {
		if !ms.carriesAny(keys) || !overlaps(ms.span, span) {
			kept = append(kept, ms)
			continue
		}

		// Left remainder keeps the keys.
		if ms.span.From < span.From {
			kept = append(kept, &markSpan{
				span:      document.Span{From: ms.span.From, To: span.From},
				mark:      ms.mark.DeepCopy(),
				stickyEnd: false,
			})
		}
		// Right remainder keeps the keys and inherits stickiness.
		if ms.span.To > span.To {
			kept = append(kept, &markSpan{
				span:      document.Span{From: span.To, To: ms.span.To},
				mark:      ms.mark.DeepCopy(),
				stickyEnd: ms.stickyEnd,
			})
		}
		// Covered part loses the keys.
		covered := document.Span{
			From: max(ms.span.From, span.From),
			To:   min(ms.span.To, span.To),
		}
		remaining := ms.mark.DeepCopy()
		for _, key := range keys {
			delete(remaining, key)
		}
		if len(remaining) > 0 {
			kept = append(kept, &markSpan{
				span:      covered,
				mark:      remaining,
				stickyEnd: ms.stickyEnd && covered.To == ms.span.To,
			})
		}
	}
	d.marks = kept
	return nil
}

// RemoveMarkEverywhere detaches the attributes stored under the given keys
// from every span in the document.
func (d *Document) RemoveMarkEverywhere(keys ...string) error {
	var kept []*markSpan
	for _, ms := range d.marks {
		for _, key := range keys {
			delete(ms.mark, key)
		}
		if len(ms.mark) > 0 {
			kept = append(kept, ms)
		}
	}
	d.marks = kept
	return nil
}

// ClearCaretMarks prevents marks carrying the given keys from extending over
// text typed at the current caret position.
func (d *Document) ClearCaretMarks(keys ...string) error {
	caret := d.selection.From
	for _, ms := range d.marks {
		if ms.span.To == caret && ms.carriesAny(keys) {
			ms.stickyEnd = false
		}
	}
	return nil
}

// MarkedSpans returns every span currently carrying the given key.
func (d *Document) MarkedSpans(key string) ([]document.MarkedSpan, error) {
	var spans []document.MarkedSpan
	for _, ms := range d.marks {
		if _, ok := ms.mark[key]; ok {
			spans = append(spans, document.MarkedSpan{
				Span: ms.span,
				Mark: ms.mark.DeepCopy(),
			})
		}
	}
	return spans, nil
}

// SetSelection moves the local selection to the given span.
func (d *Document) SetSelection(span document.Span) error {
	if err := d.checkSpan(span); err != nil {
		return err
	}

	d.selection = span
	d.publish(document.Event{Type: document.SelectionUpdated, Selection: span})
	return nil
}

// Selection returns the current local selection.
func (d *Document) Selection() document.Span {
	return d.selection
}

// Subscribe registers a handler for document events and returns a function
// that unsubscribes it.
func (d *Document) Subscribe(handler func(document.Event)) func() {
	id := d.nextSubID
	d.nextSubID++
	d.subs[id] = handler
	return func() {
		delete(d.subs, id)
	}
}

// Insert splices the given text in at pos as a local edit and returns the
// span it now covers.
func (d *Document) Insert(pos int, text string) (document.Span, error) {
	if pos < 0 || pos > len(d.text) {
		return document.Span{}, errors.InvalidArgument(
			fmt.Sprintf("insert position %d out of range [0, %d]", pos, len(d.text)),
		)
	}
	return d.splice(pos, 0, text, true), nil
}

// Delete removes the text the given span covers as a local edit.
func (d *Document) Delete(span document.Span) error {
	if err := d.checkSpan(span); err != nil {
		return err
	}
	d.splice(span.From, span.Len(), "", true)
	return nil
}

// RemoteInsert splices text in as if a remote collaborator produced it.
func (d *Document) RemoteInsert(pos int, text string) (document.Span, error) {
	if pos < 0 || pos > len(d.text) {
		return document.Span{}, errors.InvalidArgument(
			fmt.Sprintf("insert position %d out of range [0, %d]", pos, len(d.text)),
		)
	}
	return d.splice(pos, 0, text, false), nil
}

// RemoteDelete removes a span as if a remote collaborator produced it.
func (d *Document) RemoteDelete(span document.Span) error {
	if err := d.checkSpan(span); err != nil {
		return err
	}
	d.splice(span.From, span.Len(), "", false)
	return nil
}

// splice is the single mutation path: at pos, removedLen runes go out and
// text comes in. All tracked ranges, marks, and the selection are remapped.
func (d *Document) splice(pos, removedLen int, text string, local bool) document.Span {
	inserted := []rune(text)

	next := make([]rune, 0, len(d.text)-removedLen+len(inserted))
	next = append(next, d.text[:pos]...)
	next = append(next, inserted...)
	next = append(next, d.text[pos+removedLen:]...)
	d.text = next

	if removedLen > 0 {
		d.remapDelete(pos, removedLen)
	}
	if len(inserted) > 0 {
		d.remapInsert(pos, len(inserted))
	}

	d.selection = document.Span{
		From: mapOffset(d.selection.From, pos, removedLen, len(inserted)),
		To:   mapOffset(d.selection.To, pos, removedLen, len(inserted)),
	}

	d.publish(document.Event{
		Type: document.ContentChanged,
		Edit: document.Edit{
			Pos:         pos,
			RemovedLen:  removedLen,
			InsertedLen: len(inserted),
			Local:       local,
		},
	})

	return document.Span{From: pos, To: pos + len(inserted)}
}

func (d *Document) remapInsert(pos, n int) {
	for _, r := range d.ranges {
		if !r.valid {
			continue
		}
		switch {
		case pos <= r.span.From:
			r.span.From += n
			r.span.To += n
		case pos < r.span.To:
			r.span.To += n
		}
	}

	for _, ms := range d.marks {
		switch {
		case pos <= ms.span.From:
			ms.span.From += n
			ms.span.To += n
		case pos < ms.span.To:
			ms.span.To += n
		case pos == ms.span.To && ms.stickyEnd:
			ms.span.To += n
		}
	}
}

func (d *Document) remapDelete(pos, n int) {
	for _, r := range d.ranges {
		if !r.valid {
			continue
		}
		r.span.From = collapseOffset(r.span.From, pos, n)
		r.span.To = collapseOffset(r.span.To, pos, n)
		if r.span.Collapsed() {
			r.valid = false
		}
	}

	var kept []*markSpan
	for _, ms := range d.marks {
		ms.span.From = collapseOffset(ms.span.From, pos, n)
		ms.span.To = collapseOffset(ms.span.To, pos, n)
		if !ms.span.Collapsed() {
			kept = append(kept, ms)
		}
	}
	d.marks = kept
}

func (d *Document) publish(event document.Event) {
	for _, handler := range d.subs {
		handler(event)
	}
}

func (d *Document) checkSpan(span document.Span) error {
	if span.From < 0 || span.To > len(d.text) || span.From > span.To {
		return errors.InvalidArgument(
			fmt.Sprintf("span [%d, %d) out of range [0, %d)", span.From, span.To, len(d.text)),
		)
	}
	return nil
}

// mapOffset transforms one offset across a splice at pos.
func mapOffset(x, pos, removedLen, insertedLen int) int {
	x = collapseOffset(x, pos, removedLen)
	if x >= pos {
		x += insertedLen
	}
	return x
}

// collapseOffset transforms one offset across a deletion of n runes at pos.
func collapseOffset(x, pos, n int) int {
	if x <= pos {
		return x
	}
	if x >= pos+n {
		return x - n
	}
	return pos
}

func overlaps(a, b document.Span) bool {
	return a.From < b.To && b.From < a.To
}

func (ms *markSpan) carriesAny(keys []string) bool {
	for _, key := range keys {
		if _, ok := ms.mark[key]; ok {
			return true
		}
	}
	return false
}
