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

// Package anchor maps comments to live ranges in the shared document.
//
// An anchor snapshots the quoted text once at creation and then delegates
// position tracking to the document engine's native range primitive; raw
// integer offsets never survive past construction, so anchors stay
// meaningful under concurrent edits elsewhere in the document.
package anchor

import (
	"fmt"

	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/errors"
)

// HighlightKey is the mark key carrying the ID of the comment a highlighted
// span belongs to.
const HighlightKey = "margin/comment"

// CodeCollapsedSelection is carried by rejections of empty selections.
const CodeCollapsedSelection = "collapsed-selection"

// Anchor binds one comment to a live range and the frozen snapshot of the
// text that range covered at creation time.
type Anchor struct {
	CommentID    string
	Range        document.Range
	SelectedText string
}

// Span returns the current offsets of the anchored range.
func (a *Anchor) Span() document.Span {
	return a.Range.Span()
}

// Tracker creates and releases anchors over one document engine. One
// Tracker exists per open document.
type Tracker struct {
	engine  document.Engine
	anchors map[string]*Anchor
}

// NewTracker creates a Tracker over the given engine.
func NewTracker(engine document.Engine) *Tracker {
	return &Tracker{
		engine:  engine,
		anchors: make(map[string]*Anchor),
	}
}

// Snapshot reads the literal text the given selection covers, rejecting
// collapsed selections. This is the quoted text frozen into a comment at
// creation time.
func (t *Tracker) Snapshot(sel document.Span) (string, error) {
	if sel.Collapsed() {
		return "", errors.InvalidArgument(
			"cannot quote a collapsed selection",
		).WithCode(CodeCollapsedSelection)
	}
	return t.engine.ReadRange(sel)
}

// Track registers a live range over the given selection for the given
// comment, snapshots the selected text, and decorates the span with the
// comment highlight. A collapsed selection is rejected; comment creation is
// gated on a non-empty selection.
func (t *Tracker) Track(commentID string, sel document.Span) (*Anchor, error) {
	if sel.Collapsed() {
		return nil, errors.InvalidArgument(
			"cannot anchor a comment to a collapsed selection",
		).WithCode(CodeCollapsedSelection)
	}

	selectedText, err := t.engine.ReadRange(sel)
	if err != nil {
		return nil, err
	}

	rng, err := t.engine.TrackRange(sel)
	if err != nil {
		return nil, err
	}

	if err := t.engine.ApplyMark(sel, document.Mark{HighlightKey: commentID}); err != nil {
		return nil, err
	}

	a := &Anchor{
		CommentID:    commentID,
		Range:        rng,
		SelectedText: selectedText,
	}
	t.anchors[commentID] = a
	return a, nil
}

// Get returns the anchor of the given comment.
func (t *Tracker) Get(commentID string) (*Anchor, error) {
	a, ok := t.anchors[commentID]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("no anchor for comment %q", commentID))
	}
	return a, nil
}

// Release drops the anchor of the given comment and removes its highlight
// from the document. Deletion of a comment does not release its highlight
// implicitly; the facade calls Release explicitly because the decoration
// lives in the document, not in the comment store.
func (t *Tracker) Release(commentID string) error {
	a, ok := t.anchors[commentID]
	if !ok {
		return errors.NotFound(fmt.Sprintf("no anchor for comment %q", commentID))
	}
	delete(t.anchors, commentID)

	if !a.Range.Valid() {
		// The anchored text is already gone along with its marks.
		return nil
	}
	return t.engine.RemoveMark(a.Range.Span(), HighlightKey)
}
