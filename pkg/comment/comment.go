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

// Package comment provides the comment entity and the append-only store the
// annotation engine derives threads from. Comments form a flat log with a
// ThreadID back-reference; nesting is reconstructed on read, never stored.
package comment

import (
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/margin-team/margin/internal/validation"
	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/errors"
)

// displayWordLimit is the number of words of the quoted selection shown in
// the comment header before truncation.
const displayWordLimit = 7

// Error codes carried by shape validation failures.
const (
	CodeRootWithoutAnchor  = "root-without-anchor"
	CodeReplyWithoutThread = "reply-without-thread"
	CodeReplyWithAnchor    = "reply-with-anchor"
	CodeEmptyContent       = "empty-content"
)

// Comment is one message in a thread.
//
// Root comments carry a Position into the shared document and an empty
// ThreadID; replies carry the ID of the comment they answer and no position
// of their own. SelectedText and DisplayText are a frozen snapshot of the
// text the anchor covered at creation time; the anchored range may drift
// afterwards, but the quote never changes.
type Comment struct {
	ID           string         `json:"id" yaml:"id" validate:"required"`
	Content      string         `json:"content" yaml:"content"`
	Author       string         `json:"author" yaml:"author" validate:"required"`
	Position     *document.Span `json:"position,omitempty" yaml:"position,omitempty"`
	ThreadID     string         `json:"threadId,omitempty" yaml:"threadId,omitempty"`
	Resolved     bool           `json:"resolved" yaml:"resolved"`
	SelectedText string         `json:"selectedText,omitempty" yaml:"selectedText,omitempty"`
	DisplayText  string         `json:"displayText,omitempty" yaml:"displayText,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"createdAt"`
}

// New creates a root comment anchored over the given span. The selected text
// is snapshotted as-is; DisplayText carries the truncated rendering.
func New(author, content string, position document.Span, selectedText string) *Comment {
	return &Comment{
		ID:           xid.New().String(),
		Content:      content,
		Author:       author,
		Position:     &document.Span{From: position.From, To: position.To},
		SelectedText: selectedText,
		DisplayText:  Truncate(selectedText),
		CreatedAt:    time.Now(),
	}
}

// NewReply creates a reply to the comment with the given ID. Replies have no
// independent anchor.
func NewReply(author, content, threadID string) *Comment {
	return &Comment{
		ID:        xid.New().String(),
		Content:   content,
		Author:    author,
		ThreadID:  threadID,
		CreatedAt: time.Now(),
	}
}

// IsRoot returns whether this comment starts a thread.
func (c *Comment) IsRoot() bool {
	return c.ThreadID == ""
}

// Validate checks the shape invariant: roots carry a position, replies do
// not, and both carry the required identity fields.
func (c *Comment) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return errors.InvalidArgument(err.Error())
	}

	if c.IsRoot() && c.Position == nil {
		return errors.InvalidArgument(
			"root comment must carry a position",
		).WithCode(CodeRootWithoutAnchor)
	}
	if !c.IsRoot() && c.Position != nil {
		return errors.InvalidArgument(
			"reply must not carry a position",
		).WithCode(CodeReplyWithAnchor)
	}

	return nil
}

// DeepCopy copies itself deeply.
func (c *Comment) DeepCopy() *Comment {
	copied := *c
	if c.Position != nil {
		position := *c.Position
		copied.Position = &position
	}
	return &copied
}

// Truncate renders a quoted selection for display: strings of more than
// displayWordLimit words keep the first displayWordLimit words followed by
// "..."; shorter strings are returned unchanged.
func Truncate(selectedText string) string {
	words := strings.Fields(selectedText)
	if len(words) <= displayWordLimit {
		return selectedText
	}
	return strings.Join(words[:displayWordLimit], " ") + "..."
}
