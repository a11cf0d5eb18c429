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

// Package markup maintains author-attributed track-changes marks on spans
// of the shared document.
package markup

import (
	"time"

	"github.com/margin-team/margin/internal/log"
	"github.com/margin-team/margin/pkg/document"
)

// Mark keys for track-changes attribution.
const (
	KindKey     = "margin/track-kind"
	UserIDKey   = "margin/track-user"
	UserNameKey = "margin/track-name"
	TimeKey     = "margin/track-time"
)

// Kind is the variant of a track-changes mark.
type Kind int

const (
	// Insertion marks text added while tracking was enabled.
	Insertion Kind = iota

	// Deletion marks text struck while tracking was enabled. The text stays
	// in the document until the change is accepted.
	Deletion
)

// String returns the attribute value stored for this kind.
func (k Kind) String() string {
	if k == Deletion {
		return "deletion"
	}
	return "insertion"
}

// User identifies the author a mark is attributed to.
type User struct {
	ID   string
	Name string
}

// Manager applies and reviews track-changes marks for one editing session.
//
// Tracking starts enabled. While disabled no marks are created, and marks
// adjacent to the caret are prevented from extending over newly typed text.
// Failures of the underlying document handle are reported through the
// logger and surfaced as no-ops, never thrown into the host's event loop.
type Manager struct {
	engine  document.Engine
	user    User
	enabled bool
	now     func() time.Time
}

// NewManager creates a Manager attributing marks to the given user.
func NewManager(engine document.Engine, user User) *Manager {
	return &Manager{
		engine:  engine,
		user:    user,
		enabled: true,
		now:     time.Now,
	}
}

// SetUser updates the author future marks are attributed to. Existing marks
// keep their original attribution.
func (m *Manager) SetUser(user User) {
	m.user = user
}

// Enabled returns whether mutations are currently being tracked.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Enable resumes attributing mutations to the current user.
func (m *Manager) Enable() {
	m.enabled = true
}

// Disable stops tracking. Beyond suppressing new marks, it clears any mark
// that would extend over future typing at the current caret, so text typed
// immediately after disabling carries no inherited attribution.
func (m *Manager) Disable() {
	m.enabled = false

	if m.engine == nil {
		log.Logger.Warn("track changes: no document handle, caret marks not cleared")
		return
	}
	if err := m.engine.ClearCaretMarks(markKeys()...); err != nil {
		log.Logger.Warnf("track changes: clear caret marks: %v", err)
	}
}

// Toggle flips the tracking flag.
func (m *Manager) Toggle() {
	if m.enabled {
		m.Disable()
	} else {
		m.Enable()
	}
}

// HandleEvent watches document events and attributes local insertions while
// tracking is enabled. The facade subscribes it to the document engine.
func (m *Manager) HandleEvent(event document.Event) {
	if event.Type != document.ContentChanged || !event.Edit.Local {
		return
	}
	if event.Edit.InsertedLen == 0 {
		return
	}
	m.MarkSpan(document.Span{
		From: event.Edit.Pos,
		To:   event.Edit.Pos + event.Edit.InsertedLen,
	}, Insertion)
}

// MarkSpan attributes the given span to the current user with the given
// kind. While tracking is disabled it is a no-op.
func (m *Manager) MarkSpan(span document.Span, kind Kind) {
	if !m.enabled {
		return
	}
	if m.engine == nil {
		log.Logger.Warn("track changes: no document handle, span not marked")
		return
	}

	mark := document.Mark{
		KindKey:     kind.String(),
		UserIDKey:   m.user.ID,
		UserNameKey: m.user.Name,
		TimeKey:     m.now().UTC().Format(time.RFC3339),
	}
	if err := m.engine.ApplyMark(span, mark); err != nil {
		log.Logger.Warnf("track changes: mark span [%d, %d): %v", span.From, span.To, err)
	}
}

// AcceptAll makes every pending change permanent: all tracking marks are
// removed while the underlying text stays untouched. Calling it with zero
// marks present is a no-op, and calling it twice is equivalent to calling
// it once.
func (m *Manager) AcceptAll() {
	if m.engine == nil {
		log.Logger.Warn("track changes: no document handle, nothing accepted")
		return
	}
	if err := m.engine.RemoveMarkEverywhere(markKeys()...); err != nil {
		log.Logger.Warnf("track changes: accept all: %v", err)
	}
}

// PendingCount returns the number of marked spans awaiting review. The host
// disables its accept control when this reaches zero.
func (m *Manager) PendingCount() int {
	if m.engine == nil {
		return 0
	}
	spans, err := m.engine.MarkedSpans(KindKey)
	if err != nil {
		log.Logger.Warnf("track changes: pending count: %v", err)
		return 0
	}
	return len(spans)
}

// Legend returns the distinct users represented among live marks, in
// first-seen document order, for presentation as a legend.
func (m *Manager) Legend() []User {
	if m.engine == nil {
		return nil
	}
	spans, err := m.engine.MarkedSpans(KindKey)
	if err != nil {
		log.Logger.Warnf("track changes: legend: %v", err)
		return nil
	}

	seen := make(map[User]bool)
	var users []User
	for _, ms := range spans {
		user := User{ID: ms.Mark[UserIDKey], Name: ms.Mark[UserNameKey]}
		if seen[user] {
			continue
		}
		seen[user] = true
		users = append(users, user)
	}
	return users
}

func markKeys() []string {
	return []string{KindKey, UserIDKey, UserNameKey, TimeKey}
}
