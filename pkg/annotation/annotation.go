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

// Package annotation composes the annotation engine: comment threads
// anchored to the shared document, fold state over the derived tree, and
// track-changes marks, behind the operations the host UI calls.
//
// Every operation runs on the host's event loop; the engine takes no locks
// and applies mutations in call order. Persistence round-trips are the only
// suspension points, and they follow a local-first policy: the local state
// change stands even when the remote call fails, and the failure is
// reported rather than fatal.
package annotation

import (
	"context"
	"fmt"

	"github.com/margin-team/margin/internal/log"
	"github.com/margin-team/margin/internal/validation"
	"github.com/margin-team/margin/pkg/anchor"
	"github.com/margin-team/margin/pkg/comment"
	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/errors"
	"github.com/margin-team/margin/pkg/markup"
	"github.com/margin-team/margin/pkg/session"
	"github.com/margin-team/margin/pkg/storage"
	"github.com/margin-team/margin/pkg/thread"
)

// CodeRemoteOperation is carried by errors of persistence round-trips whose
// local state change has already been applied.
const CodeRemoteOperation = "remote-operation"

// Engine is the annotation engine for one open document.
type Engine struct {
	conf    *Config
	doc     document.Engine
	storage storage.Storage
	session *session.Session

	store   *comment.Store
	anchors *anchor.Tracker
	folds   *thread.FoldState
	marks   *markup.Manager

	unsubscribe func()
}

// New creates an Engine over the given document handle. Storage may be nil
// for hosts that keep comment logs elsewhere; the engine then skips
// persistence round-trips entirely.
func New(conf *Config, doc document.Engine, store storage.Storage, sess *session.Session) *Engine {
	if conf == nil {
		conf = NewConfig()
	}
	conf.ensureDefaults()

	marks := markup.NewManager(doc, markup.User{ID: sess.Key()})
	if !conf.TrackingEnabled {
		marks.Disable()
	}

	return &Engine{
		conf:    conf,
		doc:     doc,
		storage: store,
		session: sess,
		store:   comment.NewStore(),
		anchors: anchor.NewTracker(doc),
		folds:   thread.NewFoldState(),
		marks:   marks,
	}
}

// Open connects the document handle, loads the persisted comment log, and
// re-anchors every rooted comment.
func (e *Engine) Open(ctx context.Context) error {
	if err := e.doc.Connect(ctx); err != nil {
		e.session.HandleStatus(session.Disconnected)
		return fmt.Errorf("open document: %w", err)
	}
	e.session.HandleStatus(session.Connected)
	e.unsubscribe = e.doc.Subscribe(e.marks.HandleEvent)

	if e.storage == nil {
		return nil
	}

	comments, err := e.storage.LoadComments(ctx, e.conf.DocumentID)
	if err != nil {
		return errors.Unavailable(
			fmt.Sprintf("load comments of %s: %v", e.conf.DocumentID, err),
		).WithCode(CodeRemoteOperation)
	}
	e.store.Replace(comments)

	for _, c := range comments {
		if !c.IsRoot() || c.Position == nil {
			continue
		}
		if _, err := e.anchors.Track(c.ID, *c.Position); err != nil {
			// A stored span can drift out of range while we were away;
			// the comment stays listed without a live highlight.
			log.Logger.Warnf("re-anchor comment %s: %v", c.ID, err)
		}
	}
	return nil
}

// Close detaches from the document and reports the disconnect.
func (e *Engine) Close(ctx context.Context) error {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	e.session.HandleStatus(session.Disconnected)

	if err := e.doc.Disconnect(ctx); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	return nil
}

// SetLocalName establishes the local display name for presence and for the
// attribution of future writes.
func (e *Engine) SetLocalName(name string) error {
	if err := e.session.SetLocalName(name); err != nil {
		return err
	}
	e.marks.SetUser(markup.User{ID: e.session.Key(), Name: name})
	return nil
}

// AddComment creates a root comment over the current selection. The
// selection must be non-collapsed and the content non-empty; both are
// rejected synchronously without mutating any store.
func (e *Engine) AddComment(ctx context.Context, content string) (*comment.Comment, error) {
	author, err := e.author()
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateValue(content, "notblank"); err != nil {
		return nil, errors.InvalidArgument(
			"comment content must not be empty",
		).WithCode(comment.CodeEmptyContent)
	}

	sel := e.doc.Selection()
	selectedText, err := e.anchors.Snapshot(sel)
	if err != nil {
		return nil, err
	}

	c := comment.New(author, content, sel, selectedText)
	if _, err := e.anchors.Track(c.ID, sel); err != nil {
		return nil, err
	}
	if err := e.store.Add(c); err != nil {
		if releaseErr := e.anchors.Release(c.ID); releaseErr != nil {
			log.Logger.Warnf("release anchor of rejected comment %s: %v", c.ID, releaseErr)
		}
		return nil, err
	}

	return c, e.persistSave(ctx, c)
}

// Reply appends a reply to the thread of the comment with the given ID.
func (e *Engine) Reply(ctx context.Context, parentID, content string) (*comment.Comment, error) {
	author, err := e.author()
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateValue(content, "notblank"); err != nil {
		return nil, errors.InvalidArgument(
			"comment content must not be empty",
		).WithCode(comment.CodeEmptyContent)
	}

	c := comment.NewReply(author, content, parentID)
	if err := e.store.Add(c); err != nil {
		return nil, err
	}

	return c, e.persistSave(ctx, c)
}

// ResolveComment marks the root comment with the given ID resolved.
func (e *Engine) ResolveComment(ctx context.Context, id string) error {
	if err := e.store.Resolve(id); err != nil {
		return err
	}

	c, err := e.store.Get(id)
	if err != nil {
		return err
	}
	return e.persistSave(ctx, c)
}

// DeleteComment removes exactly one comment. Deleting a root releases its
// highlight but never cascades to its replies; the host decides whether to
// delete descendants, one call per record. The local removal stands even if
// the remote delete fails.
func (e *Engine) DeleteComment(ctx context.Context, id string) error {
	c, err := e.store.Delete(id)
	if err != nil {
		return err
	}

	if c.IsRoot() {
		if err := e.anchors.Release(c.ID); err != nil {
			log.Logger.Warnf("release highlight of comment %s: %v", c.ID, err)
		}
	}

	if e.storage == nil {
		return nil
	}
	if err := e.storage.DeleteComment(ctx, e.conf.DocumentID, id); err != nil {
		log.Logger.Warnf("remote delete of comment %s failed, local removal stands: %v", id, err)
		return errors.Unavailable(
			fmt.Sprintf("delete comment %s: %v", id, err),
		).WithCode(CodeRemoteOperation)
	}
	return nil
}

// Threads derives the current thread views in store insertion order.
func (e *Engine) Threads(filter comment.ListFilter) []thread.Thread {
	return thread.Build(e.store.List(filter))
}

// ToggleFold flips the fold state of the given comment's replies.
func (e *Engine) ToggleFold(id string) {
	e.folds.Toggle(id)
}

// Folded returns whether replies under the given comment are collapsed.
func (e *Engine) Folded(id string) bool {
	return e.folds.Folded(id)
}

// VisibleReplies returns the replies of the given thread that the current
// fold state renders.
func (e *Engine) VisibleReplies(t thread.Thread) []thread.Node {
	return e.folds.VisibleReplies(t)
}

// Anchor returns the live anchor of the given rooted comment.
func (e *Engine) Anchor(id string) (*anchor.Anchor, error) {
	return e.anchors.Get(id)
}

// ToggleTracking flips track changes for the local user.
func (e *Engine) ToggleTracking() {
	e.marks.Toggle()
}

// TrackingEnabled returns whether local mutations are being tracked.
func (e *Engine) TrackingEnabled() bool {
	return e.marks.Enabled()
}

// AcceptAllChanges makes every pending change permanent. Idempotent.
func (e *Engine) AcceptAllChanges() {
	e.marks.AcceptAll()
}

// PendingChangeCount returns the number of marks awaiting review.
func (e *Engine) PendingChangeCount() int {
	return e.marks.PendingCount()
}

// ChangeLegend returns the distinct authors represented among live marks.
func (e *Engine) ChangeLegend() []markup.User {
	return e.marks.Legend()
}

// MarkDeletion strikes the given span as a tracked deletion on behalf of
// the host's delete interception.
func (e *Engine) MarkDeletion(span document.Span) {
	e.marks.MarkSpan(span, markup.Deletion)
}

// PresenceList returns the ordered presence entries, self included.
func (e *Engine) PresenceList() []session.User {
	return e.session.Presence()
}

// SessionStatus returns the last observed connection state.
func (e *Engine) SessionStatus() session.Status {
	return e.session.Status()
}

// author returns the attribution for a write. Writes are rejected until the
// local display name has been established.
func (e *Engine) author() (string, error) {
	local, ok := e.session.LocalUser()
	if !ok {
		return "", errors.FailedPrecond("no display name established for this session")
	}
	return local.Name, nil
}

// persistSave writes one comment through to storage. The local append has
// already been applied; a remote failure is reported, not fatal.
func (e *Engine) persistSave(ctx context.Context, c *comment.Comment) error {
	if e.storage == nil {
		return nil
	}
	if err := e.storage.SaveComment(ctx, e.conf.DocumentID, c); err != nil {
		log.Logger.Warnf("remote save of comment %s failed, local append stands: %v", c.ID, err)
		return errors.Unavailable(
			fmt.Sprintf("save comment %s: %v", c.ID, err),
		).WithCode(CodeRemoteOperation)
	}
	return nil
}
