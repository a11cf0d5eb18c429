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

// Package storage defines the persistence contract for comment logs. The
// annotation engine treats the backend as an external collaborator: every
// call is a suspension point, and callers apply local state before the
// round-trip so a transient outage never blocks the user.
package storage

import (
	"context"

	"github.com/margin-team/margin/pkg/comment"
)

// Storage persists comment logs per document.
type Storage interface {
	// LoadComments returns the comment log of the given document in the
	// order it was appended.
	LoadComments(ctx context.Context, docID string) ([]*comment.Comment, error)

	// SaveComment appends or updates one comment in the given document's log.
	SaveComment(ctx context.Context, docID string, c *comment.Comment) error

	// DeleteComment removes exactly one comment from the given document's log.
	DeleteComment(ctx context.Context, docID string, id string) error

	// Purge removes the whole comment log of the given document; the
	// cleanup hook for unsharing or deleting a document.
	Purge(ctx context.Context, docID string) error

	// Close closes the storage.
	Close() error
}
