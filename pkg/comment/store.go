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

package comment

import (
	"fmt"

	"github.com/margin-team/margin/pkg/errors"
)

// ListFilter narrows what List returns.
type ListFilter struct {
	// ExcludeResolved drops resolved roots and every comment in their
	// threads, which backs hide-resolved views.
	ExcludeResolved bool
}

// Store is the authoritative, append-only log of comments for one document.
//
// The store runs on the host's event loop like the rest of the engine, so it
// takes no locks; it preserves insertion order, which is the display order
// for thread roots. It has no rendering or persistence concerns.
type Store struct {
	comments []*Comment
	index    map[string]*Comment
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]*Comment),
	}
}

// Add validates and appends the given comment.
func (s *Store) Add(c *Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := s.index[c.ID]; ok {
		return errors.InvalidArgument(fmt.Sprintf("comment %q already exists", c.ID))
	}
	if !c.IsRoot() {
		if _, ok := s.index[c.ThreadID]; !ok {
			return errors.NotFound(
				fmt.Sprintf("thread %q not found", c.ThreadID),
			).WithCode(CodeReplyWithoutThread)
		}
	}

	s.comments = append(s.comments, c)
	s.index[c.ID] = c
	return nil
}

// Get returns the comment with the given ID.
func (s *Store) Get(id string) (*Comment, error) {
	c, ok := s.index[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("comment %q not found", id))
	}
	return c, nil
}

// Resolve marks the root comment with the given ID resolved. Resolving a
// reply is rejected; replies inherit visibility from their root.
func (s *Store) Resolve(id string) error {
	c, err := s.Get(id)
	if err != nil {
		return err
	}
	if !c.IsRoot() {
		return errors.InvalidArgument(fmt.Sprintf("comment %q is not a thread root", id))
	}

	c.Resolved = true
	return nil
}

// Delete removes exactly one comment. Deleting a root does not cascade to
// its replies; the log favors explicit, auditable deletion, and the thread
// builder skips replies whose chain no longer resolves to a live root.
func (s *Store) Delete(id string) (*Comment, error) {
	c, ok := s.index[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("comment %q not found", id))
	}

	delete(s.index, id)
	for i, stored := range s.comments {
		if stored.ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			break
		}
	}
	return c, nil
}

// List returns comments in insertion order, narrowed by the given filter.
func (s *Store) List(filter ListFilter) []*Comment {
	if !filter.ExcludeResolved {
		return append([]*Comment(nil), s.comments...)
	}

	// A reply is hidden when the root its chain resolves to is resolved.
	var visible []*Comment
	for _, c := range s.comments {
		root := s.rootOf(c)
		if root != nil && root.Resolved {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}

// Len returns the number of stored comments.
func (s *Store) Len() int {
	return len(s.comments)
}

// Replace swaps the whole log, used when loading persisted comments.
func (s *Store) Replace(comments []*Comment) {
	s.comments = append([]*Comment(nil), comments...)
	s.index = make(map[string]*Comment, len(comments))
	for _, c := range comments {
		s.index[c.ID] = c
	}
}

// rootOf follows the ThreadID chain to the root, or nil if the chain is
// broken by a deleted ancestor.
func (s *Store) rootOf(c *Comment) *Comment {
	for !c.IsRoot() {
		parent, ok := s.index[c.ThreadID]
		if !ok {
			return nil
		}
		c = parent
	}
	return c
}
