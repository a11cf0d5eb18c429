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

// Package thread derives the reply tree from the flat comment log and keeps
// the session-local fold state that decides what is rendered.
package thread

import (
	"github.com/margin-team/margin/pkg/comment"
)

// Node is one reply in a thread with its nesting depth. The root sits at
// depth 0; a direct reply at depth 1.
type Node struct {
	Comment  *comment.Comment
	ParentID string
	Depth    int
}

// Thread is a derived view: a root comment plus every comment whose ThreadID
// chain resolves to it, in depth-first creation order.
type Thread struct {
	Root             *comment.Comment
	Replies          []Node
	TotalDescendants int
}

// HasReplies returns whether this thread shows a fold control at all.
func (t Thread) HasReplies() bool {
	return t.TotalDescendants > 0
}

// Build derives threads from the flat comment list. Roots appear in the
// order the list provides (store insertion order); descendants appear
// depth-first, each level in creation order. Replies whose chain does not
// resolve to a live root are skipped. No maximum depth is enforced.
func Build(comments []*comment.Comment) []Thread {
	childrenOf := make(map[string][]*comment.Comment)
	for _, c := range comments {
		if !c.IsRoot() {
			childrenOf[c.ThreadID] = append(childrenOf[c.ThreadID], c)
		}
	}

	var threads []Thread
	for _, c := range comments {
		if !c.IsRoot() {
			continue
		}
		t := Thread{Root: c}
		collect(&t, childrenOf, c.ID, 1)
		t.TotalDescendants = len(t.Replies)
		threads = append(threads, t)
	}
	return threads
}

func collect(t *Thread, childrenOf map[string][]*comment.Comment, parentID string, depth int) {
	for _, child := range childrenOf[parentID] {
		t.Replies = append(t.Replies, Node{
			Comment:  child,
			ParentID: parentID,
			Depth:    depth,
		})
		collect(t, childrenOf, child.ID, depth+1)
	}
}
