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

package thread

// FoldState is the session-local fold map for one open document. Every
// comment that has replies folds independently; absent entries read as
// folded. The map is never synchronized between collaborators, and one
// FoldState exists per open document so multiple documents never bleed
// state into each other.
type FoldState struct {
	unfolded map[string]bool
}

// NewFoldState creates a FoldState with every thread folded.
func NewFoldState() *FoldState {
	return &FoldState{
		unfolded: make(map[string]bool),
	}
}

// Folded returns whether replies under the given comment are collapsed.
// The default is folded.
func (f *FoldState) Folded(id string) bool {
	return !f.unfolded[id]
}

// Toggle flips the fold state of the given comment. It does not touch the
// fold states of nested sub-threads; each level folds independently.
func (f *FoldState) Toggle(id string) {
	f.unfolded[id] = !f.unfolded[id]
}

// VisibleReplies returns the replies of the given thread that are currently
// rendered: a node at depth d is visible iff every ancestor level from the
// root down to its parent is unfolded. Folding any single ancestor hides
// everything below it regardless of deeper fold states.
func (f *FoldState) VisibleReplies(t Thread) []Node {
	hidden := make(map[string]bool)
	var visible []Node
	for _, node := range t.Replies {
		if hidden[node.ParentID] || f.Folded(node.ParentID) {
			// Everything below a folded or hidden ancestor stays hidden.
			hidden[node.Comment.ID] = true
			continue
		}
		visible = append(visible, node)
	}
	return visible
}
