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

package thread_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/margin-team/margin/pkg/comment"
	"github.com/margin-team/margin/pkg/thread"
)

// chainThread builds a root with a linear chain of depth replies.
func chainThread(depth int) ([]*comment.Comment, []string) {
	root := newRoot("level 0")
	comments := []*comment.Comment{root}
	ids := []string{root.ID}
	parentID := root.ID
	for d := 1; d <= depth; d++ {
		reply := comment.NewReply("author", fmt.Sprintf("level %d", d), parentID)
		comments = append(comments, reply)
		ids = append(ids, reply.ID)
		parentID = reply.ID
	}
	return comments, ids
}

func TestFoldState(t *testing.T) {
	t.Run("default folded test", func(t *testing.T) {
		folds := thread.NewFoldState()
		assert.True(t, folds.Folded("any"))
		folds.Toggle("any")
		assert.False(t, folds.Folded("any"))
		folds.Toggle("any")
		assert.True(t, folds.Folded("any"))
	})

	t.Run("folded root hides all replies test", func(t *testing.T) {
		comments, _ := chainThread(3)
		threads := thread.Build(comments)
		folds := thread.NewFoldState()

		assert.Empty(t, folds.VisibleReplies(threads[0]))
	})

	t.Run("eight level chain unfolds one level at a time test", func(t *testing.T) {
		comments, ids := chainThread(7)
		threads := thread.Build(comments)
		folds := thread.NewFoldState()

		// Unfolding the chain down to level k shows exactly k replies.
		for k := 1; k <= 7; k++ {
			folds.Toggle(ids[k-1])
			visible := folds.VisibleReplies(threads[0])
			assert.Len(t, visible, k)
			assert.Equal(t, k, visible[len(visible)-1].Depth)
		}
	})

	t.Run("folding one ancestor hides everything below test", func(t *testing.T) {
		comments, ids := chainThread(4)
		threads := thread.Build(comments)
		folds := thread.NewFoldState()
		for _, id := range ids {
			folds.Toggle(id)
		}
		assert.Len(t, folds.VisibleReplies(threads[0]), 4)

		// Refold level 2; levels 3 and 4 disappear even though their own
		// fold states are unfolded.
		folds.Toggle(ids[2])
		visible := folds.VisibleReplies(threads[0])
		assert.Len(t, visible, 3)
		assert.Equal(t, 3, visible[len(visible)-1].Depth)

		// Unfolding level 2 again brings the deeper levels back.
		folds.Toggle(ids[2])
		assert.Len(t, folds.VisibleReplies(threads[0]), 4)
	})

	t.Run("sibling branches fold independently test", func(t *testing.T) {
		root := newRoot("root")
		left := comment.NewReply("a", "left", root.ID)
		right := comment.NewReply("b", "right", root.ID)
		leftChild := comment.NewReply("c", "left child", left.ID)
		rightChild := comment.NewReply("d", "right child", right.ID)

		threads := thread.Build([]*comment.Comment{root, left, right, leftChild, rightChild})
		folds := thread.NewFoldState()
		folds.Toggle(root.ID)
		folds.Toggle(left.ID)

		visible := folds.VisibleReplies(threads[0])
		contents := make([]string, 0, 3)
		for _, node := range visible {
			contents = append(contents, node.Comment.Content)
		}
		assert.Equal(t, []string{"left", "left child", "right"}, contents)
	})
}
