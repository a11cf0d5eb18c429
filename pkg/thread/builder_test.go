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
	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/thread"
)

func newRoot(content string) *comment.Comment {
	return comment.New("author", content, document.Span{From: 0, To: 4}, "text")
}

func TestBuild(t *testing.T) {
	t.Run("flat log to tree test", func(t *testing.T) {
		root := newRoot("root")
		replyA := comment.NewReply("a", "first", root.ID)
		replyB := comment.NewReply("b", "second", root.ID)
		nested := comment.NewReply("c", "nested under first", replyA.ID)

		threads := thread.Build([]*comment.Comment{root, replyA, replyB, nested})
		assert.Len(t, threads, 1)
		assert.Equal(t, root.ID, threads[0].Root.ID)
		assert.Equal(t, 3, threads[0].TotalDescendants)
		assert.True(t, threads[0].HasReplies())

		// Depth-first with each level in creation order.
		contents := make([]string, 0, 3)
		depths := make([]int, 0, 3)
		for _, node := range threads[0].Replies {
			contents = append(contents, node.Comment.Content)
			depths = append(depths, node.Depth)
		}
		assert.Equal(t, []string{"first", "nested under first", "second"}, contents)
		assert.Equal(t, []int{1, 2, 1}, depths)
	})

	t.Run("deep linear chain test", func(t *testing.T) {
		root := newRoot("level 0")
		comments := []*comment.Comment{root}
		parentID := root.ID
		for depth := 1; depth <= 7; depth++ {
			reply := comment.NewReply("author", fmt.Sprintf("level %d", depth), parentID)
			comments = append(comments, reply)
			parentID = reply.ID
		}

		threads := thread.Build(comments)
		assert.Len(t, threads, 1)
		assert.Equal(t, 7, threads[0].TotalDescendants)
		for i, node := range threads[0].Replies {
			assert.Equal(t, i+1, node.Depth)
		}
		// Root plus seven reply levels: eight levels in total.
		assert.Equal(t, 7, threads[0].Replies[len(threads[0].Replies)-1].Depth)
	})

	t.Run("roots keep list order test", func(t *testing.T) {
		first := newRoot("first root")
		second := newRoot("second root")
		threads := thread.Build([]*comment.Comment{first, second})
		assert.Len(t, threads, 2)
		assert.Equal(t, first.ID, threads[0].Root.ID)
		assert.Equal(t, second.ID, threads[1].Root.ID)
		assert.False(t, threads[0].HasReplies())
	})

	t.Run("orphaned replies are skipped test", func(t *testing.T) {
		root := newRoot("root")
		orphan := comment.NewReply("a", "parent is gone", "deleted-root")
		threads := thread.Build([]*comment.Comment{root, orphan})
		assert.Len(t, threads, 1)
		assert.Equal(t, 0, threads[0].TotalDescendants)
	})
}
