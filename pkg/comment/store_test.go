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

package comment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/margin-team/margin/pkg/comment"
	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/errors"
)

func TestStore(t *testing.T) {
	t.Run("root then reply scenario test", func(t *testing.T) {
		store := comment.NewStore()

		root := comment.New("TestUser", "This needs clarification", document.Span{From: 10, To: 24}, "important text")
		assert.NoError(t, store.Add(root))
		assert.Equal(t, 1, store.Len())

		listed := store.List(comment.ListFilter{})
		assert.Len(t, listed, 1)
		assert.Equal(t, &document.Span{From: 10, To: 24}, listed[0].Position)
		assert.Equal(t, "", listed[0].ThreadID)
		assert.Equal(t, "important text", listed[0].SelectedText)

		reply := comment.NewReply("TestUser", "Agreed", root.ID)
		assert.NoError(t, store.Add(reply))
		assert.Equal(t, 2, store.Len())

		listed = store.List(comment.ListFilter{})
		assert.Nil(t, listed[1].Position)
		assert.Equal(t, root.ID, listed[1].ThreadID)
	})

	t.Run("reply to missing thread test", func(t *testing.T) {
		store := comment.NewStore()
		reply := comment.NewReply("a", "orphan", "no-such-id")
		err := store.Add(reply)
		assert.Error(t, err)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("duplicate ID test", func(t *testing.T) {
		store := comment.NewStore()
		c := comment.New("a", "x", document.Span{From: 0, To: 1}, "t")
		assert.NoError(t, store.Add(c))
		err := store.Add(c)
		assert.Error(t, err)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("resolve roots only test", func(t *testing.T) {
		store := comment.NewStore()
		root := comment.New("a", "x", document.Span{From: 0, To: 1}, "t")
		assert.NoError(t, store.Add(root))
		reply := comment.NewReply("b", "y", root.ID)
		assert.NoError(t, store.Add(reply))

		assert.NoError(t, store.Resolve(root.ID))
		got, err := store.Get(root.ID)
		assert.NoError(t, err)
		assert.True(t, got.Resolved)

		err = store.Resolve(reply.ID)
		assert.Error(t, err)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))

		err = store.Resolve("no-such-id")
		assert.Error(t, err)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))
	})

	t.Run("delete removes exactly one record test", func(t *testing.T) {
		store := comment.NewStore()
		root := comment.New("a", "root", document.Span{From: 2, To: 9}, "quoted")
		sibling1 := comment.NewReply("b", "first", root.ID)
		sibling2 := comment.NewReply("c", "second", root.ID)
		assert.NoError(t, store.Add(root))
		assert.NoError(t, store.Add(sibling1))
		assert.NoError(t, store.Add(sibling2))

		before := make(map[string]comment.Comment)
		for _, c := range store.List(comment.ListFilter{}) {
			before[c.ID] = *c.DeepCopy()
		}

		deleted, err := store.Delete(sibling1.ID)
		assert.NoError(t, err)
		assert.Equal(t, sibling1.ID, deleted.ID)
		assert.Equal(t, 2, store.Len())

		// The survivors are untouched, field by field.
		for _, c := range store.List(comment.ListFilter{}) {
			assert.Equal(t, before[c.ID], *c.DeepCopy())
		}
	})

	t.Run("delete root keeps replies in the log test", func(t *testing.T) {
		store := comment.NewStore()
		root := comment.New("a", "root", document.Span{From: 0, To: 4}, "text")
		assert.NoError(t, store.Add(root))
		reply := comment.NewReply("b", "kept", root.ID)
		assert.NoError(t, store.Add(reply))

		_, err := store.Delete(root.ID)
		assert.NoError(t, err)
		assert.Equal(t, 1, store.Len())

		kept, err := store.Get(reply.ID)
		assert.NoError(t, err)
		assert.Equal(t, "kept", kept.Content)
		assert.Equal(t, root.ID, kept.ThreadID)
	})

	t.Run("exclude resolved filter test", func(t *testing.T) {
		store := comment.NewStore()
		open := comment.New("a", "open", document.Span{From: 0, To: 1}, "t")
		done := comment.New("a", "done", document.Span{From: 2, To: 3}, "u")
		assert.NoError(t, store.Add(open))
		assert.NoError(t, store.Add(done))
		doneReply := comment.NewReply("b", "hidden with root", done.ID)
		assert.NoError(t, store.Add(doneReply))
		assert.NoError(t, store.Resolve(done.ID))

		visible := store.List(comment.ListFilter{ExcludeResolved: true})
		assert.Len(t, visible, 1)
		assert.Equal(t, open.ID, visible[0].ID)

		all := store.List(comment.ListFilter{})
		assert.Len(t, all, 3)
	})

	t.Run("insertion order is preserved test", func(t *testing.T) {
		store := comment.NewStore()
		first := comment.New("a", "1", document.Span{From: 0, To: 1}, "t")
		second := comment.New("a", "2", document.Span{From: 1, To: 2}, "u")
		third := comment.New("a", "3", document.Span{From: 2, To: 3}, "v")
		assert.NoError(t, store.Add(first))
		assert.NoError(t, store.Add(second))
		assert.NoError(t, store.Add(third))

		listed := store.List(comment.ListFilter{})
		assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{
			listed[0].ID, listed[1].ID, listed[2].ID,
		})
	})
}
