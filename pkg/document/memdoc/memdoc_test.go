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

package memdoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/margin-team/margin/pkg/document"
	"github.com/margin-team/margin/pkg/document/memdoc"
)

func TestEdit(t *testing.T) {
	t.Run("insert and delete test", func(t *testing.T) {
		doc := memdoc.New("Hello World")
		span, err := doc.Insert(5, ",")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 5, To: 6}, span)
		assert.Equal(t, "Hello, World", doc.Content())

		assert.NoError(t, doc.Delete(document.Span{From: 5, To: 6}))
		assert.Equal(t, "Hello World", doc.Content())
	})

	t.Run("read range test", func(t *testing.T) {
		doc := memdoc.New("some important text here")
		text, err := doc.ReadRange(document.Span{From: 5, To: 19})
		assert.NoError(t, err)
		assert.Equal(t, "important text", text)

		_, err = doc.ReadRange(document.Span{From: 5, To: 99})
		assert.Error(t, err)
	})
}

func TestTrackRange(t *testing.T) {
	t.Run("insert upstream shifts the range test", func(t *testing.T) {
		doc := memdoc.New("abc target xyz")
		rng, err := doc.TrackRange(document.Span{From: 4, To: 10})
		assert.NoError(t, err)

		_, err = doc.RemoteInsert(0, "0123")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 8, To: 14}, rng.Span())

		text, err := doc.ReadRange(rng.Span())
		assert.NoError(t, err)
		assert.Equal(t, "target", text)
	})

	t.Run("insert inside extends the range test", func(t *testing.T) {
		doc := memdoc.New("abc target xyz")
		rng, err := doc.TrackRange(document.Span{From: 4, To: 10})
		assert.NoError(t, err)

		_, err = doc.RemoteInsert(7, "--")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 4, To: 12}, rng.Span())
	})

	t.Run("insert downstream leaves the range alone test", func(t *testing.T) {
		doc := memdoc.New("abc target xyz")
		rng, err := doc.TrackRange(document.Span{From: 4, To: 10})
		assert.NoError(t, err)

		_, err = doc.RemoteInsert(12, "!!!")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 4, To: 10}, rng.Span())
	})

	t.Run("delete upstream shifts the range test", func(t *testing.T) {
		doc := memdoc.New("abc target xyz")
		rng, err := doc.TrackRange(document.Span{From: 4, To: 10})
		assert.NoError(t, err)

		assert.NoError(t, doc.RemoteDelete(document.Span{From: 0, To: 2}))
		assert.Equal(t, document.Span{From: 2, To: 8}, rng.Span())
		assert.True(t, rng.Valid())
	})

	t.Run("delete overlapping shrinks the range test", func(t *testing.T) {
		doc := memdoc.New("abc target xyz")
		rng, err := doc.TrackRange(document.Span{From: 4, To: 10})
		assert.NoError(t, err)

		assert.NoError(t, doc.RemoteDelete(document.Span{From: 2, To: 7}))
		assert.Equal(t, document.Span{From: 2, To: 5}, rng.Span())
		assert.True(t, rng.Valid())
	})

	t.Run("delete covering invalidates the range test", func(t *testing.T) {
		doc := memdoc.New("abc target xyz")
		rng, err := doc.TrackRange(document.Span{From: 4, To: 10})
		assert.NoError(t, err)

		assert.NoError(t, doc.RemoteDelete(document.Span{From: 3, To: 11}))
		assert.False(t, rng.Valid())
	})
}

func TestMarks(t *testing.T) {
	t.Run("apply and enumerate test", func(t *testing.T) {
		doc := memdoc.New("hello world")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 0, To: 5}, document.Mark{"k": "v"}))

		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Len(t, spans, 1)
		assert.Equal(t, document.Span{From: 0, To: 5}, spans[0].Span)
		assert.Equal(t, "v", spans[0].Mark["k"])

		spans, err = doc.MarkedSpans("other")
		assert.NoError(t, err)
		assert.Empty(t, spans)
	})

	t.Run("collapsed span is rejected test", func(t *testing.T) {
		doc := memdoc.New("hello")
		err := doc.ApplyMark(document.Span{From: 2, To: 2}, document.Mark{"k": "v"})
		assert.Error(t, err)
	})

	t.Run("marks are remapped on edit test", func(t *testing.T) {
		doc := memdoc.New("hello world")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 6, To: 11}, document.Mark{"k": "v"}))

		_, err := doc.RemoteInsert(0, ">> ")
		assert.NoError(t, err)
		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 9, To: 14}, spans[0].Span)
	})

	t.Run("mark removed with its text test", func(t *testing.T) {
		doc := memdoc.New("hello world")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 6, To: 11}, document.Mark{"k": "v"}))
		assert.NoError(t, doc.RemoteDelete(document.Span{From: 5, To: 11}))

		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Empty(t, spans)
	})

	t.Run("typing at a mark end extends it test", func(t *testing.T) {
		doc := memdoc.New("hello")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 0, To: 5}, document.Mark{"k": "v"}))

		_, err := doc.Insert(5, "!!")
		assert.NoError(t, err)
		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 0, To: 7}, spans[0].Span)
	})

	t.Run("clear caret marks stops the bleed test", func(t *testing.T) {
		doc := memdoc.New("hello")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 0, To: 5}, document.Mark{"k": "v"}))
		assert.NoError(t, doc.SetSelection(document.Span{From: 5, To: 5}))
		assert.NoError(t, doc.ClearCaretMarks("k"))

		_, err := doc.Insert(5, "!!")
		assert.NoError(t, err)
		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 0, To: 5}, spans[0].Span)
	})

	t.Run("remove mark splits partial coverage test", func(t *testing.T) {
		doc := memdoc.New("hello world")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 0, To: 11}, document.Mark{"k": "v"}))
		assert.NoError(t, doc.RemoveMark(document.Span{From: 3, To: 8}, "k"))

		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Len(t, spans, 2)
		assert.Equal(t, document.Span{From: 0, To: 3}, spans[0].Span)
		assert.Equal(t, document.Span{From: 8, To: 11}, spans[1].Span)
	})

	t.Run("remove mark everywhere test", func(t *testing.T) {
		doc := memdoc.New("hello world")
		assert.NoError(t, doc.ApplyMark(document.Span{From: 0, To: 5}, document.Mark{"k": "v"}))
		assert.NoError(t, doc.ApplyMark(document.Span{From: 6, To: 11}, document.Mark{"k": "v", "keep": "x"}))

		assert.NoError(t, doc.RemoveMarkEverywhere("k"))
		spans, err := doc.MarkedSpans("k")
		assert.NoError(t, err)
		assert.Empty(t, spans)

		spans, err = doc.MarkedSpans("keep")
		assert.NoError(t, err)
		assert.Len(t, spans, 1)
	})
}

func TestEvents(t *testing.T) {
	t.Run("content change events test", func(t *testing.T) {
		doc := memdoc.New("abc")
		var events []document.Event
		unsubscribe := doc.Subscribe(func(event document.Event) {
			events = append(events, event)
		})

		_, err := doc.Insert(3, "def")
		assert.NoError(t, err)
		assert.NoError(t, doc.RemoteDelete(document.Span{From: 0, To: 1}))

		assert.Len(t, events, 2)
		assert.Equal(t, document.ContentChanged, events[0].Type)
		assert.Equal(t, document.Edit{Pos: 3, RemovedLen: 0, InsertedLen: 3, Local: true}, events[0].Edit)
		assert.Equal(t, document.Edit{Pos: 0, RemovedLen: 1, InsertedLen: 0, Local: false}, events[1].Edit)

		unsubscribe()
		_, err = doc.Insert(0, "x")
		assert.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("selection events and remap test", func(t *testing.T) {
		doc := memdoc.New("hello world")
		var selections []document.Span
		doc.Subscribe(func(event document.Event) {
			if event.Type == document.SelectionUpdated {
				selections = append(selections, event.Selection)
			}
		})

		assert.NoError(t, doc.SetSelection(document.Span{From: 6, To: 11}))
		assert.Len(t, selections, 1)

		_, err := doc.RemoteInsert(0, ">> ")
		assert.NoError(t, err)
		assert.Equal(t, document.Span{From: 9, To: 14}, doc.Selection())
	})
}
