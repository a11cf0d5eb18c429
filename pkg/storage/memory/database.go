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

// Package memory implements the storage interface using an in-memory
// database. It backs tests and hosts that keep comment logs process-local.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/margin-team/margin/pkg/comment"
	"github.com/margin-team/margin/pkg/errors"
)

// commentRecord wraps a comment with the fields the indexer needs.
type commentRecord struct {
	DocID     string
	CommentID string
	Seq       uint64
	Comment   *comment.Comment
}

// DB is an in-memory comment storage.
type DB struct {
	db      *memdb.MemDB
	nextSeq uint64
}

// New returns a new in-memory comment storage.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// LoadComments returns the comment log of the given document in append order.
func (d *DB) LoadComments(_ context.Context, docID string) ([]*comment.Comment, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblComments, "doc_id", docID)
	if err != nil {
		return nil, fmt.Errorf("load comments of %s: %w", docID, err)
	}

	var records []*commentRecord
	for raw := it.Next(); raw != nil; raw = it.Next() {
		records = append(records, raw.(*commentRecord))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	comments := make([]*comment.Comment, 0, len(records))
	for _, record := range records {
		comments = append(comments, record.Comment.DeepCopy())
	}
	return comments, nil
}

// SaveComment appends or updates one comment in the given document's log.
// Updates keep the original append position.
func (d *DB) SaveComment(_ context.Context, docID string, c *comment.Comment) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	seq := d.nextSeq
	raw, err := txn.First(tblComments, "id", docID, c.ID)
	if err != nil {
		return fmt.Errorf("find comment %s: %w", c.ID, err)
	}
	if raw != nil {
		seq = raw.(*commentRecord).Seq
	} else {
		d.nextSeq++
	}

	if err := txn.Insert(tblComments, &commentRecord{
		DocID:     docID,
		CommentID: c.ID,
		Seq:       seq,
		Comment:   c.DeepCopy(),
	}); err != nil {
		return fmt.Errorf("save comment %s: %w", c.ID, err)
	}

	txn.Commit()
	return nil
}

// DeleteComment removes exactly one comment from the given document's log.
func (d *DB) DeleteComment(_ context.Context, docID string, id string) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblComments, "id", docID, id)
	if err != nil {
		return fmt.Errorf("find comment %s: %w", id, err)
	}
	if raw == nil {
		return errors.NotFound(fmt.Sprintf("comment %q not found in %q", id, docID))
	}

	if err := txn.Delete(tblComments, raw); err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}

	txn.Commit()
	return nil
}

// Purge removes the whole comment log of the given document.
func (d *DB) Purge(_ context.Context, docID string) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tblComments, "doc_id", docID); err != nil {
		return fmt.Errorf("purge comments of %s: %w", docID, err)
	}

	txn.Commit()
	return nil
}
