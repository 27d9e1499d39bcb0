/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package checkpoint

import (
	"context"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucket = []byte("snapshots")

// Store persists snapshots in a bbolt database, keyed by ID.
type Store struct {
	Logger *zap.Logger

	filename string
	db       *bbolt.DB
}

// NewStore makes a store for the given database file.  Call Open
// before use.
func NewStore(filename string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Logger: logger, filename: filename}
}

func (s *Store) Open() error {
	opts := &bbolt.Options{
		Timeout: time.Second,
	}
	db, err := bbolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes a snapshot, assigning an ID if it doesn't have one.
func (s *Store) Put(ctx context.Context, snap *Snapshot) error {
	bs, err := Encode(snap)
	if err != nil {
		return err
	}
	s.Logger.Debug("put snapshot",
		zap.String("id", snap.ID),
		zap.Int("counter", snap.Counter),
		zap.Int("bytes", len(bs)))
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(snap.ID), bs)
	})
}

// Get reads a snapshot by ID.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	var bs []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(id))
		if v != nil {
			bs = make([]byte, len(v))
			copy(bs, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if bs == nil {
		return nil, &NotFound{ID: id}
	}
	return Decode(bs)
}

// List returns the IDs of every stored snapshot.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for id, _ := c.First(); id != nil; id, _ = c.Next() {
			ids = append(ids, string(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes a snapshot.  Removing an absent ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(id))
	})
}
