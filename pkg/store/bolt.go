// Copyright 2023 The Cello Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package store

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

const (
	// DefaultBucket holds the document when no bucket is given.
	DefaultBucket = "toolkit"
	documentKey   = "document"
)

// BoltBackend keeps the whole document as one value of a bolt bucket. Bolt
// commits are atomic, so a failed Save leaves the previous document intact.
type BoltBackend struct {
	db     *bolt.DB
	bucket []byte
}

var _ Backend = (*BoltBackend)(nil)

// OpenBolt opens or creates the bolt database at path.
func OpenBolt(path, bucket string) (*BoltBackend, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt database %s", path)
	}
	b := &BoltBackend{db: db, bucket: []byte(bucket)}
	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "create bucket %s", bucket)
	}
	return b, nil
}

// NewBolt returns a Store over the bolt database at path.
func NewBolt(path, bucket string, resetOnOpen bool) (*Store, error) {
	backend, err := OpenBolt(path, bucket)
	if err != nil {
		return nil, err
	}
	s, err := New(backend, resetOnOpen)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}

func (b *BoltBackend) Name() string {
	return "bolt"
}

func (b *BoltBackend) Load() ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(b.bucket).Get([]byte(documentKey))
		if value == nil {
			return errors.Wrapf(ErrStorageUnavailable, "bucket %s has no document", b.bucket)
		}
		// value is only valid inside the transaction.
		data = append([]byte(nil), value...)
		return nil
	})
	return data, err
}

func (b *BoltBackend) Save(data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(documentKey), data)
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
