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

// Package store is a small key-value store persisted as one JSON document.
//
// Every mutation rewrites the whole document, so the store suits small
// documents written now and then. Reach for an embedded database when either
// grows. One writer per document is assumed; nothing locks the file against
// other processes.
package store

import (
	"errors"

	"github.com/volcengine/toolkit/pkg/utils/logger"
)

var log = logger.GetLogger().WithFields(logger.Fields{"subsys": "store"})

// DefaultPath is the document location used when none is configured.
const DefaultPath = "database.json"

var (
	// ErrStorageUnavailable the backing document does not exist.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSerialization a value or the document cannot be represented as JSON.
	ErrSerialization = errors.New("serialization error")
	// ErrKeyNotFound key not found in store.
	ErrKeyNotFound = errors.New("key not found")
)

// Interface offers the operations of the key-value store.
type Interface interface {
	// Add inserts or overwrites the value for key and rewrites the document.
	Add(key string, value interface{}) error
	// Fetch returns the value for key, false when it is absent. Objects come
	// back as map[string]interface{}, lists as []interface{}, integral
	// numbers as int64 (uint64 above its range) and other numbers as float64.
	Fetch(key string) (interface{}, bool)
	// FetchInto decodes the value for key into out.
	FetchInto(key string, out interface{}) error
	// Remove deletes key and rewrites the document.
	Remove(key string) error
	// Reset empties the store and rewrites the document.
	Reset() error
	// Keys returns all keys in insertion order.
	Keys() []string
	// Len returns the number of keys.
	Len() int
	// Close releases the backend.
	Close() error
}

// Backend reads and writes the whole document.
type Backend interface {
	// Load returns the document, ErrStorageUnavailable when there is none yet.
	Load() ([]byte, error)
	// Save replaces the document.
	Save(data []byte) error
	// Name identifies the backend kind in logs and metrics.
	Name() string
	Close() error
}
