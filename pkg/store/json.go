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
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/volcengine/toolkit/pkg/metrics"
	"github.com/volcengine/toolkit/pkg/utils/logger"
)

const emptyDocument = "{}"

// Store keeps the document in memory as encoded values in insertion order.
// Memory and the backend agree after every call that returns without error; a
// failed write leaves both as they were.
type Store struct {
	backend Backend

	lock   sync.RWMutex
	keys   []string
	values map[string]json.RawMessage
}

var _ Interface = (*Store)(nil)

// Open returns a Store over the JSON file at path.
func Open(path string, resetOnOpen bool) (*Store, error) {
	return New(NewFileBackend(path), resetOnOpen)
}

// New returns a Store over backend. With resetOnOpen the document is replaced
// by an empty one first. The document is then loaded; a missing document is
// ErrStorageUnavailable.
func New(backend Backend, resetOnOpen bool) (*Store, error) {
	s := &Store{
		backend: backend,
		values:  map[string]json.RawMessage{},
	}
	if resetOnOpen {
		if err := s.save([]byte(emptyDocument)); err != nil {
			return nil, err
		}
	}

	err := s.load()
	metrics.StoreOperationInc("load", err)
	if err != nil {
		return nil, err
	}
	log.DebugWithFields(logger.Fields{"backend": backend.Name(), "keys": len(s.keys)}, "Store loaded")
	return s, nil
}

func (s *Store) load() error {
	data, err := s.backend.Load()
	if err != nil {
		return err
	}
	keys, values, err := decodeDocument(data)
	if err != nil {
		return err
	}
	s.keys, s.values = keys, values
	return nil
}

func (s *Store) Add(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		metrics.StoreOperationInc("add", err)
		return errors.Wrapf(ErrSerialization, "value of %q: %v", key, err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	keys := s.keys
	if _, exist := s.values[key]; !exist {
		keys = append(keys[:len(keys):len(keys)], key)
	}
	values := make(map[string]json.RawMessage, len(s.values)+1)
	for k, v := range s.values {
		values[k] = v
	}
	values[key] = raw

	err = s.commit(keys, values)
	metrics.StoreOperationInc("add", err)
	return err
}

func (s *Store) Fetch(key string) (interface{}, bool) {
	s.lock.RLock()
	raw, ok := s.values[key]
	s.lock.RUnlock()
	if !ok {
		return nil, false
	}

	value, err := decodeValue(raw)
	if err != nil {
		// raw was produced by json.Marshal or validated on load.
		log.Errorf("Decode stored value of %q failed, %v", key, err)
		return nil, false
	}
	return value, true
}

func (s *Store) FetchInto(key string, out interface{}) error {
	s.lock.RLock()
	raw, ok := s.values[key]
	s.lock.RUnlock()
	if !ok {
		return errors.Wrapf(ErrKeyNotFound, "fetch %q", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(ErrSerialization, "decode %q: %v", key, err)
	}
	return nil
}

// Remove returns ErrKeyNotFound for an absent key and leaves the document alone.
func (s *Store) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exist := s.values[key]; !exist {
		err := errors.Wrapf(ErrKeyNotFound, "remove %q", key)
		metrics.StoreOperationInc("remove", err)
		return err
	}

	keys := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		if k != key {
			keys = append(keys, k)
		}
	}
	values := make(map[string]json.RawMessage, len(s.values))
	for k, v := range s.values {
		if k != key {
			values[k] = v
		}
	}

	err := s.commit(keys, values)
	metrics.StoreOperationInc("remove", err)
	return err
}

func (s *Store) Reset() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := s.commit(nil, map[string]json.RawMessage{})
	metrics.StoreOperationInc("reset", err)
	return err
}

func (s *Store) Keys() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]string(nil), s.keys...)
}

func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.keys)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// commit writes the document for keys and values, then adopts them in memory.
// Caller holds the write lock.
func (s *Store) commit(keys []string, values map[string]json.RawMessage) error {
	data, err := encodeDocument(keys, values)
	if err != nil {
		return err
	}
	if err = s.save(data); err != nil {
		return err
	}
	s.keys, s.values = keys, values
	return nil
}

func (s *Store) save(data []byte) error {
	start := time.Now()
	defer func() {
		metrics.StoreWriteLatency.WithLabelValues(s.backend.Name()).Observe(metrics.MsSince(start))
	}()
	if err := s.backend.Save(data); err != nil {
		log.Errorf("Save document to %s backend failed, %v", s.backend.Name(), err)
		return err
	}
	return nil
}

// encodeDocument writes one JSON object with keys in the given order.
func encodeDocument(keys []string, values map[string]json.RawMessage) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, errors.Wrapf(ErrSerialization, "key %q: %v", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(values[key])
	}
	buf.WriteByte('}')

	out := &bytes.Buffer{}
	if err := json.Indent(out, buf.Bytes(), "", "    "); err != nil {
		return nil, errors.Wrapf(ErrSerialization, "document: %v", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeDocument reads a JSON object, keeping the order of its keys. A key
// repeated in the document keeps its first position and its last value.
func decodeDocument(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, errors.Wrapf(ErrSerialization, "document: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.Wrap(ErrSerialization, "document is not a JSON object")
	}

	var keys []string
	values := map[string]json.RawMessage{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, nil, errors.Wrapf(ErrSerialization, "document: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.Wrapf(ErrSerialization, "document key %v", tok)
		}
		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return nil, nil, errors.Wrapf(ErrSerialization, "value of %q: %v", key, err)
		}
		if _, exist := values[key]; !exist {
			keys = append(keys, key)
		}
		values[key] = compact(raw)
	}
	if _, err = dec.Token(); err != nil {
		return nil, nil, errors.Wrapf(ErrSerialization, "document: %v", err)
	}
	if _, err = dec.Token(); err != io.EOF {
		return nil, nil, errors.Wrap(ErrSerialization, "trailing data after document")
	}
	return keys, values, nil
}

// decodeValue decodes raw without losing integer precision: integral numbers
// become int64, or uint64 above its range, other numbers float64.
func decodeValue(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return normalizeNumbers(value), nil
}

func normalizeNumbers(v interface{}) interface{} {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return u
		}
		f, _ := v.Float64()
		return f
	case []interface{}:
		for i := range v {
			v[i] = normalizeNumbers(v[i])
		}
	case map[string]interface{}:
		for k := range v {
			v[k] = normalizeNumbers(v[k])
		}
	}
	return v
}

func compact(raw json.RawMessage) json.RawMessage {
	buf := &bytes.Buffer{}
	if err := json.Compact(buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
