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
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcengine/toolkit/pkg/store/mock"
)

func tempPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), DefaultPath)
}

func TestOpenMissingDocument(t *testing.T) {
	_, err := Open(tempPath(t), false)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestOpenReset(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"stale": true}`), 0644))

	s, err := Open(path, true)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestOpenExistingDocument(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"b": 1, "a": [1, "x"], "b": 2}`), 0644))

	s, err := Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, s.Keys())

	v, ok := s.Fetch("b")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestOpenMalformedDocument(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":    ``,
		"array":    `[1, 2]`,
		"broken":   `{"a": `,
		"trailing": `{} {}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := tempPath(t)
			require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
			_, err := Open(path, false)
			assert.ErrorIs(t, err, ErrSerialization)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	path := tempPath(t)
	values := map[string]interface{}{
		"string": "hello",
		"number": 4.5,
		"bool":   true,
		"null":   nil,
		"list":   []interface{}{int64(1), "two", []interface{}{2.5}},
		"bigint": int64(9007199254740993),
		"maxint": int64(math.MaxInt64),
		"huge":   uint64(math.MaxUint64),
		"neg":    int64(-9007199254740993),
		"nested": map[string]interface{}{"inner": map[string]interface{}{"k": "v"}},
	}

	s, err := Open(path, true)
	require.NoError(t, err)
	for k, v := range values {
		require.NoError(t, s.Add(k, v))
	}

	reopened, err := Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, s.Keys(), reopened.Keys())
	for k, want := range values {
		got, ok := reopened.Fetch(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
}

func TestAddFetchUser(t *testing.T) {
	s, err := Open(tempPath(t), true)
	require.NoError(t, err)

	require.NoError(t, s.Add("user", map[string]interface{}{"name": "Ada", "age": 30}))

	v, ok := s.Fetch("user")
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"name": "Ada", "age": int64(30)}, v)

	v, ok = s.Fetch("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestFetchKeepsIntegerPrecision(t *testing.T) {
	path := tempPath(t)
	s, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, s.Add("n", int64(9007199254740993)))
	require.NoError(t, s.Add("nested", map[string]interface{}{"ids": []int64{9007199254740993, 1}}))

	reopened, err := Open(path, false)
	require.NoError(t, err)

	v, ok := reopened.Fetch("n")
	assert.True(t, ok)
	assert.Equal(t, int64(9007199254740993), v)

	v, ok = reopened.Fetch("nested")
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"ids": []interface{}{int64(9007199254740993), int64(1)}}, v)

	var n int64
	require.NoError(t, reopened.FetchInto("n", &n))
	assert.Equal(t, int64(9007199254740993), n)
}

func TestFetchInto(t *testing.T) {
	type user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	s, err := Open(tempPath(t), true)
	require.NoError(t, err)
	require.NoError(t, s.Add("user", user{Name: "Ada", Age: 30}))

	var u user
	require.NoError(t, s.FetchInto("user", &u))
	assert.Equal(t, user{Name: "Ada", Age: 30}, u)

	var n int
	assert.ErrorIs(t, s.FetchInto("user", &n), ErrSerialization)
	assert.ErrorIs(t, s.FetchInto("missing", &u), ErrKeyNotFound)
}

func TestAddOverwriteKeepsPosition(t *testing.T) {
	path := tempPath(t)
	s, err := Open(path, true)
	require.NoError(t, err)

	require.NoError(t, s.Add("a", 1))
	require.NoError(t, s.Add("b", 2))
	require.NoError(t, s.Add("a", 3))
	assert.Equal(t, []string{"a", "b"}, s.Keys())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 3,\n    \"b\": 2\n}\n", string(data))
}

func TestAddUnserializable(t *testing.T) {
	path := tempPath(t)
	s, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, s.Add("kept", "yes"))

	for name, value := range map[string]interface{}{
		"channel": make(chan int),
		"func":    func() {},
		"nan":     math.NaN(),
	} {
		err := s.Add(name, value)
		assert.ErrorIs(t, err, ErrSerialization, name)
	}
	assert.Equal(t, []string{"kept"}, s.Keys())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kept": "yes"}`, string(data))
}

func TestRemove(t *testing.T) {
	path := tempPath(t)
	s, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, s.Add("a", 1))
	require.NoError(t, s.Add("b", 2))

	require.NoError(t, s.Remove("a"))
	assert.Equal(t, []string{"b"}, s.Keys())
	_, ok := s.Fetch("a")
	assert.False(t, ok)

	err = s.Remove("a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, 1, s.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b": 2}`, string(data))
}

func TestResetTwice(t *testing.T) {
	path := tempPath(t)
	s, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, s.Add("a", 1))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Reset())
		assert.Equal(t, 0, s.Len())
		assert.Empty(t, s.Keys())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Empty(t, doc)
	}
}

func TestKeysReturnsCopy(t *testing.T) {
	s, err := Open(tempPath(t), true)
	require.NoError(t, err)
	require.NoError(t, s.Add("a", 1))

	keys := s.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Keys())
}

func TestFailedSaveRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackend(ctrl)
	backend.EXPECT().Name().Return("mock").AnyTimes()
	backend.EXPECT().Load().Return([]byte(`{"a": 1}`), nil)

	s, err := New(backend, false)
	require.NoError(t, err)

	diskFull := errors.New("no space left on device")
	backend.EXPECT().Save(gomock.Any()).Return(diskFull).Times(4)

	assert.ErrorIs(t, s.Add("b", 2), diskFull)
	assert.ErrorIs(t, s.Add("a", 5), diskFull)
	assert.ErrorIs(t, s.Remove("a"), diskFull)
	assert.ErrorIs(t, s.Reset(), diskFull)
	assert.Equal(t, []string{"a"}, s.Keys())
	v, _ := s.Fetch("a")
	assert.Equal(t, int64(1), v)
}

func TestResetOnOpenSaveFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackend(ctrl)
	backend.EXPECT().Name().Return("mock").AnyTimes()
	backend.EXPECT().Save([]byte("{}")).Return(errors.New("read-only"))

	_, err := New(backend, true)
	assert.Error(t, err)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "db.json"), true)
	require.NoError(t, err)
	require.NoError(t, s.Add("a", 1))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "db.json", entries[0].Name())
}

func TestBoltBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolkit.db")

	_, err := NewBolt(path, "", false)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	s, err := NewBolt(path, "", true)
	require.NoError(t, err)
	require.NoError(t, s.Add("user", map[string]interface{}{"name": "Ada"}))
	require.NoError(t, s.Add("count", 2))
	require.NoError(t, s.Close())

	reopened, err := NewBolt(path, "", false)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []string{"user", "count"}, reopened.Keys())
	v, ok := reopened.Fetch("user")
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"name": "Ada"}, v)

	require.NoError(t, reopened.Reset())
	assert.Equal(t, 0, reopened.Len())
}
