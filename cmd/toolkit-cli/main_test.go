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

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/volcengine/toolkit/pkg/config"
	"github.com/volcengine/toolkit/pkg/decorator"
	"github.com/volcengine/toolkit/pkg/store"
)

func TestMain(m *testing.M) {
	decorator.InitProcess()
	os.Exit(m.Run())
}

type cliEnv struct {
	t    *testing.T
	dir  string
	path string
}

func newCliEnv(t *testing.T) *cliEnv {
	dir := t.TempDir()
	path := filepath.Join(dir, store.DefaultPath)
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvStoreBackend, config.BackendFile)
	t.Setenv(config.EnvStorePath, path)
	return &cliEnv{t: t, dir: dir, path: path}
}

func (e *cliEnv) run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	err := app.Run(append([]string{"toolkit-cli", "--no-color"}, args...))
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	out, err := e.run(args...)
	require.NoError(e.t, err, strings.Join(args, " "))
	return out
}

func TestStoreCommands(t *testing.T) {
	e := newCliEnv(t)

	_, err := e.run("store", "add", "user", "x")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	e.mustRun("store", "reset")
	e.mustRun("store", "add", "user", `{"name": "Ada", "age": 30}`)
	e.mustRun("store", "add", "note", "plain text")

	out := e.mustRun("store", "get", "user")
	assert.JSONEq(t, `{"name": "Ada", "age": 30}`, out)
	out = e.mustRun("store", "get", "note")
	assert.Equal(t, "\"plain text\"\n", out)

	out = e.mustRun("store", "list")
	assert.Contains(t, out, "user")
	assert.Contains(t, out, "object")
	assert.Contains(t, out, "string")

	out = e.mustRun("store", "list", "--json")
	assert.JSONEq(t, `[{"key": "user", "value": {"name": "Ada", "age": 30}}, {"key": "note", "value": "plain text"}]`, out)

	e.mustRun("store", "rm", "note")
	_, err = e.run("store", "rm", "note")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = e.run("store", "get", "note")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	_, err = e.run("store", "add", "only-key")
	assert.Error(t, err)

	e.mustRun("store", "reset")
	data, err := os.ReadFile(e.path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestStoreBolt(t *testing.T) {
	e := newCliEnv(t)
	t.Setenv(config.EnvStoreBackend, config.BackendBolt)
	t.Setenv(config.EnvStorePath, filepath.Join(e.dir, "toolkit.db"))

	e.mustRun("store", "reset")
	e.mustRun("store", "add", "n", "3")
	assert.Equal(t, "3\n", e.mustRun("store", "get", "n"))
}

func TestStoreBigInteger(t *testing.T) {
	e := newCliEnv(t)
	e.mustRun("store", "reset")
	e.mustRun("store", "add", "id", "9007199254740993")
	assert.Equal(t, "9007199254740993\n", e.mustRun("store", "get", "id"))

	out := e.mustRun("store", "list")
	assert.Contains(t, out, "number")
	assert.Contains(t, out, "9007199254740993")
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "number", typeName(int64(1)))
	assert.Equal(t, "number", typeName(uint64(1)))
	assert.Equal(t, "number", typeName(1.5))
	assert.Equal(t, "object", typeName(map[string]interface{}{}))
	assert.Equal(t, "null", typeName(nil))
}

func TestRunTimer(t *testing.T) {
	e := newCliEnv(t)
	out := e.mustRun("run", "--timer", "--", "true")
	assert.Contains(t, out, "Function true ran in ")
	assert.Contains(t, out, " seconds.")
}

func TestRunRepeat(t *testing.T) {
	e := newCliEnv(t)
	out := e.mustRun("run", "--repeat", "3", "--", "echo", "x")
	assert.Equal(t, "x\nx\nx\n", out)
}

func TestRunAverage(t *testing.T) {
	e := newCliEnv(t)
	out := e.mustRun("run", "--average", "2", "--", "true")
	assert.Contains(t, out, "Function true ran 2 times in ")
	assert.Contains(t, out, "Average")
}

func TestRunFailure(t *testing.T) {
	e := newCliEnv(t)

	_, err := e.run("run", "--", "false")
	assert.Error(t, err)

	out, err := e.run("run", "--suppress", "--view", "--", "false")
	assert.NoError(t, err)
	assert.Equal(t, "false: error \"exit status 1\"\n", out)

	_, err = e.run("run", "--retry", "--attempts", "2", "--retry-delay", "1ms", "--", "false")
	assert.Error(t, err)

	_, err = e.run("run", "--retry-policy", "nope", "--", "true")
	assert.Error(t, err)

	_, err = e.run("run")
	assert.Error(t, err)

	_, err = e.run("run", "--background", "--process", "--", "true")
	assert.Error(t, err)
}

func TestRunFailureReturnsError(t *testing.T) {
	e := newCliEnv(t)

	for _, args := range [][]string{
		{"run", "--", "false"},
		{"run", "--retry", "--attempts", "2", "--retry-delay", "1ms", "--", "false"},
		{"run", "--before", "1ms", "--after", "1ms", "--", "false"},
	} {
		_, err := e.run(args...)
		require.Error(t, err, strings.Join(args, " "))

		_, isExitCoder := err.(cli.ExitCoder)
		assert.False(t, isExitCoder, strings.Join(args, " "))

		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), strings.Join(args, " "))
		assert.Equal(t, 1, exitErr.ExitCode())
	}
}

func TestRunRetryUntilSuccess(t *testing.T) {
	e := newCliEnv(t)
	marker := filepath.Join(e.dir, "marker")
	// fails on the first attempt, succeeds once the marker exists
	script := "test -f " + marker + " || { touch " + marker + "; exit 1; }"
	e.mustRun("run", "--retry", "--attempts", "3", "--retry-delay", "1ms", "--", "sh", "-c", script)
	assert.FileExists(t, marker)
}

func TestRunBackground(t *testing.T) {
	e := newCliEnv(t)
	target := filepath.Join(e.dir, "bg")
	e.mustRun("run", "--background", "--", "touch", target)
	assert.FileExists(t, target)

	_, err := e.run("run", "--background", "--", "false")
	assert.Error(t, err)
}

func TestRunProcess(t *testing.T) {
	e := newCliEnv(t)
	target := filepath.Join(e.dir, "child")
	e.mustRun("run", "--process", "--", "touch", target)
	assert.FileExists(t, target)

	_, err := e.run("run", "--process", "--", "false")
	assert.Error(t, err)
}

func TestColorAndSay(t *testing.T) {
	e := newCliEnv(t)

	assert.Equal(t, "hi\n", e.mustRun("color", "--fg", "red", "--style", "bold", "hi"))
	_, err := e.run("color", "--fg", "mauve", "hi")
	assert.Error(t, err)

	assert.Equal(t, "WARNING:\n    careful now\n", e.mustRun("say", "--level", "warn", "careful", "now"))
	_, err = e.run("say", "--level", "shout", "x")
	assert.Error(t, err)
}

func TestShowConfig(t *testing.T) {
	e := newCliEnv(t)
	out := e.mustRun("config")
	assert.Contains(t, out, `"storePath"`)
	assert.Contains(t, out, e.path)
}

func TestMetricsDump(t *testing.T) {
	e := newCliEnv(t)
	t.Setenv("TOOLKIT_DISABLE_METRICS", "false")
	e.mustRun("store", "reset")
	out := e.mustRun("--metrics", "store", "list")
	assert.Contains(t, out, "toolkit_store_operations_total")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, json.Number("3"), parseValue("3"))
	assert.Equal(t, json.Number("9007199254740993"), parseValue("9007199254740993"))
	assert.Equal(t, "3 4", parseValue("3 4"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "hello", parseValue("hello"))
	assert.Equal(t, []interface{}{"a"}, parseValue(`["a"]`))
	assert.Nil(t, parseValue("null"))
}
