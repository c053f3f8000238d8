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

package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volcengine/toolkit/pkg/utils/logger"
)

func TestRecoverError(t *testing.T) {
	run := func(fn func() error) (err error) {
		defer RecoverError(&err)
		return fn()
	}

	assert.NoError(t, run(func() error { return nil }))

	plain := errors.New("plain")
	assert.Equal(t, plain, run(func() error { return plain }))

	err := run(func() error { panic("boom") })
	var perr *PanicError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "boom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
	assert.Equal(t, "panic: boom", err.Error())
}

func TestHandleCrash(t *testing.T) {
	log := logger.New(&logger.Configuration{LogLevel: "error", LogLocation: "stdout"})
	assert.NotPanics(t, func() {
		defer HandleCrash(log)
		panic(struct{ reason string }{"boom"})
	})
}
