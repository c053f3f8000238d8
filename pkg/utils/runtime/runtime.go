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
	"fmt"
	"runtime"

	"github.com/volcengine/toolkit/pkg/utils/logger"
)

// PanicError is the error a recovered panic is turned into.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

func stack() []byte {
	// Same as stdlib http server code. Manually allocate stack trace buffer size
	// to prevent excessively large logs
	const size = 64 << 10
	stacktrace := make([]byte, size)
	return stacktrace[:runtime.Stack(stacktrace, false)]
}

func logPanic(r interface{}, stacktrace []byte, log logger.Logger) {
	if _, ok := r.(string); ok {
		log.Errorf("Observed a panic: %s\n%s\n", r, stacktrace)
	} else {
		log.Errorf("Observed a panic: %#v (%v)\n%s", r, r, stacktrace)
	}
}

// HandleCrash recovers and logs a panic. Must be deferred directly.
func HandleCrash(log logger.Logger) {
	if r := recover(); r != nil {
		logPanic(r, stack(), log)
	}
}

// RecoverError turns a panic into a *PanicError stored in err. Must be deferred
// directly; an existing error in err is replaced only when a panic happened.
func RecoverError(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r, Stack: stack()}
	}
}
