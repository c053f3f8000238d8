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

package decorator

import (
	"context"

	"github.com/volcengine/toolkit/pkg/console"
	"github.com/volcengine/toolkit/pkg/metrics"
	"github.com/volcengine/toolkit/pkg/utils/logger"
	"github.com/volcengine/toolkit/pkg/utils/runtime"
)

const decoratorNoError = "no_error"

// NoError discards any error or panic of fn. With view, one line
// `<name>: error "<message>"` is printed before the error is dropped. The
// wrapper always returns nil.
func NoError[A any](fn Func[A], view bool, opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		err := call(ctx, fn, arg)
		metrics.FuncCallInc(o.name, decoratorNoError, err)
		if err == nil {
			return nil
		}

		log.DebugWithFields(logger.Fields{"func": o.name}, "Suppressed error: ", err)
		if view {
			msg := err.Error()
			if o.color {
				msg = console.Color(msg, nil, "red", "")
			}
			o.printf("%s: error \"%s\"\n", o.label(o.name), msg)
		}
		return nil
	}
}

// call runs fn, turning a panic into an error.
func call[A any](ctx context.Context, fn Func[A], arg A) (err error) {
	defer runtime.RecoverError(&err)
	return fn(ctx, arg)
}
