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
	"time"

	"github.com/volcengine/toolkit/pkg/metrics"
)

const decoratorTimer = "timer"

// Timer times every call of fn. In raw mode only the elapsed seconds are
// printed, otherwise "Function <name> ran in <seconds> seconds.". An error from
// fn is returned unmodified and nothing is printed for that call.
func Timer[A any](fn Func[A], raw bool, opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		start := o.clock.Now()
		err := fn(ctx, arg)
		elapsed := o.clock.Since(start)
		metrics.FuncCallInc(o.name, decoratorTimer, err)
		if err != nil {
			return err
		}
		metrics.ObserveFunc(o.name, decoratorTimer, elapsed)

		if raw {
			o.printf("%s\n", formatSeconds(elapsed.Seconds()))
		} else {
			o.printf("Function %s ran in %s seconds.\n", o.label(o.name), formatSeconds(elapsed.Seconds()))
		}
		o.emit(Report{Name: o.name, Times: []time.Duration{elapsed}})
		return nil
	}
}
