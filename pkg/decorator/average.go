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

const decoratorAverage = "average"

// AverageTime calls fn amount times in sequence, timing each call, then prints
// the total, mean, minimum and maximum seconds and every call time. An error
// aborts the run and is returned; nothing is printed then.
func AverageTime[A any](fn Func[A], amount int, opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		report := Report{Name: o.name, Times: make([]time.Duration, 0, amount)}
		for i := 0; i < amount; i++ {
			start := o.clock.Now()
			err := fn(ctx, arg)
			elapsed := o.clock.Since(start)
			metrics.FuncCallInc(o.name, decoratorAverage, err)
			if err != nil {
				return err
			}
			metrics.ObserveFunc(o.name, decoratorAverage, elapsed)
			report.Times = append(report.Times, elapsed)
		}

		o.printf("Function %s ran %d times in %s seconds.\n", o.label(o.name), len(report.Times), formatSeconds(report.Total()))
		o.printf("    Average: %s seconds\n", formatSeconds(report.Mean()))
		o.printf("    Minimum: %s seconds\n", formatSeconds(report.Min()))
		o.printf("    Maximum: %s seconds\n", formatSeconds(report.Max()))
		o.printf("    Times: %s\n", report.formatTimes())
		o.emit(report)
		return nil
	}
}
