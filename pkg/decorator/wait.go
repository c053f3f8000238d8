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
)

// Wait sleeps before, calls fn once, then sleeps after. Sleeps block the
// calling goroutine and cannot be cancelled. An error from fn is returned at
// once, skipping the second sleep.
func Wait[A any](fn Func[A], before, after time.Duration, opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		o.clock.Sleep(before)
		if err := fn(ctx, arg); err != nil {
			return err
		}
		o.clock.Sleep(after)
		return nil
	}
}

// Repeat calls fn amount times in sequence, sleeping delay after each call when
// delay is positive. The first error aborts the remaining calls and is returned.
func Repeat[A any](fn Func[A], amount int, delay time.Duration, opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		for i := 0; i < amount; i++ {
			if err := fn(ctx, arg); err != nil {
				return err
			}
			if delay > 0 {
				o.clock.Sleep(delay)
			}
		}
		return nil
	}
}
