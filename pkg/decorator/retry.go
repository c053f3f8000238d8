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

	"github.com/volcengine/toolkit/pkg/backoff"
)

// Retry calls fn until it succeeds, at most attempts times, sleeping delay
// between failed calls; fn is always called at least once. The last error is
// returned unmodified. The delay never grows.
func Retry[A any](fn Func[A], attempts int, delay time.Duration, opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		policy := backoff.Fixed(delay, attempts)
		var err error
		for attempt := 1; ; attempt++ {
			if err = fn(ctx, arg); err == nil {
				return nil
			}
			if attempt >= attempts {
				return err
			}
			log.Debugf("Attempt %d/%d of %s failed, %v", attempt, attempts, o.name, err)
			o.clock.Sleep(policy.Step())
		}
	}
}
