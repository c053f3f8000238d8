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

package backoff

import (
	"sort"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Policies are fixed-count, fixed-delay: Factor is always 1 and there is no jitter.
const (
	DefaultKey    = ""
	CommandRetry  = "command_retry"
	FastRetry     = "fast_retry"
	PatientRetry  = "patient_retry"
	SingleAttempt = "single_attempt"
)

var backoffMap = map[string]wait.Backoff{
	DefaultKey:    Fixed(time.Second, 3),
	CommandRetry:  Fixed(time.Second*2, 5),
	FastRetry:     Fixed(time.Millisecond*100, 5),
	PatientRetry:  Fixed(time.Second*10, 6),
	SingleAttempt: Fixed(0, 1),
}

// Fixed returns a policy of attempts tries separated by delay.
func Fixed(delay time.Duration, attempts int) wait.Backoff {
	return wait.Backoff{
		Duration: delay,
		Factor:   1,
		Steps:    attempts,
	}
}

// BackOff return a specific wait.Backoff according to the key.
func BackOff(key string) wait.Backoff {
	if b, exist := backoffMap[key]; exist {
		return b
	}

	return backoffMap[DefaultKey]
}

// Lookup returns the named policy, false when there is none.
func Lookup(key string) (wait.Backoff, bool) {
	b, exist := backoffMap[key]
	return b, exist
}

// Names returns the names of all named policies, sorted.
func Names() []string {
	names := make([]string, 0, len(backoffMap))
	for k := range backoffMap {
		if k != DefaultKey {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
