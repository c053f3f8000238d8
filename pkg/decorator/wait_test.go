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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWait(t *testing.T) {
	clk := newFakeClock()
	start := clk.Now()
	var calledAt time.Time

	fn := Wait(func(context.Context, None) error {
		calledAt = clk.Now()
		return nil
	}, 2*time.Second, 3*time.Second, WithClock(clk))

	assert.NoError(t, fn(context.Background(), None{}))
	assert.Equal(t, start.Add(2*time.Second), calledAt)
	assert.Equal(t, start.Add(5*time.Second), clk.Now())
}

func TestWaitErrorSkipsAfter(t *testing.T) {
	clk := newFakeClock()
	start := clk.Now()

	fn := Wait(boom, time.Second, time.Minute, WithClock(clk))
	assert.Equal(t, errBoom, fn(context.Background(), None{}))
	assert.Equal(t, start.Add(time.Second), clk.Now())
}

func TestRepeat(t *testing.T) {
	tests := []struct {
		description string
		amount      int
		delay       time.Duration
		failAt      int
		calls       int
		slept       time.Duration
		err         error
	}{
		{"no delay", 3, 0, 0, 3, 0, nil},
		{"fixed delay", 3, time.Second, 0, 3, 3 * time.Second, nil},
		{"fails midway", 5, time.Second, 2, 2, time.Second, errBoom},
		{"fails first", 5, 0, 1, 1, 0, errBoom},
		{"zero amount", 0, time.Second, 0, 0, 0, nil},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			clk := newFakeClock()
			start := clk.Now()
			c := &counter{failAt: test.failAt}

			err := Repeat(c.call, test.amount, test.delay, WithClock(clk))(context.Background(), None{})
			assert.Equal(t, test.err, err)
			assert.Equal(t, test.calls, c.calls)
			assert.Equal(t, test.slept, clk.Since(start))
		})
	}
}

func TestAverageTime(t *testing.T) {
	clk := newFakeClock()
	buf := &bytes.Buffer{}
	var got Report
	step := 0

	fn := AverageTime(func(context.Context, None) error {
		step++
		clk.Step(time.Duration(step) * time.Second)
		return nil
	}, 3, WithName("avg"), WithClock(clk), WithOutput(buf), WithReport(func(r Report) {
		got = r
	}))

	assert.NoError(t, fn(context.Background(), None{}))
	assert.Equal(t, 3, step)
	assert.Equal(t, "Function avg ran 3 times in 6 seconds.\n"+
		"    Average: 2 seconds\n"+
		"    Minimum: 1 seconds\n"+
		"    Maximum: 3 seconds\n"+
		"    Times: [1, 2, 3]\n", buf.String())

	assert.Equal(t, "avg", got.Name)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, got.Times)
	assert.Equal(t, float64(6), got.Total())
	assert.Equal(t, float64(2), got.Mean())
	assert.Equal(t, float64(1), got.Min())
	assert.Equal(t, float64(3), got.Max())
}

func TestAverageTimeError(t *testing.T) {
	buf := &bytes.Buffer{}
	c := &counter{failAt: 2}

	fn := AverageTime(c.call, 4, WithOutput(buf))
	assert.Equal(t, errBoom, fn(context.Background(), None{}))
	assert.Equal(t, 2, c.calls)
	assert.Empty(t, buf.String())
}

func TestEmptyReport(t *testing.T) {
	r := Report{}
	assert.Zero(t, r.Total())
	assert.Zero(t, r.Mean())
	assert.Zero(t, r.Min())
	assert.Zero(t, r.Max())
	assert.Equal(t, "[]", r.formatTimes())
}

func TestAverageTimeZeroAmount(t *testing.T) {
	buf := &bytes.Buffer{}
	c := &counter{}

	fn := AverageTime(c.call, 0, WithName("noop"), WithOutput(buf))
	assert.NoError(t, fn(context.Background(), None{}))
	assert.Equal(t, 0, c.calls)
	assert.Equal(t, "Function noop ran 0 times in 0 seconds.\n"+
		"    Average: 0 seconds\n"+
		"    Minimum: 0 seconds\n"+
		"    Maximum: 0 seconds\n"+
		"    Times: []\n", buf.String())
	assert.NotContains(t, buf.String(), "NaN")
}

func TestRetry(t *testing.T) {
	tests := []struct {
		description string
		attempts    int
		succeedAt   int
		calls       int
		slept       time.Duration
		err         error
	}{
		{"first try", 3, 1, 1, 0, nil},
		{"third try", 5, 3, 3, 2 * time.Second, nil},
		{"exhausted", 3, 0, 3, 2 * time.Second, errBoom},
		{"single attempt", 0, 0, 1, 0, errBoom},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			clk := newFakeClock()
			start := clk.Now()
			calls := 0
			fn := Retry(func(context.Context, None) error {
				calls++
				if calls == test.succeedAt {
					return nil
				}
				return errBoom
			}, test.attempts, time.Second, WithClock(clk))

			assert.Equal(t, test.err, fn(context.Background(), None{}))
			assert.Equal(t, test.calls, calls)
			assert.Equal(t, test.slept, clk.Since(start))
		})
	}
}
