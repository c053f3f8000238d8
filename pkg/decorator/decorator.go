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

// Package decorator wraps functions with execution control: timing, error
// suppression, fire-and-forget dispatch, waits, repeats, retries and averaging.
//
// Every decorator takes a Func and returns a Func with the same signature, so a
// wrapped function is a drop-in replacement for the original. Decorators are
// side-effect-only: a wrapper never forwards a result, the only thing it hands
// back is an error (and Timer, Wait, Repeat and AverageTime only ever hand back
// the target's own error, unmodified).
package decorator

import (
	"context"
	"io"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"k8s.io/utils/clock"

	"github.com/volcengine/toolkit/pkg/utils/logger"
)

var log = logger.GetLogger().WithFields(logger.Fields{"subsys": "decorator"})

// Func is the call contract every decorator preserves. A bundles the arguments
// of the target; use a struct for several and None for none.
type Func[A any] func(ctx context.Context, arg A) error

// None is the argument of targets that take nothing.
type None = struct{}

// Discard adapts a function returning a value into a Func, dropping the value.
// The adapter hides the name of fn, pass WithName to decorators applied to it.
func Discard[A, R any](fn func(ctx context.Context, arg A) (R, error)) Func[A] {
	return func(ctx context.Context, arg A) error {
		_, err := fn(ctx, arg)
		return err
	}
}

// Clock is the part of k8s.io/utils/clock the decorators rely on.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
}

type options struct {
	name       string
	out        io.Writer
	clock      Clock
	report     func(Report)
	color      bool
	dispatcher *Dispatcher
}

// Option configures a decorator.
type Option func(*options)

// WithName overrides the name printed in diagnostics. Needed when decorators are
// stacked, since the inner wrapper has no name of its own.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithOutput redirects diagnostics, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithClock replaces the clock used for timing and sleeping.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithReport registers a callback receiving the measurements of Timer and
// AverageTime after they are printed.
func WithReport(fn func(Report)) Option {
	return func(o *options) {
		o.report = fn
	}
}

// WithColor styles diagnostics with ANSI colors.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = enabled
	}
}

// WithDispatcher routes Thread and Process launches through d instead of the
// default dispatcher.
func WithDispatcher(d *Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

func newOptions(fn interface{}, opts []Option) *options {
	o := &options{
		out:        os.Stdout,
		clock:      clock.RealClock{},
		dispatcher: defaultDispatcher,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = FuncName(fn)
	}
	return o
}

// FuncName returns the short symbol name of fn: package path and receiver
// wrapper suffixes trimmed, "boom" for a package level func boom.
func FuncName(fn interface{}) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
