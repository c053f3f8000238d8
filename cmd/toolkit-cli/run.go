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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/volcengine/toolkit/pkg/backoff"
	"github.com/volcengine/toolkit/pkg/decorator"
	"github.com/volcengine/toolkit/pkg/utils/datatype"
)

const runProcessName = "toolkit-cli-run"

var (
	dispatcher = decorator.NewDispatcher()
	finished   = make(chan *decorator.Task, 64)

	// runInProcess is registered at init so a child started by it finds the
	// target; the child rebuilds the decorator chain from its runSpec.
	runInProcess = decorator.Process(runProcessName, func(ctx context.Context, spec runSpec) error {
		return spec.decorate(os.Stdout)(ctx, spec)
	}, decorator.WithDispatcher(dispatcher))
)

func init() {
	dispatcher.Subscribe(finished)
}

// runSpec describes one decorated run. It crosses the process boundary as JSON.
type runSpec struct {
	Argv []string `json:"argv"`

	Timer      bool          `json:"timer,omitempty"`
	Raw        bool          `json:"raw,omitempty"`
	Repeat     int           `json:"repeat,omitempty"`
	Delay      time.Duration `json:"delay,omitempty"`
	Average    int           `json:"average,omitempty"`
	Attempts   int           `json:"attempts,omitempty"`
	RetryDelay time.Duration `json:"retryDelay,omitempty"`
	Before     time.Duration `json:"before,omitempty"`
	After      time.Duration `json:"after,omitempty"`
	Suppress   bool          `json:"suppress,omitempty"`
	View       bool          `json:"view,omitempty"`
	Color      bool          `json:"color,omitempty"`
}

func (s runSpec) name() string {
	return filepath.Base(s.Argv[0])
}

// decorate builds the chain, innermost first: retry, wait, repeat, timing,
// suppression.
func (s runSpec) decorate(out io.Writer) decorator.Func[runSpec] {
	opts := []decorator.Option{
		decorator.WithName(s.name()),
		decorator.WithOutput(out),
		decorator.WithColor(s.Color),
	}

	fn := decorator.Func[runSpec](func(ctx context.Context, spec runSpec) error {
		cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
		cmd.Stdout = out
		cmd.Stderr = os.Stderr
		return cmd.Run()
	})
	if s.Attempts > 1 {
		fn = decorator.Retry(fn, s.Attempts, s.RetryDelay, opts...)
	}
	if s.Before > 0 || s.After > 0 {
		fn = decorator.Wait(fn, s.Before, s.After, opts...)
	}
	if s.Repeat > 1 {
		fn = decorator.Repeat(fn, s.Repeat, s.Delay, opts...)
	}
	switch {
	case s.Average > 0:
		fn = decorator.AverageTime(fn, s.Average, opts...)
	case s.Timer:
		fn = decorator.Timer(fn, s.Raw, opts...)
	}
	if s.Suppress {
		fn = decorator.NoError(fn, s.View, opts...)
	}
	return fn
}

func specFromContext(c *cli.Context) (runSpec, error) {
	spec := runSpec{
		Argv:     c.Args().Slice(),
		Timer:    c.Bool("timer") || c.Bool("raw"),
		Raw:      c.Bool("raw"),
		Repeat:   c.Int("repeat"),
		Delay:    c.Duration("delay"),
		Average:  c.Int("average"),
		Before:   c.Duration("before"),
		After:    c.Duration("after"),
		Suppress: c.Bool("suppress") || c.Bool("view"),
		View:     c.Bool("view"),
		Color:    !datatype.BoolValue(cfg.NoColor),
	}
	if len(spec.Argv) == 0 {
		return spec, fmt.Errorf("no command given")
	}

	if c.Bool("retry") || c.IsSet("retry-policy") || c.IsSet("attempts") || c.IsSet("retry-delay") {
		spec.Attempts = int(datatype.Uint32Value(cfg.RetryAttempts))
		spec.RetryDelay = time.Duration(datatype.Uint32Value(cfg.RetryIntervalMs)) * time.Millisecond
		if c.IsSet("retry-policy") {
			b, ok := backoff.Lookup(c.String("retry-policy"))
			if !ok {
				return spec, fmt.Errorf("unknown retry policy %s", c.String("retry-policy"))
			}
			spec.Attempts, spec.RetryDelay = b.Steps, b.Duration
		}
		if c.IsSet("attempts") {
			spec.Attempts = c.Int("attempts")
		}
		if c.IsSet("retry-delay") {
			spec.RetryDelay = c.Duration("retry-delay")
		}
	}
	return spec, nil
}

func runCommand(c *cli.Context) error {
	spec, err := specFromContext(c)
	if err != nil {
		return err
	}
	if c.Bool("background") && c.Bool("process") {
		return fmt.Errorf("background and process are exclusive")
	}

	fn := spec.decorate(c.App.Writer)
	switch {
	case c.Bool("process"):
		fn = runInProcess
	case c.Bool("background"):
		fn = decorator.Thread(fn, decorator.WithName(spec.name()), decorator.WithDispatcher(dispatcher))
	default:
		// an *exec.ExitError is a cli.ExitCoder and would make the app exit
		return errors.Wrapf(fn(c.Context, spec), "run %s", spec.name())
	}

	if err = fn(c.Context, spec); err != nil {
		return err
	}
	dispatcher.Wait()
	return collectFailure()
}

// collectFailure drains finished tasks and returns the first failure.
func collectFailure() error {
	var failure error
	for {
		select {
		case task := <-finished:
			if err := task.Err(); err != nil && failure == nil {
				failure = errors.Wrapf(err, "%s %s", task.Kind, task.Name)
			}
		default:
			return failure
		}
	}
}
