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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"

	"github.com/volcengine/toolkit/pkg/utils/runtime"
)

// envProcessName carries the registered name of the target a child runs.
const envProcessName = "TOOLKIT_DECORATOR_PROCESS"

type processRunner func(ctx context.Context, payload []byte) error

var (
	processLock sync.RWMutex
	processes   = map[string]processRunner{}
)

func registerProcess(name string, run processRunner) {
	processLock.Lock()
	defer processLock.Unlock()
	if _, exist := processes[name]; exist {
		panic(fmt.Sprintf("decorator: process %q registered twice", name))
	}
	processes[name] = run
}

func lookupProcess(name string) (processRunner, bool) {
	processLock.RLock()
	defer processLock.RUnlock()
	run, ok := processes[name]
	return run, ok
}

// Process runs every call of fn in a child OS process and returns once the
// child has started. The child is the current executable started again; it
// finds fn under name, so Process must be called during package initialisation
// (a package level var) and the binary must call InitProcess first thing in
// main. arg travels to the child as JSON.
//
// The returned error only reports a failure to encode arg or start the child.
// What happens inside the child never reaches the caller; its exit status is
// logged by the dispatcher.
func Process[A any](name string, fn Func[A], opts ...Option) Func[A] {
	registerProcess(name, func(ctx context.Context, payload []byte) error {
		var arg A
		if err := json.Unmarshal(payload, &arg); err != nil {
			return errors.Wrapf(err, "decode argument of process %s", name)
		}
		return fn(ctx, arg)
	})

	o := newOptions(fn, append([]Option{WithName(name)}, opts...))
	return func(ctx context.Context, arg A) error {
		payload, err := json.Marshal(arg)
		if err != nil {
			return errors.Wrapf(err, "encode argument of process %s", name)
		}
		self, err := os.Executable()
		if err != nil {
			return errors.Wrap(err, "locate executable")
		}

		cmd := exec.Command(self)
		cmd.Env = append(os.Environ(), envProcessName+"="+name)
		cmd.Stdin = bytes.NewReader(payload)
		cmd.Stdout = o.out
		cmd.Stderr = os.Stderr
		if err = cmd.Start(); err != nil {
			return errors.Wrapf(err, "start process %s", name)
		}
		log.Debugf("Process %s started, pid %d", name, cmd.Process.Pid)

		o.dispatcher.Go(ctx, KindProcess, name, func(context.Context) error {
			return cmd.Wait()
		})
		return nil
	}
}

// InitProcess turns the current process into a Process child when it was
// started as one: the registered target runs and the process exits. In any
// other process it returns immediately.
func InitProcess() {
	name, ok := os.LookupEnv(envProcessName)
	if !ok {
		return
	}
	os.Exit(runProcess(name, os.Stdin))
}

// runProcess runs the target registered under name and returns the exit code.
func runProcess(name string, in io.Reader) int {
	run, ok := lookupProcess(name)
	if !ok {
		log.Errorf("No process registered as %s", name)
		return 2
	}
	payload, err := io.ReadAll(in)
	if err != nil {
		log.Errorf("Read argument of process %s failed, %v", name, err)
		return 2
	}

	err = func() (err error) {
		defer runtime.RecoverError(&err)
		return run(context.Background(), payload)
	}()
	if err != nil {
		log.WithError(err).Errorf("Process %s failed", name)
		return 1
	}
	return 0
}
