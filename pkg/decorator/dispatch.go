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
	"sync"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/volcengine/toolkit/pkg/metrics"
	"github.com/volcengine/toolkit/pkg/utils/logger"
	"github.com/volcengine/toolkit/pkg/utils/runtime"
)

const (
	KindThread  = "thread"
	KindProcess = "process"
)

// Task tracks one dispatched unit of work.
type Task struct {
	Kind string
	Name string

	done chan struct{}
	err  error
}

func newTask(kind, name string) *Task {
	return &Task{Kind: kind, Name: name, done: make(chan struct{})}
}

// Done is closed once the unit has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the error the unit ended with, nil while it is still running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the unit has finished and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Dispatcher launches fire-and-forget units. Callers of Thread and Process never
// see the Task; a Dispatcher of their own lets them Wait for every unit or
// Subscribe to finished ones.
type Dispatcher struct {
	group wait.Group

	lock        sync.Mutex
	subscribers []chan<- *Task
}

var defaultDispatcher = NewDispatcher()

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// DefaultDispatcher is used by decorators built without WithDispatcher.
func DefaultDispatcher() *Dispatcher {
	return defaultDispatcher
}

// Subscribe registers ch to receive every finished Task. Sends never block, a
// Task is dropped for a subscriber that is not ready.
func (d *Dispatcher) Subscribe(ch chan<- *Task) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.subscribers = append(d.subscribers, ch)
}

// Go runs fn in a new goroutine. Panics are recovered into the Task error.
func (d *Dispatcher) Go(ctx context.Context, kind, name string, fn func(ctx context.Context) error) *Task {
	task := newTask(kind, name)
	d.group.Start(func() {
		defer d.finish(task)
		defer runtime.RecoverError(&task.err)
		task.err = fn(ctx)
	})
	return task
}

// Wait blocks until every unit started so far has finished.
func (d *Dispatcher) Wait() {
	d.group.Wait()
}

func (d *Dispatcher) finish(task *Task) {
	metrics.DispatchedTaskInc(task.Kind, task.err)
	if task.err != nil {
		log.WarnWithFields(logger.Fields{"kind": task.Kind, "func": task.Name}, "Dispatched task failed: ", task.err)
	}
	close(task.done)

	d.lock.Lock()
	defer d.lock.Unlock()
	for _, ch := range d.subscribers {
		select {
		case ch <- task:
		default:
			log.Debugf("Subscriber busy, drop task %s/%s", task.Kind, task.Name)
		}
	}
}

// Thread runs every call of fn in a new goroutine and returns nil at once.
// Nothing about the outcome reaches the caller; failures are logged.
func Thread[A any](fn Func[A], opts ...Option) Func[A] {
	o := newOptions(fn, opts)
	return func(ctx context.Context, arg A) error {
		o.dispatcher.Go(ctx, KindThread, o.name, func(ctx context.Context) error {
			return fn(ctx, arg)
		})
		return nil
	}
}
