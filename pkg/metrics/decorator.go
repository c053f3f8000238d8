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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FuncLatency the latency of calls timed by a decorator.
	FuncLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toolkit_func_latency_seconds",
			Help:    "Latency of decorated function calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"func", "decorator"},
	)

	// FuncCalls counter of decorated function calls.
	FuncCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_func_calls_total",
			Help: "The number of decorated function calls",
		},
		[]string{"func", "decorator", "result"},
	)

	// DispatchedTasks counter of fire-and-forget tasks by how they ended.
	DispatchedTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_dispatched_tasks_total",
			Help: "The number of dispatched thread and process tasks",
		},
		[]string{"kind", "result"},
	)
)

func ObserveFunc(fn, decorator string, elapsed time.Duration) {
	FuncLatency.WithLabelValues(fn, decorator).Observe(elapsed.Seconds())
}

func FuncCallInc(fn, decorator string, err error) {
	FuncCalls.WithLabelValues(fn, decorator, result(err)).Inc()
}

func DispatchedTaskInc(kind string, err error) {
	DispatchedTasks.WithLabelValues(kind, result(err)).Inc()
}
