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

import "github.com/prometheus/client_golang/prometheus"

var (
	// StoreOperations counter of key-value store operations.
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_store_operations_total",
			Help: "The number of key-value store operations",
		},
		[]string{"op", "result"},
	)

	// StoreWriteLatency the latency of whole-document rewrites in ms.
	StoreWriteLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "toolkit_store_write_latency_ms",
			Help: "Latency of key-value store document rewrites in ms",
		},
		[]string{"backend"},
	)
)

func StoreOperationInc(op string, err error) {
	StoreOperations.WithLabelValues(op, result(err)).Inc()
}
