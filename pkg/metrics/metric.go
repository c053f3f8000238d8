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
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/volcengine/toolkit/pkg/utils/logger"
)

var log = logger.GetLogger().WithFields(logger.Fields{"subsys": "metrics"})

const (
	// Environment variable to disable metrics registration.
	envDisableMetrics = "TOOLKIT_DISABLE_METRICS"

	namePrefix = "toolkit_"

	resultSuccess = "success"
	resultError   = "error"
)

var registerOnce sync.Once

// PrometheusRegister registers all toolkit collectors on the default registry.
func PrometheusRegister() {
	if disableMetrics() {
		log.Info("Metrics disabled")
		return
	}
	registerOnce.Do(func() {
		prometheus.MustRegister(FuncLatency)
		prometheus.MustRegister(FuncCalls)
		prometheus.MustRegister(DispatchedTasks)

		prometheus.MustRegister(StoreOperations)
		prometheus.MustRegister(StoreWriteLatency)
	})
}

// Dump writes the toolkit metric families gathered by g in the text
// exposition format. Families of other collectors are skipped.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := toolkitFamilies(g)
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err = expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}

func toolkitFamilies(g prometheus.Gatherer) ([]*dto.MetricFamily, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	var out []*dto.MetricFamily
	for _, family := range families {
		if strings.HasPrefix(family.GetName(), namePrefix) {
			out = append(out, family)
		}
	}
	return out, nil
}

// disableMetrics returns true if we should disable metrics.
func disableMetrics() bool {
	return getEnvBoolWithDefault(envDisableMetrics, false)
}

func getEnvBoolWithDefault(envName string, def bool) bool {
	if strValue := os.Getenv(envName); strValue != "" {
		parsedValue, err := strconv.ParseBool(strValue)
		if err == nil {
			return parsedValue
		}
		log.Errorf("Failed to parse %s, using default `%t`: %v", envName, def, err.Error())
	}
	return def
}

// MsSince returns milliseconds since start.
func MsSince(start time.Time) float64 {
	return float64(time.Since(start) / time.Millisecond)
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
