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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/volcengine/toolkit/pkg/console"
)

// Report holds the measurements of one Timer call or one AverageTime run.
type Report struct {
	Name  string
	Times []time.Duration
}

func (r Report) seconds() stats.Float64Data {
	data := make(stats.Float64Data, 0, len(r.Times))
	for _, t := range r.Times {
		data = append(data, t.Seconds())
	}
	return data
}

// stat applies fn to the call times, 0 when there are none.
func (r Report) stat(fn func(stats.Float64Data) (float64, error)) float64 {
	v, err := fn(r.seconds())
	if err != nil {
		return 0
	}
	return v
}

// Total is the sum of all call times in seconds.
func (r Report) Total() float64 {
	return r.stat(stats.Sum)
}

// Mean is the arithmetic mean of the call times in seconds, 0 without calls.
func (r Report) Mean() float64 {
	return r.stat(stats.Mean)
}

// Min is the fastest call in seconds, 0 without calls.
func (r Report) Min() float64 {
	return r.stat(stats.Min)
}

// Max is the slowest call in seconds, 0 without calls.
func (r Report) Max() float64 {
	return r.stat(stats.Max)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

func (r Report) formatTimes() string {
	parts := make([]string, 0, len(r.Times))
	for _, s := range r.seconds() {
		parts = append(parts, formatSeconds(s))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o *options) label(name string) string {
	if !o.color {
		return name
	}
	return console.Color(name, []string{"bold"}, "cyan", "")
}

func (o *options) printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(o.out, format, args...); err != nil {
		log.Debugf("Write diagnostics of %s failed, %v", o.name, err)
	}
}

func (o *options) emit(r Report) {
	if o.report != nil {
		o.report(r)
	}
}
