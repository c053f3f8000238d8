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

package console

import (
	"fmt"
	"io"
	"os"
)

// Log prints a colored label line followed by the indented message.
type Log struct {
	Out io.Writer
}

// NewLog returns a Log writing to stdout.
func NewLog() *Log {
	return &Log{Out: os.Stdout}
}

func (l *Log) print(label, foreground string, labelStyles, textStyles []string, text string) {
	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "%s\n    %s\n",
		Color(label, labelStyles, foreground, ""),
		Color(text, textStyles, foreground, ""))
}

func (l *Log) Warn(text string) {
	l.print("WARNING:", "orange", []string{"underline"}, []string{"bold"}, text)
}

func (l *Log) Error(text string) {
	l.print("ERROR:", "red", []string{"underline"}, []string{"bold"}, text)
}

func (l *Log) Info(text string) {
	l.print("INFO:", "lightgray", []string{"underline", "disable"}, []string{"bold", "disable"}, text)
}

func (l *Log) Alert(text string) {
	l.print("ALERT:", "yellow", []string{"underline"}, []string{"bold"}, text)
}
