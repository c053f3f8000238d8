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

package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type structuredLogger struct {
	logrusLogger *logrus.Entry
}

var levelMap = map[string]logrus.Level{
	"trace": logrus.TraceLevel,
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
	"fatal": logrus.FatalLevel,
	"panic": logrus.PanicLevel,
}

func (logf *structuredLogger) Debugf(format string, args ...interface{}) {
	logf.logrusLogger.Debugf(format, args...)
}

func (logf *structuredLogger) Debug(args ...interface{}) {
	logf.logrusLogger.Debug(args...)
}

func (logf *structuredLogger) DebugWithFields(fields Fields, args ...interface{}) {
	logf.logrusLogger.WithFields(logrus.Fields(fields)).Debug(args...)
}

func (logf *structuredLogger) Infof(format string, args ...interface{}) {
	logf.logrusLogger.Infof(format, args...)
}

func (logf *structuredLogger) Info(args ...interface{}) {
	logf.logrusLogger.Info(args...)
}

func (logf *structuredLogger) InfoWithFields(fields Fields, args ...interface{}) {
	logf.logrusLogger.WithFields(logrus.Fields(fields)).Info(args...)
}

func (logf *structuredLogger) Warnf(format string, args ...interface{}) {
	logf.logrusLogger.Warnf(format, args...)
}

func (logf *structuredLogger) Warn(args ...interface{}) {
	logf.logrusLogger.Warn(args...)
}

func (logf *structuredLogger) WarnWithFields(fields Fields, args ...interface{}) {
	logf.logrusLogger.WithFields(logrus.Fields(fields)).Warn(args...)
}

func (logf *structuredLogger) Errorf(format string, args ...interface{}) {
	logf.logrusLogger.Errorf(format, args...)
}

func (logf *structuredLogger) Error(args ...interface{}) {
	logf.logrusLogger.Error(args...)
}

func (logf *structuredLogger) ErrorWithFields(fields Fields, args ...interface{}) {
	logf.logrusLogger.WithFields(logrus.Fields(fields)).Error(args...)
}

func (logf *structuredLogger) Fatalf(format string, args ...interface{}) {
	logf.logrusLogger.Fatalf(format, args...)
}

func (logf *structuredLogger) WithFields(fields Fields) Logger {
	return &structuredLogger{logf.logrusLogger.WithFields(logrus.Fields(fields))}
}

func (logf *structuredLogger) WithError(err error) Logger {
	return &structuredLogger{logf.logrusLogger.WithError(err)}
}

func (logf *structuredLogger) SetLogLevel(level string) {
	logf.logrusLogger.Logger.SetLevel(getLogrusLevel(level))
}

func isValidFile(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !s.IsDir()
}

func getLogrusLevel(logLevel string) logrus.Level {
	if level, ok := levelMap[strings.ToLower(logLevel)]; ok {
		return level
	}
	return logrus.InfoLevel
}

// getLogrusLocation return a Writer according to the configuration.
// Empty or unusable locations fall back to stderr so stdout stays free for
// decorator diagnostics.
func getLogrusLocation(logLocation string) io.Writer {
	switch strings.ToLower(logLocation) {
	case "stdout":
		return os.Stdout
	case "", "stderr":
		return os.Stderr
	}

	if !isValidFile(logLocation) {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   logLocation,
		MaxSize:    64,
		MaxAge:     7,
		MaxBackups: 2,
		Compress:   true,
	}
}

func getLogrusFormatter(format string) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
}

// newLogrusLogger create a new logrus logger instance according to the config.
func (c *Configuration) newLogrusLogger() *structuredLogger {
	logger := logrus.New()
	logger.SetLevel(getLogrusLevel(c.LogLevel))
	logger.SetOutput(getLogrusLocation(c.LogLocation))
	logger.SetFormatter(getLogrusFormatter(c.LogFormat))
	if c.ReportCaller {
		hook := NewHook()
		hook.Field = "line"
		logger.AddHook(hook)
	}

	return &structuredLogger{logrusLogger: logrus.NewEntry(logger)}
}

// Hook adds the calling file and line to every entry.
type Hook struct {
	Field     string
	Skip      int
	levels    []logrus.Level
	Formatter func(file, function string, line int) string
}

func (hook *Hook) Levels() []logrus.Level {
	return hook.levels
}

func (hook *Hook) Fire(entry *logrus.Entry) error {
	entry.Data[hook.Field] = hook.Formatter(findCaller(hook.Skip))
	return nil
}

func NewHook(levels ...logrus.Level) *Hook {
	hook := Hook{
		Field:  "source",
		Skip:   5,
		levels: levels,
		Formatter: func(file, function string, line int) string {
			return fmt.Sprintf("%s:%d", file, line)
		},
	}
	if len(hook.levels) == 0 {
		hook.levels = logrus.AllLevels
	}

	return &hook
}

func findCaller(skip int) (string, string, int) {
	var (
		pc       uintptr
		file     string
		function string
		line     int
	)
	for i := 0; i < 10; i++ {
		pc, file, line = getCaller(skip + i)
		if !strings.HasPrefix(file, "logrus") && !strings.HasPrefix(file, "logger") {
			break
		}
	}
	if pc != 0 {
		frames := runtime.CallersFrames([]uintptr{pc})
		frame, _ := frames.Next()
		function = frame.Function
	}

	return file, function, line
}

// getCaller trims the file to its last two path elements.
func getCaller(skip int) (uintptr, string, int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return 0, "", 0
	}

	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				file = file[i+1:]
				break
			}
		}
	}

	return pc, file, line
}
