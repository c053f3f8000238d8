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
	"os"
	"strings"
)

const (
	envLogLevel     = "TOOLKIT_LOGLEVEL"
	defaultLogLevel = "info"
	envLogLocation  = "TOOLKIT_LOG_LOCATION"
	envLogFormat    = "TOOLKIT_LOG_FORMAT"

	envReportCaller     = "TOOLKIT_LOG_CALLER"
	defaultReportCaller = false

	FormatText = "text"
	FormatJSON = "json"
)

// Configuration stores the config of the logger.
type Configuration struct {
	LogLevel     string
	LogLocation  string
	LogFormat    string
	ReportCaller bool
}

// LoadLogConfig returns the log configuration from env.
func LoadLogConfig() *Configuration {
	return &Configuration{
		LogLevel:     GetLogLevel(),
		LogLocation:  GetLogLocation(),
		LogFormat:    GetLogFormat(),
		ReportCaller: GetLogReportCaller(),
	}
}

// GetLogLocation get the log location from env.
func GetLogLocation() string {
	return os.Getenv(envLogLocation)
}

// GetLogLevel get the log level from env.
func GetLogLevel() string {
	logLevel := os.Getenv(envLogLevel)
	if logLevel == "" {
		logLevel = defaultLogLevel
	}

	return logLevel
}

// GetLogFormat get the log format from env, text unless json is asked for.
func GetLogFormat() string {
	if strings.ToLower(os.Getenv(envLogFormat)) == FormatJSON {
		return FormatJSON
	}
	return FormatText
}

func GetLogReportCaller() bool {
	switch os.Getenv(envReportCaller) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultReportCaller
	}
}
