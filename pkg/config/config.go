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

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gdexlab/go-render/render"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/volcengine/toolkit/pkg/store"
	"github.com/volcengine/toolkit/pkg/utils/datatype"
	"github.com/volcengine/toolkit/pkg/utils/logger"
)

const (
	BackendFile = "file"
	BackendBolt = "bolt"

	DefaultRetryAttempts   = 3
	DefaultRetryIntervalMs = 1000

	EnvConfigPath   = "TOOLKIT_CONFIG"
	EnvStorePath    = "TOOLKIT_STORE_PATH"
	EnvStoreBackend = "TOOLKIT_STORE_BACKEND"
	EnvNoColor      = "TOOLKIT_NO_COLOR"
)

var log = logger.GetLogger().WithFields(logger.Fields{"subsys": "config"})

// Config configuration of toolkit cli.
type Config struct {
	// StorePath location of the key-value document
	StorePath *string `yaml:"storePath" json:"storePath,omitempty"`

	// Backend of the key-value store, "file" or "bolt"
	Backend *string `yaml:"backend" json:"backend,omitempty"`

	// Bucket holding the document when Backend is bolt
	Bucket *string `yaml:"bucket" json:"bucket,omitempty"`

	// ResetOnOpen empty the document every time the store is opened
	ResetOnOpen *bool `yaml:"resetOnOpen" json:"resetOnOpen,omitempty"`

	// NoColor disable colored output
	NoColor *bool `yaml:"noColor" json:"noColor,omitempty"`

	// RetryAttempts default attempts of the run command when retrying
	RetryAttempts *uint32 `yaml:"retryAttempts" json:"retryAttempts,omitempty"`

	// RetryIntervalMs default pause between attempts expressed in milliseconds
	RetryIntervalMs *uint32 `yaml:"retryIntervalMs" json:"retryIntervalMs,omitempty"`
}

// verifyConfig verify Config and fill in defaults.
func verifyConfig(cfg *Config) error {
	if cfg.Backend == nil {
		cfg.Backend = datatype.String(BackendFile)
	}
	switch b := datatype.StringValue(cfg.Backend); b {
	case BackendFile, BackendBolt:
	default:
		return fmt.Errorf("backend %s not support", b)
	}
	log.Infof("--Backend=%s", datatype.StringValue(cfg.Backend))

	if datatype.StringValue(cfg.StorePath) == "" {
		path := store.DefaultPath
		if datatype.StringValue(cfg.Backend) == BackendBolt {
			path = "database.db"
		}
		cfg.StorePath = datatype.String(path)
	}
	log.Infof("--StorePath=%s", datatype.StringValue(cfg.StorePath))

	if datatype.StringValue(cfg.Bucket) == "" {
		cfg.Bucket = datatype.String(store.DefaultBucket)
	}
	log.Infof("--Bucket=%s", datatype.StringValue(cfg.Bucket))

	if cfg.ResetOnOpen == nil {
		cfg.ResetOnOpen = datatype.Bool(false)
	}
	log.Infof("--ResetOnOpen=%t", datatype.BoolValue(cfg.ResetOnOpen))

	if cfg.NoColor == nil {
		cfg.NoColor = datatype.Bool(false)
	}
	log.Infof("--NoColor=%t", datatype.BoolValue(cfg.NoColor))

	if cfg.RetryAttempts == nil {
		cfg.RetryAttempts = datatype.Uint32(DefaultRetryAttempts)
	}
	log.Infof("--RetryAttempts=%d", datatype.Uint32Value(cfg.RetryAttempts))

	if cfg.RetryIntervalMs == nil {
		cfg.RetryIntervalMs = datatype.Uint32(DefaultRetryIntervalMs)
	}
	log.Infof("--RetryIntervalMs=%d", datatype.Uint32Value(cfg.RetryIntervalMs))
	return nil
}

// ParseConfig parse Config from the yaml file at path, then apply environment
// overrides. An empty path falls back to $TOOLKIT_CONFIG; no file at all is an
// empty Config.
func ParseConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "unmarshal config %s", path)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := verifyConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvStorePath); ok {
		cfg.StorePath = datatype.String(v)
	}
	if v, ok := os.LookupEnv(EnvStoreBackend); ok {
		cfg.Backend = datatype.String(v)
	}
	if v, ok := os.LookupEnv(EnvNoColor); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "parse %s", EnvNoColor)
		}
		cfg.NoColor = datatype.Bool(b)
	}
	return nil
}

// OpenStore opens the key-value store described by c.
func (c *Config) OpenStore() (*store.Store, error) {
	path := datatype.StringValue(c.StorePath)
	reset := datatype.BoolValue(c.ResetOnOpen)
	if datatype.StringValue(c.Backend) == BackendBolt {
		return store.NewBolt(path, datatype.StringValue(c.Bucket), reset)
	}
	return store.Open(path, reset)
}

func (c *Config) String() string {
	if c == nil {
		return ""
	}
	return render.AsCode(c)
}
