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

package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/volcengine/toolkit/pkg/config"
	"github.com/volcengine/toolkit/pkg/console"
	"github.com/volcengine/toolkit/pkg/decorator"
	"github.com/volcengine/toolkit/pkg/metrics"
	"github.com/volcengine/toolkit/pkg/utils/datatype"
	"github.com/volcengine/toolkit/pkg/utils/logger"
	"github.com/volcengine/toolkit/pkg/utils/runtime"
)

var (
	log = logger.GetLogger().WithFields(logger.Fields{"subsys": "cli"})
	cfg *config.Config
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "toolkit-cli",
		Usage: "Key-value store and command decorators",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path of the yaml config", EnvVars: []string{config.EnvConfigPath}},
			&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
			&cli.BoolFlag{Name: "metrics", Usage: "dump collected metrics to stderr on exit"},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.ParseConfig(c.String("config"))
			if err != nil {
				return err
			}
			if c.Bool("no-color") {
				cfg.NoColor = datatype.Bool(true)
			}
			console.SetNoColor(datatype.BoolValue(cfg.NoColor))
			if c.Bool("metrics") {
				metrics.PrometheusRegister()
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if !c.Bool("metrics") {
				return nil
			}
			return metrics.Dump(c.App.ErrWriter, prometheus.DefaultGatherer)
		},
		Commands: buildCommand(),
	}
}

func main() {
	decorator.InitProcess()
	defer runtime.HandleCrash(log)

	if err := newApp().Run(os.Args); err != nil {
		console.NewLog().Error(err.Error())
		os.Exit(1)
	}
}
