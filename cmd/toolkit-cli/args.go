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
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/volcengine/toolkit/pkg/backoff"
	"github.com/volcengine/toolkit/pkg/console"
)

func buildCommand() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "store",
			Aliases: []string{"s"},
			Usage:   "Manage the key-value store",
			Subcommands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "Insert or overwrite a key, the value is parsed as JSON when possible",
					ArgsUsage: "<key> <value>",
					Action:    storeAdd,
				},
				{
					Name:      "get",
					Usage:     "Show the value of a key",
					ArgsUsage: "<key>",
					Action:    storeGet,
				},
				{
					Name:      "rm",
					Aliases:   []string{"remove"},
					Usage:     "Remove a key",
					ArgsUsage: "<key>",
					Action:    storeRemove,
				},
				{
					Name:   "reset",
					Usage:  "Remove every key",
					Action: storeReset,
				},
				{
					Name:    "list",
					Aliases: []string{"ls", "l"},
					Usage:   "List keys and values",
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "json", Value: false, Aliases: []string{"j"}, Usage: "json format"},
					},
					Action: storeList,
				},
			},
		},
		{
			Name:      "run",
			Usage:     "Run a command under decorators",
			ArgsUsage: "[flags] -- <command> [args...]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "timer", Aliases: []string{"t"}, Usage: "report how long the command ran"},
				&cli.BoolFlag{Name: "raw", Usage: "report seconds only"},
				&cli.IntFlag{Name: "repeat", Usage: "run the command this many times"},
				&cli.DurationFlag{Name: "delay", Usage: "pause between repeated runs"},
				&cli.IntFlag{Name: "average", Usage: "run the command this many times and report timing statistics"},
				&cli.BoolFlag{Name: "retry", Aliases: []string{"r"}, Usage: "retry a failing command"},
				&cli.StringFlag{
					Name:  "retry-policy",
					Usage: fmt.Sprintf("named retry policy, one of %s", strings.Join(backoff.Names(), " ")),
				},
				&cli.IntFlag{Name: "attempts", Usage: "attempts when retrying, overrides config and policy"},
				&cli.DurationFlag{Name: "retry-delay", Usage: "pause between attempts, overrides config and policy"},
				&cli.DurationFlag{Name: "before", Usage: "pause before the command"},
				&cli.DurationFlag{Name: "after", Usage: "pause after the command"},
				&cli.BoolFlag{Name: "suppress", Usage: "never fail, whatever the command does"},
				&cli.BoolFlag{Name: "view", Usage: "print the suppressed error"},
				&cli.BoolFlag{Name: "background", Aliases: []string{"bg"}, Usage: "run in a goroutine"},
				&cli.BoolFlag{Name: "process", Usage: "run in a child process"},
			},
			Action: runCommand,
		},
		{
			Name:      "color",
			Usage:     "Print colored text",
			ArgsUsage: "<text>",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "style", Usage: "one of " + strings.Join(console.Names(console.KindStyle), " ")},
				&cli.StringFlag{Name: "fg", Usage: "one of " + strings.Join(console.Names(console.KindForeground), " ")},
				&cli.StringFlag{Name: "bg", Usage: "one of " + strings.Join(console.Names(console.KindBackground), " ")},
			},
			Action: printColor,
		},
		{
			Name:      "say",
			Usage:     "Print a console message",
			ArgsUsage: "<text>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "level", Value: "info", Usage: "one of info warn error alert"},
			},
			Action: say,
		},
		{
			Name:    "config",
			Aliases: []string{"cfg"},
			Usage:   "Show the effective config",
			Action:  showConfig,
		},
	}
}
