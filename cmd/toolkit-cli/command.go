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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/volcengine/toolkit/pkg/console"
	"github.com/volcengine/toolkit/pkg/store"
	"github.com/volcengine/toolkit/pkg/utils/datatype"
)

func withStore(fn func(c *cli.Context, s *store.Store) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := cfg.OpenStore()
		if errors.Is(err, store.ErrStorageUnavailable) {
			return errors.Wrap(err, "run `store reset` to create it")
		}
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(c, s)
	}
}

func expectArgs(c *cli.Context, n int) error {
	if c.Args().Len() != n {
		return fmt.Errorf("argument num invalid, expect %d", n)
	}
	return nil
}

var storeAdd = withStore(func(c *cli.Context, s *store.Store) error {
	if err := expectArgs(c, 2); err != nil {
		return err
	}
	key := c.Args().Get(0)
	if err := s.Add(key, parseValue(c.Args().Get(1))); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s added\n", key)
	return nil
})

var storeGet = withStore(func(c *cli.Context, s *store.Store) error {
	if err := expectArgs(c, 1); err != nil {
		return err
	}
	key := c.Args().Get(0)
	value, ok := s.Fetch(key)
	if !ok {
		return errors.Wrapf(store.ErrKeyNotFound, "get %q", key)
	}
	fmt.Fprintf(c.App.Writer, "%s\n", PrettyJson(value))
	return nil
})

var storeRemove = withStore(func(c *cli.Context, s *store.Store) error {
	if err := expectArgs(c, 1); err != nil {
		return err
	}
	key := c.Args().Get(0)
	if err := s.Remove(key); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s removed\n", key)
	return nil
})

// storeReset also creates a missing document.
func storeReset(c *cli.Context) error {
	reset := *cfg
	reset.ResetOnOpen = datatype.Bool(true)
	s, err := reset.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()
	if err = s.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "store reset")
	return nil
}

var storeList = withStore(func(c *cli.Context, s *store.Store) error {
	keys := s.Keys()
	if c.Bool("json") {
		doc := make([]map[string]interface{}, 0, len(keys))
		for _, k := range keys {
			v, _ := s.Fetch(k)
			doc = append(doc, map[string]interface{}{"key": k, "value": v})
		}
		fmt.Fprintf(c.App.Writer, "%s\n", PrettyJson(doc))
		return nil
	}

	tableData := pterm.TableData{{"Index", "Key", "Type", "Value"}}
	for i, k := range keys {
		v, _ := s.Fetch(k)
		raw, _ := json.Marshal(v)
		tableData = append(tableData, []string{fmt.Sprint(i), k, typeName(v), string(raw)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, table)
	return nil
})

func printColor(c *cli.Context) error {
	if err := expectArgs(c, 1); err != nil {
		return err
	}
	for _, check := range []struct {
		kind  console.Kind
		names []string
	}{
		{console.KindStyle, c.StringSlice("style")},
		{console.KindForeground, []string{c.String("fg")}},
		{console.KindBackground, []string{c.String("bg")}},
	} {
		for _, name := range check.names {
			if _, ok := console.Lookup(check.kind, name); name != "" && !ok {
				return fmt.Errorf("unknown %s %q", check.kind, name)
			}
		}
	}
	fmt.Fprintln(c.App.Writer, console.Color(c.Args().Get(0), c.StringSlice("style"), c.String("fg"), c.String("bg")))
	return nil
}

func say(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("argument num invalid, expect at least 1")
	}
	l := &console.Log{Out: c.App.Writer}
	text := strings.Join(c.Args().Slice(), " ")
	switch level := c.String("level"); level {
	case "info":
		l.Info(text)
	case "warn", "warning":
		l.Warn(text)
	case "error":
		l.Error(text)
	case "alert":
		l.Alert(text)
	default:
		return fmt.Errorf("unknown level %s", level)
	}
	return nil
}

func showConfig(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "Config: \n%s\n", PrettyJson(cfg))
	return nil
}
