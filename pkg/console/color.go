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

// Package console formats text with ANSI styles and prints leveled messages for humans.
package console

import (
	"sort"

	"github.com/pterm/pterm"
)

// Kind groups the names Color accepts.
type Kind int

const (
	KindStyle Kind = iota
	KindForeground
	KindBackground
)

func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "style"
	case KindForeground:
		return "foreground"
	case KindBackground:
		return "background"
	}
	return "unknown"
}

var codes = map[Kind]map[string]pterm.Color{
	KindStyle: {
		"reset":         pterm.Reset,
		"bold":          pterm.Bold,
		"disable":       pterm.Fuzzy,
		"underline":     pterm.Underscore,
		"reverse":       pterm.Reverse,
		"strikethrough": pterm.Strikethrough,
		"invisible":     pterm.Concealed,
	},
	KindForeground: {
		"black":      pterm.FgBlack,
		"red":        pterm.FgRed,
		"green":      pterm.FgGreen,
		"orange":     pterm.FgYellow,
		"blue":       pterm.FgBlue,
		"purple":     pterm.FgMagenta,
		"cyan":       pterm.FgCyan,
		"lightgray":  pterm.FgWhite,
		"darkgray":   pterm.FgDarkGray,
		"lightred":   pterm.FgLightRed,
		"lightgreen": pterm.FgLightGreen,
		"yellow":     pterm.FgLightYellow,
		"lightblue":  pterm.FgLightBlue,
		"pink":       pterm.FgLightMagenta,
		"lightcyan":  pterm.FgLightCyan,
	},
	KindBackground: {
		"black":     pterm.BgBlack,
		"red":       pterm.BgRed,
		"green":     pterm.BgGreen,
		"orange":    pterm.BgYellow,
		"blue":      pterm.BgBlue,
		"purple":    pterm.BgMagenta,
		"cyan":      pterm.BgCyan,
		"lightgray": pterm.BgWhite,
	},
}

// Lookup returns the code registered for name under kind.
func Lookup(kind Kind, name string) (pterm.Color, bool) {
	c, ok := codes[kind][name]
	return c, ok
}

// Names lists the names known for kind, sorted.
func Names(kind Kind) []string {
	names := make([]string, 0, len(codes[kind]))
	for name := range codes[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Color styles text. Unknown names are ignored and an empty text stays empty.
func Color(text string, styles []string, foreground, background string) string {
	if text == "" {
		return ""
	}

	style := pterm.Style{}
	for _, name := range styles {
		if c, ok := Lookup(KindStyle, name); ok {
			style = append(style, c)
		}
	}
	if c, ok := Lookup(KindForeground, foreground); ok {
		style = append(style, c)
	}
	if c, ok := Lookup(KindBackground, background); ok {
		style = append(style, c)
	}
	if len(style) == 0 {
		return text
	}
	return style.Sprint(text)
}

// SetNoColor turns ANSI output off (or back on) process-wide.
func SetNoColor(noColor bool) {
	if noColor {
		pterm.DisableColor()
	} else {
		pterm.EnableColor()
	}
}
