// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package lib

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Define flag groups
type FlagGroup struct {
	Name        string
	Description string
	Flags       []*pflag.Flag
}

// Helper function to get flags by name, skipping the ones fs doesn't have
func FlagsByName(fs *pflag.FlagSet, names ...string) (flags []*pflag.Flag) {
	for _, name := range names {
		if f := fs.Lookup(name); f != nil {
			flags = append(flags, f)
		}
	}
	return
}

// Helper function to print grouped flags
func PrintGroupedFlags(w io.Writer, groups []FlagGroup) {
	// First pass: find the longest flag name + type
	maxLen := 0
	for _, group := range groups {
		for _, f := range group.Flags {
			if n := len(flagText(f)); n > maxLen {
				maxLen = n
			}
		}
	}

	// Add padding for the flag prefix "  --" and some extra space
	padding := maxLen + 5

	for _, group := range groups {
		if len(group.Flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", group.Description)
		for _, f := range group.Flags {
			_, usage := pflag.UnquoteUsage(f)
			fmt.Fprintf(w, "  --%*s%s\n", -padding, flagText(f), usage)
		}
		fmt.Fprintln(w)
	}
}

func flagText(f *pflag.Flag) string {
	typeName, _ := pflag.UnquoteUsage(f)
	text := f.Name
	if f.Shorthand != "" {
		text = fmt.Sprintf("%s, -%s", f.Name, f.Shorthand)
	}
	if len(typeName) > 0 {
		text = fmt.Sprintf("%s (%s)", text, typeName)
	}
	return text
}
