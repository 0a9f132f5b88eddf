// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package lib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("device", "d", "", "Device `dir`ectory")
	fs.Bool("factory", false, "Write to the factory slot")
	fs.Duration("timeout", 0, "How long to retry")
	return fs
}

func TestFlagsByName(t *testing.T) {
	flags := FlagsByName(testFlags(), "factory", "missing", "device")
	if assert.Len(t, flags, 2) {
		assert.Equal(t, "factory", flags[0].Name)
		assert.Equal(t, "device", flags[1].Name)
	}
	assert.Empty(t, FlagsByName(testFlags()))
}

func TestPrintGroupedFlags(t *testing.T) {
	fs := testFlags()
	var out bytes.Buffer
	PrintGroupedFlags(&out, []FlagGroup{
		{Name: "flash", Description: "Flashing", Flags: FlagsByName(fs, "factory", "timeout")},
		{Name: "empty", Description: "Nothing here"},
		{Name: "device", Description: "Device", Flags: FlagsByName(fs, "device")},
	})

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "Flashing:", lines[0])
	assert.Contains(t, lines[1], "--factory")
	assert.Contains(t, lines[2], "--timeout (duration)")
	assert.NotContains(t, out.String(), "Nothing here")
	assert.Contains(t, out.String(), "--device, -d (dir)")

	// Usage text lines up across groups
	col := strings.Index(lines[1], "Write to")
	assert.Equal(t, col, strings.Index(lines[2], "How long"))
	for _, line := range lines {
		if strings.Contains(line, "--device") {
			assert.Equal(t, col, strings.Index(line, "Device directory"))
		}
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, err := ConfigDir()
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(dir, ConfigFolder))
	assert.True(t, strings.HasPrefix(ConfigPath(), dir))
}
