// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwflash-cli/device/dummy"
	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/module"
	"github.com/fwflash-cli/platform"
	"github.com/pterm/pterm"
)

var errNoDevice = errors.New("no device specified, use --device or 'fwflash config set device DIR'")

// loadPlatforms returns the built-in platform table unless a file is given
func loadPlatforms(path string) (*platform.Table, error) {
	if path == "" {
		return platform.Default(), nil
	}
	return platform.LoadFile(path)
}

// loadModules parses every file, reporting the first that fails
func loadModules(files []string) ([]*module.Descriptor, error) {
	mods := make([]*module.Descriptor, 0, len(files))
	for _, file := range files {
		m, err := module.ParseFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// deviceDirs splits a comma-separated list of device directories
func deviceDirs(list string) []string {
	var dirs []string
	for _, dir := range strings.Split(list, ",") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// loadDevices loads the simulated device in each directory
func loadDevices(list string) ([]*dummy.Device, error) {
	dirs := deviceDirs(list)
	if len(dirs) == 0 {
		return nil, errNoDevice
	}
	devices := make([]*dummy.Device, 0, len(dirs))
	for _, dir := range dirs {
		d, err := dummy.Load(dir)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func platformName(table *platform.Table, id int) string {
	if p, ok := table.Lookup(id); ok {
		return p.DisplayName
	}
	return fmt.Sprintf("unknown (%d)", id)
}

// renderPlan prints a plan as a table
func renderPlan(w io.Writer, steps flash.Plan) error {
	data := pterm.TableData{{"#", "Module", "Mode", "Address", "Size", "Notes"}}
	for i, s := range steps {
		address := ""
		if s.Mode == flash.ModeDfu {
			address = fmt.Sprintf("0x%08x", s.Address)
		}
		notes := ""
		switch {
		case s.Skip != nil:
			notes = "skipped if " + s.Skip.HashHex()[:12] + " is on the device"
		case s.Name == flash.InvalidateUserPartStep:
			notes = "erases the former user part"
		}
		data = append(data, []string{
			fmt.Sprint(i + 1), s.Name, s.Mode.String(), address, fmt.Sprint(len(s.Data)), notes,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
