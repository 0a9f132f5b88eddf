// Copyright 2019 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package lib

import (
	"os"
	"path/filepath"
)

// Config file location, relative to the home directory
const (
	ConfigFolder = ".fwflash"
	ConfigName   = "config"
	ConfigType   = "yaml"
)

// ConfigDir returns the directory holding the config file
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFolder), nil
}

// ConfigPath returns the path to the config file, falling back to the
// working directory when there is no home directory
func ConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		dir = filepath.Join(".", ConfigFolder)
	}
	return filepath.Join(dir, ConfigName+"."+ConfigType)
}
