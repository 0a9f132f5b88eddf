// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// fwflash flashes firmware modules onto devices, switching them between
// normal and DFU mode as each module requires.
package main

import "github.com/fwflash-cli/fwflash/cmd"

func main() {
	cmd.Execute()
}
