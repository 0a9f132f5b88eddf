// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package module

import (
	"fmt"
	"strings"
)

// FunctionType identifies what a firmware module is for.  The numeric values
// are the ones stored in the module prefix.
type FunctionType uint8

const (
	FunctionNone         FunctionType = 0
	FunctionResource     FunctionType = 1
	FunctionBootloader   FunctionType = 2
	FunctionMonoFirmware FunctionType = 3
	FunctionSystemPart   FunctionType = 4
	FunctionUserPart     FunctionType = 5
	FunctionSettings     FunctionType = 6
	FunctionNcpFirmware  FunctionType = 7
	FunctionRadioStack   FunctionType = 8
	FunctionAsset        FunctionType = 9
)

var functionNames = map[FunctionType]string{
	FunctionNone:         "none",
	FunctionResource:     "resource",
	FunctionBootloader:   "bootloader",
	FunctionMonoFirmware: "monoFirmware",
	FunctionSystemPart:   "systemPart",
	FunctionUserPart:     "userPart",
	FunctionSettings:     "settings",
	FunctionNcpFirmware:  "ncpFirmware",
	FunctionRadioStack:   "radioStack",
	FunctionAsset:        "asset",
}

// String returns the name used for the function in platform definitions
func (f FunctionType) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(f))
}

// Valid reports whether f is one of the known function types
func (f FunctionType) Valid() bool {
	_, ok := functionNames[f]
	return ok
}

// ParseFunctionType is the inverse of String, ignoring case
func ParseFunctionType(name string) (FunctionType, error) {
	for f, n := range functionNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return FunctionNone, fmt.Errorf("unknown module type: %s", name)
}

// Flags is the module flags bitset from the prefix
type Flags uint8

const (
	// FlagDropModuleInfo means the prefix is not written to flash
	FlagDropModuleInfo Flags = 0x01
	FlagCompressed     Flags = 0x02
	FlagCombined       Flags = 0x04
)

// Has reports whether every bit of flag is set
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}
