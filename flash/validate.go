// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwflash-cli/module"
	"github.com/fwflash-cli/platform"
	"golang.org/x/mod/semver"
)

const (
	// ProtectedMinimumVersion is the oldest Device OS a protected device accepts
	ProtectedMinimumVersion = "6.0.0"

	protectedMinimumSystemVersion     uint16 = 6000
	protectedMinimumBootloaderVersion uint16 = 3000
)

// FilterModulesToFlash drops modules that can't be flashed from here:
// encrypted modules, and radio stack or NCP firmware unless allowAll is set
func FilterModulesToFlash(mods []*module.Descriptor, plat *platform.Platform, allowAll bool) []*module.Descriptor {
	var out []*module.Descriptor
	for _, m := range mods {
		def, ok := plat.Module(m.Prefix.Function, int(m.Prefix.Index))
		if ok && def.Encrypted {
			continue
		}
		switch m.Prefix.Function {
		case module.FunctionRadioStack, module.FunctionNcpFirmware:
			if !allowAll {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// ValidateModulesForPlatform rejects modules with a bad CRC and modules
// built for another platform.  Assets are platform independent.
func ValidateModulesForPlatform(mods []*module.Descriptor, plat *platform.Platform) error {
	for _, m := range mods {
		if !m.CRCValid {
			return planningErrorf("CRC check failed for module %s", m.Filename)
		}
		if int(m.Prefix.PlatformID) != plat.ID && m.Prefix.Function != module.FunctionAsset {
			return planningErrorf("Module %s is not compatible with platform %s", m.Filename, plat.Name)
		}
	}
	return nil
}

// ValidateDFUSupport fails when a Gen 2 device has to be switched to DFU mode
// by request but runs a Device OS that can't do it
func ValidateDFUSupport(dev Device, plat *platform.Platform) error {
	if dev.IsInDfuMode() || plat.Generation != 2 {
		return nil
	}
	if !deviceOSAtLeast(dev.FirmwareVersion(), "2.0.0") {
		return &PlanningError{Msg: MsgDfuModeRequired}
	}
	return nil
}

// ValidateModulesForProtection refuses to downgrade the Device OS of a
// protected device.  Devices that don't support protection are not checked.
func ValidateModulesForProtection(ctx context.Context, dev Device, mods []*module.Descriptor) error {
	state, err := dev.GetProtectionState(ctx)
	if errors.Is(err, ErrNotSupported) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("can't read device protection state: %w", err)
	}
	if !state.Protected && !state.Overridden {
		return nil
	}

	for _, m := range mods {
		p := m.Prefix
		oldSystem := p.Function == module.FunctionSystemPart && p.Version < protectedMinimumSystemVersion
		oldBootloader := p.Function == module.FunctionBootloader && p.Index == 0 && p.Version < protectedMinimumBootloaderVersion
		if oldSystem || oldBootloader {
			return &PlanningError{Msg: MsgProtectedDowngrade}
		}
	}
	return nil
}

// deviceOSAtLeast compares a Device OS version such as "2.3.1" against min.
// An unknown or malformed version is treated as older.
func deviceOSAtLeast(version, min string) bool {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, "v"+min) >= 0
}
