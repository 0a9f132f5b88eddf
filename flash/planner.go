// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"bytes"
	"fmt"

	"github.com/fwflash-cli/dependency"
	"github.com/fwflash-cli/module"
	"github.com/fwflash-cli/platform"
)

// Device OS 3.1.3 and later reformat the legacy 128K user part region
const deviceOSMinVersionToFormat128kUser = 3103

// InvalidateUserPartStep is the name of the step erasing the legacy user part
const InvalidateUserPartStep = "invalidate-128k-user-part"

// PlanOptions describe the device a plan is built for
type PlanOptions struct {
	IsInDfuMode bool
	Factory     bool
	PlatformID  int
}

// Planner turns modules into flash steps using a platform table
type Planner struct {
	platforms *platform.Table
}

// NewPlanner returns a planner over the given table
func NewPlanner(platforms *platform.Table) *Planner {
	return &Planner{platforms: platforms}
}

// CreateFlashSteps plans with the built-in platform table
func CreateFlashSteps(mods []*module.Descriptor, opts PlanOptions) (Plan, error) {
	return NewPlanner(platform.Default()).CreateFlashSteps(mods, opts)
}

// CreateFlashSteps orders the modules by dependency and assigns each a mode
// and, for DFU, an address.  Steps needing normal mode come first unless the
// device is already in DFU mode, so that a device with a broken Device OS
// can be repaired without leaving DFU.  Assets always go last.
func (p *Planner) CreateFlashSteps(mods []*module.Descriptor, opts PlanOptions) (Plan, error) {
	plat, ok := p.platforms.Lookup(opts.PlatformID)
	if !ok {
		return nil, planningErrorf(msgUnknownPlatformFormat, opts.PlatformID)
	}

	var normalSteps, dfuSteps, assetSteps Plan
	for _, m := range dependency.SortByDependencies(mods) {
		step := &Step{
			Name:     m.Name(),
			Data:     m.FlashData(),
			Function: m.Prefix.Function,
		}

		var factoryAddress uint32
		if opts.Factory {
			addr, err := factoryResetAddress(plat, m)
			if err != nil {
				return nil, err
			}
			factoryAddress = addr
		}

		switch classify(plat, m.Prefix.Function) {
		case classAsset:
			step.Mode = ModeNormal
			step.Skip = NewAssetSkip(m)
			assetSteps = append(assetSteps, step)
		case classNormal:
			step.Mode = ModeNormal
			normalSteps = append(normalSteps, step)
		default:
			if m.Prefix.Function == module.FunctionUserPart {
				invalidate, err := invalidateFormerUserPart(plat, m)
				if err != nil {
					return nil, err
				}
				if invalidate != nil {
					dfuSteps = append(dfuSteps, invalidate)
				}
			}
			step.Mode = ModeDfu
			step.Address = m.Prefix.StartAddress
			if opts.Factory {
				step.Address = factoryAddress
			}
			dfuSteps = append(dfuSteps, step)
		}
	}

	var plan Plan
	if opts.IsInDfuMode {
		plan = append(append(plan, dfuSteps...), normalSteps...)
	} else {
		plan = append(append(plan, normalSteps...), dfuSteps...)
	}
	return append(plan, assetSteps...), nil
}

type class int

const (
	classDfu class = iota
	classNormal
	classAsset
)

func classify(plat *platform.Platform, f module.FunctionType) class {
	switch f {
	case module.FunctionAsset:
		return classAsset
	case module.FunctionBootloader:
		return classNormal
	}
	if def, ok := plat.ModuleOfType(f); ok && def.Storage == platform.StorageExternalMcu {
		return classNormal
	}
	return classDfu
}

func factoryResetAddress(plat *platform.Platform, m *module.Descriptor) (uint32, error) {
	if m.Prefix.Function != module.FunctionUserPart {
		return 0, &PlanningError{Msg: MsgFactoryUserPartOnly}
	}
	segment := plat.DFU.Segments.FactoryReset
	if segment == nil {
		return 0, &PlanningError{Msg: MsgFactoryNotSupported}
	}
	addr, err := segment.StartAddress()
	if err != nil {
		return 0, &PlanningError{Msg: err.Error()}
	}
	return addr, nil
}

// invalidateFormerUserPart returns the step erasing the legacy user part
// region, or nil when the platform or the Device OS doesn't need it
func invalidateFormerUserPart(plat *platform.Platform, m *module.Descriptor) (*Step, error) {
	segment := plat.DFU.Segments.FormerUserPart
	if segment == nil || m.Prefix.Dep.Version < deviceOSMinVersionToFormat128kUser {
		return nil, nil
	}
	addr, err := segment.StartAddress()
	if err != nil {
		return nil, &PlanningError{Msg: err.Error()}
	}
	return &Step{
		Name:    InvalidateUserPartStep,
		Data:    bytes.Repeat([]byte{0xff}, segment.Size),
		Mode:    ModeDfu,
		Address: addr,
	}, nil
}

// GetFileFlashMode returns the mode a single module will be flashed in,
// which tells the caller how to open the device
func GetFileFlashMode(d *module.Descriptor, platforms *platform.Table) (Mode, error) {
	plat, ok := platforms.Lookup(int(d.Prefix.PlatformID))
	if !ok {
		return ModeDfu, planningErrorf(msgUnknownPlatformFormat, d.Prefix.PlatformID)
	}
	def, ok := plat.ModuleOfType(d.Prefix.Function)
	if !ok && d.Prefix.Function != module.FunctionAsset {
		return ModeDfu, &PlanningError{Msg: fmt.Sprintf("Module type %s unsupported for %s", d.Prefix.Function, plat.Name)}
	}
	switch d.Prefix.Function {
	case module.FunctionAsset, module.FunctionBootloader:
		return ModeNormal, nil
	}
	if def.Storage == platform.StorageExternalMcu {
		return ModeNormal, nil
	}
	return ModeDfu, nil
}
