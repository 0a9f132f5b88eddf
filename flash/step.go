// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"fmt"

	"github.com/fwflash-cli/module"
)

// Mode is how a step gets onto the device
type Mode int

const (
	// ModeNormal uses control requests while the application runs
	ModeNormal Mode = iota
	// ModeDfu writes raw flash over USB DFU
	ModeDfu
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDfu:
		return "DFU"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Step is one transfer.  Steps are built by the planner and not modified
// afterwards.
type Step struct {
	Name    string
	Data    []byte
	Mode    Mode
	Address uint32
	// Function of the source module, FunctionNone for synthesized steps
	Function module.FunctionType
	// Skip is set on asset steps only
	Skip *AssetSkip
}

func (s *Step) String() string {
	if s.Mode == ModeDfu {
		return fmt.Sprintf("%s (%s @ 0x%x, %d bytes)", s.Name, s.Mode, s.Address, len(s.Data))
	}
	return fmt.Sprintf("%s (%s, %d bytes)", s.Name, s.Mode, len(s.Data))
}

// Plan is an ordered list of steps
type Plan []*Step

// Names returns the step names in order
func (p Plan) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return names
}

// TotalBytes is the sum of the sizes of all steps
func (p Plan) TotalBytes() (total int) {
	for _, s := range p {
		total += len(s.Data)
	}
	return
}
