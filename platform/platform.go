// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Package platform holds the static per-platform flashing rules: which
// modules a platform has, where they are stored, and its special DFU segments.
package platform

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/fwflash-cli/module"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed platforms.json
var platformsJSON []byte

//go:embed platforms.schema.json
var schemaJSON []byte

const schemaURL = "platforms.schema.json"

// Storage is where a module lives on the device
type Storage string

const (
	StorageInternalFlash Storage = "internalFlash"
	StorageExternalMcu   Storage = "externalMcu"
)

// FirmwareModule describes one module slot of a platform
type FirmwareModule struct {
	Type      string  `json:"type"`
	Index     int     `json:"index"`
	Storage   Storage `json:"storage"`
	Encrypted bool    `json:"encrypted,omitempty"`
}

// Function returns the module function for the slot's type name
func (m FirmwareModule) Function() module.FunctionType {
	f, err := module.ParseFunctionType(m.Type)
	if err != nil {
		return module.FunctionNone
	}
	return f
}

// Segment is a reserved flash region
type Segment struct {
	Address string `json:"address"`
	Size    int    `json:"size"`
}

// StartAddress parses the hex address of the segment
func (s *Segment) StartAddress() (uint32, error) {
	addr, err := strconv.ParseUint(s.Address, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid segment address %q: %w", s.Address, err)
	}
	return uint32(addr), nil
}

// Segments are the optional special regions used when flashing over DFU
type Segments struct {
	FactoryReset   *Segment `json:"factoryReset,omitempty"`
	FormerUserPart *Segment `json:"formerUserPart,omitempty"`
}

// Platform is one device platform
type Platform struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	DisplayName     string           `json:"displayName,omitempty"`
	Generation      int              `json:"generation"`
	FirmwareModules []FirmwareModule `json:"firmwareModules"`
	DFU             struct {
		Segments Segments `json:"segments"`
	} `json:"dfu"`
}

// ModuleOfType returns the first module slot of the given function
func (p *Platform) ModuleOfType(f module.FunctionType) (FirmwareModule, bool) {
	for _, m := range p.FirmwareModules {
		if m.Function() == f {
			return m, true
		}
	}
	return FirmwareModule{}, false
}

// Module returns the module slot matching both function and index
func (p *Platform) Module(f module.FunctionType, index int) (FirmwareModule, bool) {
	for _, m := range p.FirmwareModules {
		if m.Function() == f && m.Index == index {
			return m, true
		}
	}
	return FirmwareModule{}, false
}

// Table is a set of platforms keyed by id
type Table struct {
	platforms map[int]*Platform
}

// Lookup finds a platform by id
func (t *Table) Lookup(id int) (*Platform, bool) {
	p, ok := t.platforms[id]
	return p, ok
}

// All returns the platforms ordered by id
func (t *Table) All() []*Platform {
	all := make([]*Platform, 0, len(t.platforms))
	for _, p := range t.platforms {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Load validates a JSON platform list against the schema and decodes it
func Load(data []byte) (*Table, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var list []*Platform
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("can't parse platform definitions: %w", err)
	}

	t := &Table{platforms: map[int]*Platform{}}
	for _, p := range list {
		if _, dup := t.platforms[p.ID]; dup {
			return nil, fmt.Errorf("duplicate platform id %d", p.ID)
		}
		t.platforms[p.ID] = p
	}
	return t, nil
}

// LoadFile loads a platform table from disk
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in platform table
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(platformsJSON)
		if err != nil {
			panic(fmt.Sprintf("built-in platform table: %s", err))
		}
		defaultTable = t
	})
	return defaultTable
}

func validate(data []byte) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("failed to add schema resource: %v", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %v", err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse platform definitions: %v", err)
	}

	if err = schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid platform definitions: %v", err)
	}

	return nil
}
