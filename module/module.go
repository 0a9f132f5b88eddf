// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Package module reads and writes firmware module binaries.
//
// A module is laid out as a fixed little-endian prefix, the payload, a suffix
// and a trailing big-endian CRC-32 of everything before it:
//
//	prefix  start u32 | end u32 | reserved u8 | flags u8 | version u16 |
//	        platform u16 | function u8 | index u8 |
//	        dep function u8 | dep index u8 | dep version u16 |
//	        dep2 function u8 | dep2 index u8 | dep2 version u16
//	suffix  [name bytes | name len u16] | product id u16 | product version u16 |
//	        reserved u16 | sha256 [32] | suffix size u16
//	crc     u32
package module

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
)

const (
	// PrefixSize is the size of the module info header
	PrefixSize = 24
	// SuffixFixedSize is the size of the suffix without extensions
	SuffixFixedSize = 40
	// CRCSize is the size of the trailing checksum
	CRCSize = 4
)

// Dependency is a reference to another module by function, index and version
type Dependency struct {
	Function FunctionType
	Index    uint8
	Version  uint16
}

// Declared reports whether the dependency slot is in use
func (d Dependency) Declared() bool {
	return d.Function != FunctionNone
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s:%d@%d", d.Function, d.Index, d.Version)
}

// PrefixInfo is the decoded module info header
type PrefixInfo struct {
	StartAddress uint32
	EndAddress   uint32
	Flags        Flags
	Version      uint16
	PlatformID   uint16
	Function     FunctionType
	Index        uint8
	Dep          Dependency
	Dep2         Dependency
}

// StartAddy returns the start address in the hex form used in listings
func (p PrefixInfo) StartAddy() string {
	return fmt.Sprintf("0x%x", p.StartAddress)
}

// Satisfies reports whether a module with this prefix is the one dep refers to
func (p PrefixInfo) Satisfies(dep Dependency) bool {
	return dep.Declared() && p.Function == dep.Function && p.Index == dep.Index && p.Version == dep.Version
}

// Dependencies returns the declared dependency slots in order
func (p PrefixInfo) Dependencies() (deps []Dependency) {
	for _, d := range []Dependency{p.Dep, p.Dep2} {
		if d.Declared() {
			deps = append(deps, d)
		}
	}
	return
}

// SuffixInfo is the decoded trailer
type SuffixInfo struct {
	ProductID      uint16
	ProductVersion uint16
	SHA256         [sha256.Size]byte
	SuffixSize     uint16
	AssetName      string
	CRC            uint32
}

// Descriptor is one parsed firmware module
type Descriptor struct {
	Filename string
	Data     []byte
	Prefix   PrefixInfo
	Suffix   SuffixInfo
	CRCValid bool
}

// Name is the display name: the base of the filename
func (d *Descriptor) Name() string {
	return filepath.Base(d.Filename)
}

// Payload returns the bytes between the prefix and the suffix.  For asset
// modules this is the asset itself.
func (d *Descriptor) Payload() []byte {
	end := len(d.Data) - CRCSize - int(d.Suffix.SuffixSize)
	if end < PrefixSize {
		return nil
	}
	return d.Data[PrefixSize:end]
}

// FlashData returns the bytes to be written to the device, which omit the
// prefix when the module asks for it to be dropped
func (d *Descriptor) FlashData() []byte {
	if d.Prefix.Flags.Has(FlagDropModuleInfo) {
		return d.Data[PrefixSize:]
	}
	return d.Data
}

// PayloadHash returns the SHA-256 of the payload
func (d *Descriptor) PayloadHash() [sha256.Size]byte {
	return sha256.Sum256(d.Payload())
}

// ParseFile reads and parses a module from disk
func ParseFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes a module binary.  A CRC mismatch is not an error here; it is
// reported through CRCValid so that callers can decide what to do with it.
func Parse(filename string, data []byte) (d *Descriptor, err error) {
	if len(data) < PrefixSize+SuffixFixedSize+CRCSize {
		return nil, fmt.Errorf("%s: module is too short (%d bytes)", filepath.Base(filename), len(data))
	}

	d = &Descriptor{
		Filename: filename,
		Data:     data,
		Prefix:   parsePrefix(data[:PrefixSize]),
	}

	crcOffset := len(data) - CRCSize
	d.Suffix.CRC = binary.BigEndian.Uint32(data[crcOffset:])
	d.CRCValid = crc32.ChecksumIEEE(data[:crcOffset]) == d.Suffix.CRC

	suffixSize := int(binary.LittleEndian.Uint16(data[crcOffset-2:]))
	if suffixSize < SuffixFixedSize || crcOffset-suffixSize < PrefixSize {
		return nil, fmt.Errorf("%s: invalid suffix size %d", d.Name(), suffixSize)
	}
	d.Suffix.SuffixSize = uint16(suffixSize)

	fixed := data[crcOffset-SuffixFixedSize : crcOffset]
	d.Suffix.ProductID = binary.LittleEndian.Uint16(fixed[0:])
	d.Suffix.ProductVersion = binary.LittleEndian.Uint16(fixed[2:])
	copy(d.Suffix.SHA256[:], fixed[6:6+sha256.Size])

	// Extensions sit between the start of the suffix and its fixed part
	ext := data[crcOffset-suffixSize : crcOffset-SuffixFixedSize]
	if len(ext) > 0 {
		if len(ext) < 2 {
			return nil, fmt.Errorf("%s: truncated suffix extension", d.Name())
		}
		nameLen := int(binary.LittleEndian.Uint16(ext[len(ext)-2:]))
		if nameLen != len(ext)-2 {
			return nil, fmt.Errorf("%s: invalid asset name length %d", d.Name(), nameLen)
		}
		d.Suffix.AssetName = string(ext[:nameLen])
	}

	// Done
	return d, nil
}

func parsePrefix(b []byte) PrefixInfo {
	le := binary.LittleEndian
	return PrefixInfo{
		StartAddress: le.Uint32(b[0:]),
		EndAddress:   le.Uint32(b[4:]),
		Flags:        Flags(b[9]),
		Version:      le.Uint16(b[10:]),
		PlatformID:   le.Uint16(b[12:]),
		Function:     FunctionType(b[14]),
		Index:        b[15],
		Dep: Dependency{
			Function: FunctionType(b[16]),
			Index:    b[17],
			Version:  le.Uint16(b[18:]),
		},
		Dep2: Dependency{
			Function: FunctionType(b[20]),
			Index:    b[21],
			Version:  le.Uint16(b[22:]),
		},
	}
}

// Build describes a module to be encoded
type Build struct {
	Prefix         PrefixInfo
	Payload        []byte
	AssetName      string
	ProductID      uint16
	ProductVersion uint16
}

// Encode produces a module binary, filling in the end address when it was
// left zero, the payload hash and the CRC
func Encode(b Build) []byte {
	var ext []byte
	if b.AssetName != "" {
		ext = append([]byte(b.AssetName), 0, 0)
		binary.LittleEndian.PutUint16(ext[len(ext)-2:], uint16(len(b.AssetName)))
	}
	suffixSize := len(ext) + SuffixFixedSize
	total := PrefixSize + len(b.Payload) + suffixSize + CRCSize

	p := b.Prefix
	if p.EndAddress == 0 {
		p.EndAddress = p.StartAddress + uint32(total-CRCSize)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	buf.Write(encodePrefix(p))
	buf.Write(b.Payload)
	buf.Write(ext)

	fixed := make([]byte, SuffixFixedSize)
	le := binary.LittleEndian
	le.PutUint16(fixed[0:], b.ProductID)
	le.PutUint16(fixed[2:], b.ProductVersion)
	sum := sha256.Sum256(b.Payload)
	copy(fixed[6:], sum[:])
	le.PutUint16(fixed[SuffixFixedSize-2:], uint16(suffixSize))
	buf.Write(fixed)

	crc := make([]byte, CRCSize)
	binary.BigEndian.PutUint32(crc, crc32.ChecksumIEEE(buf.Bytes()))
	buf.Write(crc)
	return buf.Bytes()
}

func encodePrefix(p PrefixInfo) []byte {
	b := make([]byte, PrefixSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], p.StartAddress)
	le.PutUint32(b[4:], p.EndAddress)
	b[9] = byte(p.Flags)
	le.PutUint16(b[10:], p.Version)
	le.PutUint16(b[12:], p.PlatformID)
	b[14] = byte(p.Function)
	b[15] = p.Index
	b[16] = byte(p.Dep.Function)
	b[17] = p.Dep.Index
	le.PutUint16(b[18:], p.Dep.Version)
	b[20] = byte(p.Dep2.Function)
	b[21] = p.Dep2.Index
	le.PutUint16(b[22:], p.Dep2.Version)
	return b
}
