// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

//go:generate mockgen -source=device.go -destination=mock_device_test.go -package=flash

import (
	"context"
	"errors"
	"time"
)

// ErrNotSupported is returned by a device that doesn't implement a request
var ErrNotSupported = errors.New("not supported")

// ErrDeviceProtection is returned when a protected device refuses a request
var ErrDeviceProtection = errors.New("refused by device protection")

// ProgressFunc receives the Erased and Downloaded events of a transfer
type ProgressFunc func(ev Event)

// UpdateOptions control a normal-mode firmware update
type UpdateOptions struct {
	Progress ProgressFunc
	Timeout  time.Duration
}

// DfuOptions control a DFU write
type DfuOptions struct {
	AltSetting int
	StartAddr  uint32
	Progress   ProgressFunc
}

// Asset is one entry of the device's asset manifest
type Asset struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size int    `json:"size"`
}

// AssetInfo is the asset manifest reported by the device
type AssetInfo struct {
	Available []Asset `json:"available"`
	Required  []Asset `json:"required,omitempty"`
}

// ProtectionState is the device protection configuration
type ProtectionState struct {
	Protected  bool `json:"protected"`
	Overridden bool `json:"overridden"`
}

// Device is a connection to one physical device.  The handle stays valid
// across close and open, which is how mode switches are followed.
type Device interface {
	ID() string
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool
	IsInDfuMode() bool
	PlatformID() int
	FirmwareVersion() string
	Reset(ctx context.Context) error
	EnterDfuMode(ctx context.Context) error
	EnterListeningMode(ctx context.Context) error
	DisconnectFromCloud(ctx context.Context, force bool) error
	UpdateFirmware(ctx context.Context, data []byte, opts UpdateOptions) error
	WriteOverDfu(ctx context.Context, data []byte, opts DfuOptions) error
	GetAssetInfo(ctx context.Context) (AssetInfo, error)
	GetProtectionState(ctx context.Context) (ProtectionState, error)
}
