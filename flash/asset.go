// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/fwflash-cli/module"
	"github.com/golang/glog"
)

// AssetSkip decides whether an asset is already on the device
type AssetSkip struct {
	Name string
	Hash [sha256.Size]byte
}

// NewAssetSkip hashes the unwrapped payload of an asset module
func NewAssetSkip(d *module.Descriptor) *AssetSkip {
	return &AssetSkip{
		Name: d.Name(),
		Hash: d.PayloadHash(),
	}
}

// HashHex is the hash in the form the device reports it
func (s *AssetSkip) HashHex() string {
	return hex.EncodeToString(s.Hash[:])
}

// Matches reports whether any manifest entry carries the asset's hash
func (s *AssetSkip) Matches(available []Asset) bool {
	want := s.HashHex()
	for _, a := range available {
		if strings.EqualFold(a.Hash, want) {
			return true
		}
	}
	return false
}

// Check reports whether the asset can be skipped, reading the manifest
// through the cache of the current flash operation
func (s *AssetSkip) Check(ctx context.Context, dev Device, cache *ManifestCache) bool {
	return s.Matches(cache.Available(ctx, dev))
}

// ManifestCache fetches the device asset manifest at most once.  Each flash
// operation creates its own.
type ManifestCache struct {
	once      sync.Once
	available []Asset
}

// Available returns the assets on the device.  A failed fetch counts as no
// assets.
func (c *ManifestCache) Available(ctx context.Context, dev Device) []Asset {
	c.once.Do(func() {
		info, err := dev.GetAssetInfo(ctx)
		if err != nil {
			glog.Warningf("can't read asset manifest from %s: %s", dev.ID(), err)
			return
		}
		c.available = info.Available
	})
	return c.available
}
