// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Package dummy is a simulated device that keeps its state and memory images
// in a directory, so that flashing can be exercised without hardware.
package dummy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/module"
	"github.com/gofrs/flock"
	"github.com/golang/glog"
	"github.com/spf13/afero"
	"golang.org/x/mod/semver"
)

const (
	statePath = "state.json"
	lockPath  = ".lock"
	imagesDir = "images"

	// BlockSize is the granularity of Downloaded reports
	BlockSize = 4096
	// SectorSize is the granularity of Erased reports, which round up
	SectorSize = 16384
)

// ErrNeedsInit means the directory holds no device yet
var ErrNeedsInit = errors.New("no device state, run device init first")

// ErrTransient is what an injected update failure looks like
var ErrTransient = errors.New("LIBUSB_ERROR_NO_DEVICE")

var errClosed = errors.New("device is not open")

// Image is a region of device memory that has been written
type Image struct {
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	Address  uint32 `json:"address"`
	Size     int    `json:"size"`
	SHA256   string `json:"sha256"`
	Function string `json:"function,omitempty"`
	Index    uint8  `json:"index,omitempty"`
	Version  uint16 `json:"version,omitempty"`
}

// State is everything the simulated device remembers between runs
type State struct {
	ID         string `json:"id"`
	PlatformID int    `json:"platform_id"`
	Version    string `json:"version"`
	DFU        bool   `json:"dfu"`
	Connected  bool   `json:"connected"`
	Listening  bool   `json:"listening"`

	Protection             flash.ProtectionState `json:"protection"`
	ProtectionNotSupported bool                  `json:"protection_not_supported,omitempty"`

	// FailNextUpdates makes that many normal-mode updates fail with ErrTransient
	FailNextUpdates int `json:"fail_next_updates,omitempty"`

	Assets []flash.Asset `json:"assets,omitempty"`
	Images []Image       `json:"images,omitempty"`
}

// Device implements flash.Device on top of a directory
type Device struct {
	mu    sync.Mutex
	fs    afero.Fs
	dir   string
	state State
	open  bool
	lock  *flock.Flock
}

var _ flash.Device = (*Device)(nil)

// Option configures a Device
type Option func(*Device)

// WithFs stores the device somewhere other than the OS filesystem
func WithFs(fs afero.Fs) Option {
	return func(d *Device) {
		d.fs = fs
	}
}

func newDevice(dir string, opts []Option) *Device {
	d := &Device{fs: afero.NewOsFs(), dir: dir}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init creates a device in dir, replacing any previous one.  An empty ID is
// derived from the directory.
func Init(dir string, s State, opts ...Option) (*Device, error) {
	d := newDevice(dir, opts)
	if s.ID == "" {
		sum := sha256.Sum256([]byte(filepath.Clean(dir)))
		s.ID = hex.EncodeToString(sum[:12])
	}
	if !s.DFU {
		s.Connected = true
	}
	if err := d.fs.RemoveAll(filepath.Join(dir, imagesDir)); err != nil {
		return nil, err
	}
	if err := d.fs.MkdirAll(filepath.Join(dir, imagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("can't create device directory: %w", err)
	}
	d.state = s
	if err := d.save(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load returns the device previously created in dir.  It is not opened.
func Load(dir string, opts ...Option) (*Device, error) {
	d := newDevice(dir, opts)
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) load() error {
	path := filepath.Join(d.dir, statePath)
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", d.dir, ErrNeedsInit)
		}
		return fmt.Errorf("failed to read device state %q: %w", path, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse device state %q: %w", path, err)
	}
	d.state = s
	return nil
}

func (d *Device) save() error {
	data, err := json.MarshalIndent(d.state, "", "    ")
	if err != nil {
		return err
	}
	path := filepath.Join(d.dir, statePath)
	if err := afero.WriteFile(d.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write device state %q: %w", path, err)
	}
	return nil
}

// State returns a copy of the device state
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	s.Assets = append([]flash.Asset(nil), d.state.Assets...)
	s.Images = append([]Image(nil), d.state.Images...)
	return s
}

// Image returns the contents of a stored image
func (d *Device) Image(img Image) ([]byte, error) {
	return afero.ReadFile(d.fs, d.imagePath(img))
}

func (d *Device) imagePath(img Image) string {
	if img.isAsset() {
		return filepath.Join(d.dir, imagesDir, "asset-"+filepath.Base(img.Name))
	}
	return filepath.Join(d.dir, imagesDir, fmt.Sprintf("%s-0x%08x.bin", strings.ToLower(img.Mode), img.Address))
}

// ID implements flash.Device
func (d *Device) ID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.ID
}

// Open reloads the state from disk, as a real device is rediscovered after
// it reconnects.  On the OS filesystem the directory is locked while open.
func (d *Device) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil
	}
	if _, ok := d.fs.(*afero.OsFs); ok {
		lock := flock.New(filepath.Join(d.dir, lockPath))
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("can't lock device %s: %w", d.dir, err)
		}
		if !locked {
			return fmt.Errorf("device %s is in use", d.dir)
		}
		d.lock = lock
	}
	if err := d.load(); err != nil {
		d.unlock()
		return err
	}
	d.open = true
	return nil
}

// Close implements flash.Device
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil
	}
	d.open = false
	err := d.save()
	d.unlock()
	return err
}

func (d *Device) unlock() {
	if d.lock == nil {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		glog.Warningf("can't unlock %s: %s", d.dir, err)
	}
	d.lock = nil
}

// IsOpen implements flash.Device
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// IsInDfuMode implements flash.Device
func (d *Device) IsInDfuMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.DFU
}

// PlatformID implements flash.Device
func (d *Device) PlatformID() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.PlatformID
}

// FirmwareVersion is unknown in DFU mode
func (d *Device) FirmwareVersion() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.DFU {
		return ""
	}
	return d.state.Version
}

// modify runs fn on the open device and persists the result
func (d *Device) modify(fn func(s *State) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return errClosed
	}
	if err := fn(&d.state); err != nil {
		return err
	}
	return d.save()
}

// Reset implements flash.Device
func (d *Device) Reset(ctx context.Context) error {
	return d.modify(func(s *State) error {
		s.DFU = false
		s.Listening = false
		s.Connected = true
		return nil
	})
}

// EnterDfuMode implements flash.Device
func (d *Device) EnterDfuMode(ctx context.Context) error {
	return d.modify(func(s *State) error {
		s.DFU = true
		s.Listening = false
		s.Connected = false
		return nil
	})
}

// EnterListeningMode implements flash.Device
func (d *Device) EnterListeningMode(ctx context.Context) error {
	return d.modify(func(s *State) error {
		if s.DFU {
			return flash.ErrNotSupported
		}
		s.Listening = true
		s.Connected = false
		return nil
	})
}

// DisconnectFromCloud needs Device OS 2.0.0 or later
func (d *Device) DisconnectFromCloud(ctx context.Context, force bool) error {
	return d.modify(func(s *State) error {
		if s.DFU || !semver.IsValid("v"+s.Version) || semver.Compare("v"+s.Version, "v2.0.0") < 0 {
			return flash.ErrNotSupported
		}
		s.Connected = false
		return nil
	})
}

// UpdateFirmware accepts a complete module and stores it at the address its
// prefix names.  Assets go into the asset manifest.
func (d *Device) UpdateFirmware(ctx context.Context, data []byte, opts flash.UpdateOptions) error {
	var mod *module.Descriptor
	err := d.modify(func(s *State) error {
		if s.DFU {
			return errors.New("device is in DFU mode")
		}
		if s.FailNextUpdates > 0 {
			s.FailNextUpdates--
			return ErrTransient
		}
		m, err := module.Parse("update.bin", data)
		if err != nil {
			return fmt.Errorf("invalid module: %w", err)
		}
		if m.Prefix.PlatformID != 0 && int(m.Prefix.PlatformID) != s.PlatformID && m.Prefix.Function != module.FunctionAsset {
			return fmt.Errorf("module is for platform %d", m.Prefix.PlatformID)
		}
		mod = m
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTransient) {
			glog.V(1).Infof("%s: injected update failure", d.ID())
		}
		return err
	}

	if err := transfer(ctx, len(data), opts.Progress); err != nil {
		return err
	}

	return d.modify(func(s *State) error {
		img := Image{
			Name:     mod.Name(),
			Mode:     flash.ModeNormal.String(),
			Address:  mod.Prefix.StartAddress,
			Size:     len(data),
			SHA256:   hash(data),
			Function: mod.Prefix.Function.String(),
			Index:    mod.Prefix.Index,
			Version:  mod.Prefix.Version,
		}
		if mod.Prefix.Function == module.FunctionAsset {
			sum := mod.PayloadHash()
			s.Assets = addAsset(s.Assets, flash.Asset{
				Name: mod.Suffix.AssetName,
				Hash: hex.EncodeToString(sum[:]),
				Size: len(mod.Payload()),
			})
			img.Name = mod.Suffix.AssetName
		}
		return d.store(s, img, data)
	})
}

// WriteOverDfu implements flash.Device.  Protected devices refuse DFU
// writes unless protection is overridden.
func (d *Device) WriteOverDfu(ctx context.Context, data []byte, opts flash.DfuOptions) error {
	err := d.modify(func(s *State) error {
		if !s.DFU {
			return errors.New("device is not in DFU mode")
		}
		if opts.AltSetting != 0 {
			return fmt.Errorf("alt setting %d: %w", opts.AltSetting, flash.ErrNotSupported)
		}
		if s.Protection.Protected && !s.Protection.Overridden {
			return flash.ErrDeviceProtection
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := transfer(ctx, len(data), opts.Progress); err != nil {
		return err
	}

	return d.modify(func(s *State) error {
		return d.store(s, Image{
			Name:    fmt.Sprintf("0x%08x", opts.StartAddr),
			Mode:    flash.ModeDfu.String(),
			Address: opts.StartAddr,
			Size:    len(data),
			SHA256:  hash(data),
		}, data)
	})
}

// store writes an image and records it.  It replaces the image at the same
// address, or for assets the asset of the same name.
func (d *Device) store(s *State, img Image, data []byte) error {
	if err := afero.WriteFile(d.fs, d.imagePath(img), data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	var images []Image
	for _, existing := range s.Images {
		if existing.isAsset() != img.isAsset() {
			images = append(images, existing)
		} else if img.isAsset() && existing.Name != img.Name {
			images = append(images, existing)
		} else if !img.isAsset() && (existing.Address != img.Address || existing.Mode != img.Mode) {
			images = append(images, existing)
		}
	}
	s.Images = append(images, img)
	sort.SliceStable(s.Images, func(i, j int) bool { return s.Images[i].Address < s.Images[j].Address })
	return nil
}

func (img Image) isAsset() bool {
	return img.Function == module.FunctionAsset.String()
}

func addAsset(assets []flash.Asset, a flash.Asset) []flash.Asset {
	for i := range assets {
		if assets[i].Name == a.Name {
			assets[i] = a
			return assets
		}
	}
	return append(assets, a)
}

// GetAssetInfo implements flash.Device
func (d *Device) GetAssetInfo(ctx context.Context) (flash.AssetInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return flash.AssetInfo{}, errClosed
	}
	if d.state.DFU {
		return flash.AssetInfo{}, errors.New("device is in DFU mode")
	}
	return flash.AssetInfo{Available: append([]flash.Asset(nil), d.state.Assets...)}, nil
}

// GetProtectionState implements flash.Device
func (d *Device) GetProtectionState(ctx context.Context) (flash.ProtectionState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.ProtectionNotSupported {
		return flash.ProtectionState{}, flash.ErrNotSupported
	}
	return d.state.Protection, nil
}

// transfer reports the progress of moving n bytes.  Erases cover whole
// sectors so their total can exceed n.
func transfer(ctx context.Context, n int, progress flash.ProgressFunc) error {
	if progress == nil {
		progress = func(flash.Event) {}
	}
	for erased := 0; erased < n; erased += SectorSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		progress(flash.Erased{Bytes: SectorSize})
	}
	for sent := 0; sent < n; sent += BlockSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		progress(flash.Downloaded{Bytes: min(BlockSize, n-sent)})
	}
	return nil
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
