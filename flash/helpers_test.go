// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fwflash-cli/module"
	"github.com/stretchr/testify/require"
)

const asset1Hash = "8e3dd2ea9ff3da70862a52621f7c1dc81c2b184cb886a324a3f430ec11efd3f2"

func newModule(t *testing.T, name string, p module.PrefixInfo, payload []byte) *module.Descriptor {
	t.Helper()
	d, err := module.Parse(name, module.Encode(module.Build{Prefix: p, Payload: payload}))
	require.NoError(t, err)
	return d
}

func newAsset(t *testing.T, name string, content string) *module.Descriptor {
	t.Helper()
	data := module.Encode(module.Build{
		Prefix:    module.PrefixInfo{Function: module.FunctionAsset},
		Payload:   []byte(content),
		AssetName: content + ".txt",
	})
	d, err := module.Parse(name, data)
	require.NoError(t, err)
	return d
}

func dep(f module.FunctionType, index uint8, version uint16) module.Dependency {
	return module.Dependency{Function: f, Index: index, Version: version}
}

// deviceOSModules is a full Device OS plus application for a platform
func deviceOSModules(t *testing.T, platformID uint16) []*module.Descriptor {
	return []*module.Descriptor{
		newModule(t, "preBootloader.bin", module.PrefixInfo{
			Function: module.FunctionBootloader, Index: 0, Version: 1200, PlatformID: platformID,
			StartAddress: 0x8000000,
		}, []byte("pre-bootloader")),
		newModule(t, "bootloader.bin", module.PrefixInfo{
			Function: module.FunctionBootloader, Index: 1, Version: 1210, PlatformID: platformID,
			StartAddress: 0x8004000, Dep: dep(module.FunctionBootloader, 0, 1200),
		}, []byte("bootloader")),
		newModule(t, "systemPart1.bin", module.PrefixInfo{
			Function: module.FunctionSystemPart, Index: 1, Version: 4100, PlatformID: platformID,
			StartAddress: 0x8020000, Dep: dep(module.FunctionBootloader, 1, 1210),
		}, []byte("system part 1")),
		newModule(t, "systemPart2.bin", module.PrefixInfo{
			Function: module.FunctionSystemPart, Index: 2, Version: 4100, PlatformID: platformID,
			StartAddress: 0x8060000, Dep: dep(module.FunctionSystemPart, 1, 4100),
		}, []byte("system part 2")),
		newModule(t, "userPart1.bin", module.PrefixInfo{
			Function: module.FunctionUserPart, Index: 1, Version: 6, PlatformID: platformID,
			StartAddress: 0x80A0000, Dep: dep(module.FunctionSystemPart, 2, 4100),
		}, []byte("user part 1")),
	}
}

// eventLog records progress events
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Progress(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// bytes sums the Erased and Downloaded counts
func (l *eventLog) bytes() (erased, downloaded int) {
	for _, ev := range l.all() {
		switch e := ev.(type) {
		case Erased:
			erased += e.Bytes
		case Downloaded:
			downloaded += e.Bytes
		}
	}
	return
}

var errUSB = errors.New("LIBUSB_ERROR_NO_DEVICE")

// fakeDevice simulates a device that follows mode switches
type fakeDevice struct {
	mu sync.Mutex

	id         string
	platformID int
	version    string
	open       bool
	dfu        bool

	protection    ProtectionState
	protectionErr error
	assets        []Asset
	assetErr      error
	assetCalls    int

	// failUpdates makes the next UpdateFirmware calls fail with a USB error
	failUpdates int
	updateErr   error
	dfuErr      error
	resetErr    error
	closeErr    error
	listenErr   error
	// eraseExtra is added to every erase report, as sector erases do
	eraseExtra int
	// cancel is called when UpdateFirmware is reached
	cancel func()
	// stuck devices ignore resets
	stuck bool

	calls []string
}

func newFakeDevice(platformID int, version string, dfu bool) *fakeDevice {
	return &fakeDevice{id: "e00fce68aabbccddeeff0011", platformID: platformID, version: version, dfu: dfu}
}

func (d *fakeDevice) record(format string, args ...interface{}) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDevice) ID() string { return d.id }

func (d *fakeDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("open")
	d.open = true
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("close")
	d.open = false
	return d.closeErr
}

func (d *fakeDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *fakeDevice) IsInDfuMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dfu
}

func (d *fakeDevice) PlatformID() int { return d.platformID }

func (d *fakeDevice) FirmwareVersion() string { return d.version }

func (d *fakeDevice) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("reset")
	if d.resetErr != nil {
		return d.resetErr
	}
	if !d.stuck {
		d.dfu = false
	}
	return nil
}

func (d *fakeDevice) EnterDfuMode(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("enter-dfu")
	d.dfu = true
	return nil
}

func (d *fakeDevice) EnterListeningMode(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("listen")
	return d.listenErr
}

func (d *fakeDevice) DisconnectFromCloud(ctx context.Context, force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("disconnect force=%t", force)
	return nil
}

func (d *fakeDevice) UpdateFirmware(ctx context.Context, data []byte, opts UpdateOptions) error {
	d.mu.Lock()
	d.record("update %d", len(data))
	if !d.open || d.dfu {
		d.mu.Unlock()
		return errors.New("device is not open in normal mode")
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.updateErr != nil {
		d.mu.Unlock()
		return d.updateErr
	}
	if d.failUpdates > 0 {
		d.failUpdates--
		d.mu.Unlock()
		return errUSB
	}
	d.mu.Unlock()
	if opts.Progress != nil {
		opts.Progress(Erased{Bytes: len(data) + d.eraseExtra})
		opts.Progress(Downloaded{Bytes: len(data)})
	}
	return nil
}

func (d *fakeDevice) WriteOverDfu(ctx context.Context, data []byte, opts DfuOptions) error {
	d.mu.Lock()
	d.record("dfu alt=%d addr=0x%x len=%d", opts.AltSetting, opts.StartAddr, len(data))
	if !d.open || !d.dfu {
		d.mu.Unlock()
		return errors.New("device is not open in DFU mode")
	}
	if d.dfuErr != nil {
		d.mu.Unlock()
		return d.dfuErr
	}
	d.mu.Unlock()
	if opts.Progress != nil {
		opts.Progress(Erased{Bytes: len(data) + d.eraseExtra})
		opts.Progress(Downloaded{Bytes: len(data)})
	}
	return nil
}

func (d *fakeDevice) GetAssetInfo(ctx context.Context) (AssetInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.assetCalls++
	if d.assetErr != nil {
		return AssetInfo{}, d.assetErr
	}
	return AssetInfo{Available: d.assets}, nil
}

func (d *fakeDevice) GetProtectionState(ctx context.Context) (ProtectionState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.protection, d.protectionErr
}

// fastFlasher has timings suited to tests
func fastFlasher(sink ProgressSink, opts ...Option) *Flasher {
	base := []Option{
		WithProgress(sink),
		WithRetryPolicy(RetryPolicy{Timeout: 200 * time.Millisecond, Interval: time.Millisecond}),
		WithReopenTimeout(200 * time.Millisecond),
		WithPollInterval(time.Millisecond),
		WithSettleDelay(0),
	}
	return New(append(base, opts...)...)
}
