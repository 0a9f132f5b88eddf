// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
)

const (
	// ReopenTimeout bounds the wait for a device to come back after a mode switch
	ReopenTimeout = 60 * time.Second
	// ReopenPollInterval is the pause between attempts to reopen the device
	ReopenPollInterval = 500 * time.Millisecond
	// SettleDelay lets the device settle after entering listening mode
	SettleDelay = time.Second
)

var errWrongMode = errors.New("device came back in the wrong mode")

// ModeController moves a device between normal and DFU mode
type ModeController struct {
	ReopenTimeout time.Duration
	PollInterval  time.Duration
	SettleDelay   time.Duration
}

// NewModeController returns a controller with the default timings
func NewModeController() *ModeController {
	return &ModeController{
		ReopenTimeout: ReopenTimeout,
		PollInterval:  ReopenPollInterval,
		SettleDelay:   SettleDelay,
	}
}

// PrepareDeviceForFlash opens the device if needed and switches it to mode,
// emitting SwitchMode first when a switch is needed.  Asking for the mode the
// device is already in only reopens it.
func (c *ModeController) PrepareDeviceForFlash(ctx context.Context, dev Device, mode Mode, sink ProgressSink) (err error) {
	if sink == nil {
		sink = nopSink{}
	}

	if err = c.reopen(ctx, dev); err != nil {
		return
	}

	switch mode {
	case ModeNormal:
		if dev.IsInDfuMode() {
			sink.Progress(SwitchMode{Mode: ModeNormal})
			if err = c.reopenInNormalMode(ctx, dev); err != nil {
				return
			}
			c.enterListeningMode(ctx, dev)
		}
	case ModeDfu:
		if !dev.IsInDfuMode() {
			sink.Progress(SwitchMode{Mode: ModeDfu})
			err = c.reopenInDfuMode(ctx, dev)
		}
	}

	return
}

func (c *ModeController) reopen(ctx context.Context, dev Device) error {
	if dev.IsOpen() {
		return nil
	}
	return dev.Open(ctx)
}

// reopenInDfuMode asks the device to enter DFU mode and waits for it
func (c *ModeController) reopenInDfuMode(ctx context.Context, dev Device) error {
	c.disconnectFromCloud(ctx, dev)
	if err := dev.EnterDfuMode(ctx); err != nil {
		return err
	}
	if err := dev.Close(); err != nil {
		return err
	}
	return c.waitForMode(ctx, dev, true)
}

// reopenInNormalMode resets the device out of DFU mode and waits for it
func (c *ModeController) reopenInNormalMode(ctx context.Context, dev Device) error {
	if dev.IsOpen() {
		if err := dev.Reset(ctx); err != nil {
			return err
		}
	}
	if err := dev.Close(); err != nil {
		return err
	}
	return c.waitForMode(ctx, dev, false)
}

// waitForMode polls until the device opens in the wanted mode
func (c *ModeController) waitForMode(ctx context.Context, dev Device, dfu bool) error {
	attempt := func() error {
		if err := dev.Open(ctx); err != nil {
			return err
		}
		if dev.IsInDfuMode() != dfu {
			if err := dev.Close(); err != nil {
				glog.V(2).Infof("can't close %s: %s", dev.ID(), err)
			}
			return errWrongMode
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		glog.V(2).Infof("waiting for %s: %s", dev.ID(), err)
	}

	b := backoff.WithContext(constantBackOff(c.PollInterval, c.reopenTimeout()), ctx)
	if err := backoff.RetryNotify(attempt, b, notify); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransferError{Msg: MsgUnableToReconnect, Err: err}
	}
	return nil
}

func (c *ModeController) reopenTimeout() time.Duration {
	if c.ReopenTimeout <= 0 {
		return ReopenTimeout
	}
	return c.ReopenTimeout
}

// prepareForTransfer takes the device off the cloud before a normal-mode
// update.  Device OS 2.0.0 and later have an explicit request for it, older
// versions get there by entering listening mode.
func (c *ModeController) prepareForTransfer(ctx context.Context, dev Device) {
	if deviceOSAtLeast(dev.FirmwareVersion(), "2.0.0") {
		c.disconnectFromCloud(ctx, dev)
		return
	}
	c.enterListeningMode(ctx, dev)
}

func (c *ModeController) disconnectFromCloud(ctx context.Context, dev Device) {
	if !deviceOSAtLeast(dev.FirmwareVersion(), "2.0.0") {
		return
	}
	if err := dev.DisconnectFromCloud(ctx, true); err != nil {
		glog.Warningf("can't disconnect %s from the cloud: %s", dev.ID(), err)
	}
}

// enterListeningMode is best effort: some Device OS versions neither need
// nor support it
func (c *ModeController) enterListeningMode(ctx context.Context, dev Device) {
	if err := dev.EnterListeningMode(ctx); err != nil {
		glog.V(1).Infof("%s did not enter listening mode: %s", dev.ID(), err)
		return
	}
	sleep(ctx, c.SettleDelay)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
