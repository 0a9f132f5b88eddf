// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Package flash plans and performs the flashing of firmware modules onto a
// device, switching the device between normal and DFU mode as each step
// requires.
package flash

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"
)

// Config holds the settings of a Flasher
type Config struct {
	Progress      ProgressSink
	Retry         RetryPolicy
	ReopenTimeout time.Duration
	PollInterval  time.Duration
	SettleDelay   time.Duration
}

// Option configures a Flasher
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Progress:      nopSink{},
		Retry:         DefaultRetryPolicy(),
		ReopenTimeout: ReopenTimeout,
		PollInterval:  ReopenPollInterval,
		SettleDelay:   SettleDelay,
	}
}

// WithProgress sets where progress events go
func WithProgress(sink ProgressSink) Option {
	return func(c *Config) {
		if sink != nil {
			c.Progress = sink
		}
	}
}

// WithRetryPolicy replaces the normal-mode retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Config) {
		c.Retry = p
	}
}

// WithReopenTimeout bounds the wait for the device after a mode switch
func WithReopenTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ReopenTimeout = d
	}
}

// WithPollInterval sets the pause between reopen attempts
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// WithSettleDelay sets the pause after entering listening mode
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		c.SettleDelay = d
	}
}

// Flasher executes flash plans
type Flasher struct {
	config Config
	modes  *ModeController
}

// New returns a Flasher
func New(opts ...Option) *Flasher {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Flasher{
		config: config,
		modes: &ModeController{
			ReopenTimeout: config.ReopenTimeout,
			PollInterval:  config.PollInterval,
			SettleDelay:   config.SettleDelay,
		},
	}
}

// FlashFiles performs the steps in order.  Whatever happens, a Finish event
// is emitted and the device is left closed.  It is reset first only when
// resetAfterFlash is set and the last step went over DFU, and a failed reset
// is ignored.
func (f *Flasher) FlashFiles(ctx context.Context, dev Device, steps Plan, resetAfterFlash bool) (err error) {
	sink := f.config.Progress
	cache := &ManifestCache{}
	success := false
	lastStepDfu := false

	defer func() {
		sink.Progress(Finish{Success: success})

		// Clean up even when the flash was cancelled
		cleanupCtx := context.WithoutCancel(ctx)
		if !dev.IsOpen() {
			return
		}
		if resetAfterFlash && lastStepDfu {
			if rerr := dev.Reset(cleanupCtx); rerr != nil {
				glog.Warningf("can't reset %s: %s", dev.ID(), rerr)
			}
		}
		if cerr := dev.Close(); cerr != nil {
			glog.Warningf("can't close %s: %s", dev.ID(), cerr)
		}
	}()

	for _, step := range steps {
		if err = ctx.Err(); err != nil {
			return
		}
		if err = f.modes.PrepareDeviceForFlash(ctx, dev, step.Mode, sink); err != nil {
			return
		}

		counter := newStepCounter(step, sink)
		switch step.Mode {
		case ModeNormal:
			if err = f.flashNormal(ctx, dev, step, cache, counter); err != nil {
				return
			}
			lastStepDfu = false
		case ModeDfu:
			if err = f.flashDfu(ctx, dev, step, counter); err != nil {
				return
			}
			lastStepDfu = true
		}
	}

	success = true
	return nil
}

// flashNormal transfers a step with control requests, retrying until the
// retry budget is spent since USB connections drop during long updates
func (f *Flasher) flashNormal(ctx context.Context, dev Device, step *Step, cache *ManifestCache, counter *stepCounter) error {
	counter.progress(FlashFile{Filename: step.Name})

	policy := f.config.Retry
	err := policy.run(ctx, "flashing "+step.Name, func() error {
		if err := f.modes.reopen(ctx, dev); err != nil {
			return err
		}
		if step.Skip != nil && step.Skip.Check(ctx, dev, cache) {
			counter.progress(SkipFile{Filename: step.Name, Bytes: len(step.Data)})
			return nil
		}
		f.modes.prepareForTransfer(ctx, dev)
		return dev.UpdateFirmware(ctx, step.Data, UpdateOptions{
			Progress: counter.progress,
			Timeout:  policy.Timeout,
		})
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDeviceProtection):
		return &TransferError{Msg: MsgDeviceProtection, Err: err}
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return &TransferError{Msg: MsgUnableToFlash, Err: err}
}

// flashDfu writes a step once.  A DFU write that fails once the device is in
// DFU mode points at a real problem, so it is not retried.
func (f *Flasher) flashDfu(ctx context.Context, dev Device, step *Step, counter *stepCounter) error {
	if !dev.IsInDfuMode() {
		counter.progress(SwitchMode{Mode: ModeDfu})
		if err := f.modes.reopenInDfuMode(ctx, dev); err != nil {
			return err
		}
	}

	counter.progress(FlashFile{Filename: step.Name})

	// Internal flash is always alt setting 0
	err := dev.WriteOverDfu(ctx, step.Data, DfuOptions{
		AltSetting: 0,
		StartAddr:  step.Address,
		Progress:   counter.progress,
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDeviceProtection) {
		return &TransferError{Msg: MsgDeviceProtection, Err: err}
	}
	return &TransferError{Msg: MsgWritingOverDfuFailed, Err: err}
}
