// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlashAll(t *testing.T) {
	first := newFakeDevice(p2, "5.8.0", false)
	second := newFakeDevice(p2, "", true)
	second.id = "0a10aced202194944a042f04"
	firstEvents, secondEvents := &eventLog{}, &eventLog{}

	err := FlashAll(context.Background(), []Job{
		{Device: first, Steps: planFor(t, deviceOSModules(t, p2), p2, false), ResetAfterFlash: true, Flasher: fastFlasher(firstEvents)},
		{Device: second, Steps: planFor(t, deviceOSModules(t, p2), p2, true), Flasher: fastFlasher(secondEvents)},
	})
	require.NoError(t, err)
	require.Equal(t, Finish{Success: true}, lastEvent(t, firstEvents))
	require.Equal(t, Finish{Success: true}, lastEvent(t, secondEvents))
	require.False(t, first.IsOpen())
	require.False(t, second.IsOpen())
}

func TestFlashAllDuplicateDevice(t *testing.T) {
	dev := newFakeDevice(p2, "5.8.0", false)
	steps := planFor(t, deviceOSModules(t, p2), p2, false)

	err := FlashAll(context.Background(), []Job{{Device: dev, Steps: steps}, {Device: dev, Steps: steps}})
	require.EqualError(t, err, "device e00fce68aabbccddeeff0011 is listed more than once")
	require.Empty(t, dev.log())
}

func TestFlashAllFailure(t *testing.T) {
	good := newFakeDevice(p2, "5.8.0", false)
	bad := newFakeDevice(p2, "", true)
	bad.id = "0a10aced202194944a042f04"
	bad.dfuErr = errors.New("LIBUSB_ERROR_PIPE")
	goodEvents, badEvents := &eventLog{}, &eventLog{}
	goodSteps := planFor(t, deviceOSModules(t, p2), p2, false)

	err := FlashAll(context.Background(), []Job{
		{Device: good, Steps: goodSteps, Flasher: fastFlasher(goodEvents)},
		{Device: bad, Steps: planFor(t, deviceOSModules(t, p2), p2, true), Flasher: fastFlasher(badEvents)},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "0a10aced202194944a042f04: "+MsgWritingOverDfuFailed)

	var terr *TransferError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, Finish{Success: false}, lastEvent(t, badEvents))
	require.False(t, bad.IsOpen())

	// The other device runs its whole plan
	require.Equal(t, Finish{Success: true}, lastEvent(t, goodEvents))
	var written []string
	for _, ev := range goodEvents.all() {
		if f, ok := ev.(FlashFile); ok {
			written = append(written, f.Filename)
		}
	}
	require.Equal(t, goodSteps.Names(), written)
	require.False(t, good.IsOpen())
}
