// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package progress

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/fwflash-cli/flash"
	"github.com/stretchr/testify/require"
)

type fakeBar struct {
	titles  []string
	count   int
	stopped bool
}

func (b *fakeBar) SetTitle(title string) { b.titles = append(b.titles, title) }
func (b *fakeBar) Add(n int)             { b.count += n }
func (b *fakeBar) Stop()                 { b.stopped = true }

func testPlan() flash.Plan {
	return flash.Plan{
		{Name: "bootloader.bin", Data: make([]byte, 100), Mode: flash.ModeNormal},
		{Name: "system.bin", Data: make([]byte, 1000), Mode: flash.ModeDfu, Address: 0x8020000},
		{Name: "asset.bin", Data: make([]byte, 10), Mode: flash.ModeNormal},
	}
}

func TestTotal(t *testing.T) {
	require.Equal(t, 100*2*10+1000*2+10*2*10, Total(testPlan()))
	require.Zero(t, Total(nil))
}

func TestBarReachesTotal(t *testing.T) {
	steps := testPlan()
	b := &fakeBar{}
	r := &Reporter{steps: steps, bar: b}

	for _, ev := range []flash.Event{
		flash.FlashFile{Filename: "bootloader.bin"},
		flash.Erased{Bytes: 100},
		flash.Downloaded{Bytes: 100},
		flash.SwitchMode{Mode: flash.ModeDfu},
		flash.FlashFile{Filename: "system.bin"},
		flash.Erased{Bytes: 1000},
		flash.Downloaded{Bytes: 600},
		flash.Downloaded{Bytes: 400},
		flash.FlashFile{Filename: "asset.bin"},
		flash.SkipFile{Filename: "asset.bin", Bytes: 10},
		flash.Finish{Success: true},
	} {
		r.Progress(ev)
	}

	require.Equal(t, Total(steps), b.count)
	require.True(t, b.stopped)
	require.Equal(t, []string{
		"Flashing bootloader.bin",
		"Switching device to DFU mode",
		"Flashing system.bin",
		"Flashing asset.bin",
		"Skipping asset.bin because it already exists on the device",
		"Flash success!",
	}, b.titles)
}

func TestLog(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	r := NewLog(testPlan(), &out, "")

	r.Progress(flash.FlashFile{Filename: "bootloader.bin"})
	r.Progress(flash.Erased{Bytes: 100})
	r.Progress(flash.SwitchMode{Mode: flash.ModeNormal})
	r.Progress(flash.SkipFile{Filename: "asset.bin", Bytes: 10})
	r.Progress(flash.Finish{Success: false})

	require.Equal(t, "Flashing bootloader.bin\n"+
		"Switching device to normal mode\n"+
		"Skipping asset.bin because it already exists on the device\n"+
		"Flash failed.\n", out.String())
}

func TestLogPrefix(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	r := NewLog(testPlan(), &out, "e00fce68")
	r.Progress(flash.Finish{Success: true})
	require.Equal(t, "e00fce68: Flash success!\n", out.String())
}
