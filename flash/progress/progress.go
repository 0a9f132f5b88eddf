// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Package progress renders flash progress events on a terminal, either as a
// progress bar or as one line per notable event.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/fwflash-cli/flash"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// NormalMultiplier weighs normal-mode bytes against DFU bytes, since control
// request transfers are much slower
const NormalMultiplier = 10

const preparing = "Preparing to flash"

// Total is the length of the progress bar for a plan.  Every byte counts
// twice, once erased and once written.
func Total(steps flash.Plan) int {
	total := 0
	for _, s := range steps {
		total += len(s.Data) * 2 * multiplier(s)
	}
	return total
}

func multiplier(s *flash.Step) int {
	if s != nil && s.Mode == flash.ModeNormal {
		return NormalMultiplier
	}
	return 1
}

// bar is the part of a progress bar the reporter drives
type bar interface {
	SetTitle(title string)
	Add(n int)
	Stop()
}

type ptermBar struct {
	p *pterm.ProgressbarPrinter
}

func (b ptermBar) SetTitle(title string) { b.p.UpdateTitle(title) }
func (b ptermBar) Add(n int)             { b.p.Add(n) }
func (b ptermBar) Stop()                 { b.p.Stop() }

// Reporter is a flash.ProgressSink for humans
type Reporter struct {
	mu     sync.Mutex
	steps  flash.Plan
	bar    bar
	out    io.Writer
	prefix string
	step   *flash.Step
}

// NewBar reports on a pterm progress bar sized for steps
func NewBar(steps flash.Plan) (*Reporter, error) {
	p, err := pterm.DefaultProgressbar.
		WithTotal(Total(steps)).
		WithTitle(preparing).
		WithShowCount(false).
		Start()
	if err != nil {
		return nil, err
	}
	return &Reporter{steps: steps, bar: ptermBar{p}}, nil
}

// NewLog writes a line to w for each file, mode switch and skip, and for the
// outcome.  A non-empty prefix, typically the device ID, starts every line.
func NewLog(steps flash.Plan, w io.Writer, prefix string) *Reporter {
	return &Reporter{steps: steps, out: w, prefix: prefix}
}

// ForTerminal picks a bar when f is a terminal and a log otherwise
func ForTerminal(steps flash.Plan, f *os.File) (*Reporter, error) {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return NewBar(steps)
	}
	return NewLog(steps, f, ""), nil
}

// Progress implements flash.ProgressSink
func (r *Reporter) Progress(ev flash.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := ev.(type) {
	case flash.FlashFile:
		r.step = r.find(e.Filename)
		r.describe(color.New(color.Reset), "Flashing %s", e.Filename)
	case flash.SwitchMode:
		r.describe(color.New(color.FgCyan), "Switching device to %s mode", e.Mode)
	case flash.Erased:
		r.add(e.Bytes)
	case flash.Downloaded:
		r.add(e.Bytes)
	case flash.SkipFile:
		r.describe(color.New(color.FgYellow), "Skipping %s because it already exists on the device", e.Filename)
		// A skipped file stands for both its erase and its write
		r.add(2 * e.Bytes)
	case flash.Finish:
		if e.Success {
			r.describe(color.New(color.FgGreen), "Flash success!")
		} else {
			r.describe(color.New(color.FgRed), "Flash failed.")
		}
		if r.bar != nil {
			r.bar.Stop()
		}
	}
}

func (r *Reporter) find(name string) *flash.Step {
	for _, s := range r.steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (r *Reporter) describe(c *color.Color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if r.bar != nil {
		r.bar.SetTitle(msg)
		return
	}
	line := c.Sprint(msg)
	if r.prefix != "" {
		line = r.prefix + ": " + line
	}
	fmt.Fprintln(r.out, line)
}

func (r *Reporter) add(n int) {
	if r.bar != nil && n > 0 {
		r.bar.Add(n * multiplier(r.step))
	}
}
