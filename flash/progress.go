// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

// Event is a progress notification.  The set of events is closed: FlashFile,
// SwitchMode, Erased, SkipFile, Downloaded and Finish.
type Event interface {
	event()
}

// FlashFile starts the transfer of a step
type FlashFile struct {
	Filename string
}

// SwitchMode is emitted before the device changes mode
type SwitchMode struct {
	Mode Mode
}

// Erased reports bytes erased on the device
type Erased struct {
	Bytes int
}

// SkipFile reports that a step was not transferred
type SkipFile struct {
	Filename string
	Bytes    int
}

// Downloaded reports bytes written to the device
type Downloaded struct {
	Bytes int
}

// Finish is always the last event of a flash operation
type Finish struct {
	Success bool
}

func (FlashFile) event()  {}
func (SwitchMode) event() {}
func (Erased) event()     {}
func (SkipFile) event()   {}
func (Downloaded) event() {}
func (Finish) event()     {}

// ProgressSink consumes progress events
type ProgressSink interface {
	Progress(ev Event)
}

// ProgressSinkFunc adapts a function to a ProgressSink
type ProgressSinkFunc func(ev Event)

// Progress calls f(ev)
func (f ProgressSinkFunc) Progress(ev Event) {
	f(ev)
}

type nopSink struct{}

func (nopSink) Progress(Event) {}

// stepCounter clamps the byte counts reported for one step to its size.
// Devices erase whole sectors, so erase totals can run past the data length.
type stepCounter struct {
	limit      int
	erased     int
	downloaded int
	sink       ProgressSink
}

func newStepCounter(step *Step, sink ProgressSink) *stepCounter {
	return &stepCounter{limit: len(step.Data), sink: sink}
}

func (c *stepCounter) progress(ev Event) {
	switch e := ev.(type) {
	case Erased:
		if n := clamp(e.Bytes, c.limit-c.erased); n > 0 {
			c.erased += n
			c.sink.Progress(Erased{Bytes: n})
		}
	case Downloaded:
		if n := clamp(e.Bytes, c.limit-c.downloaded); n > 0 {
			c.downloaded += n
			c.sink.Progress(Downloaded{Bytes: n})
		}
	default:
		c.sink.Progress(ev)
	}
}

func clamp(n, room int) int {
	if n > room {
		return room
	}
	return n
}
