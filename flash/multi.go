// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job is the flashing of one device
type Job struct {
	Device          Device
	Steps           Plan
	ResetAfterFlash bool
	// Flasher for this device, New() when nil
	Flasher *Flasher
}

// FlashAll flashes several devices at once, one goroutine per device.  Each
// device still gets its steps one at a time.  A failing device doesn't stop
// the others; FlashAll waits for every job and returns the first error.
func FlashAll(ctx context.Context, jobs []Job) error {
	seen := map[string]bool{}
	for _, job := range jobs {
		id := job.Device.ID()
		if seen[id] {
			return fmt.Errorf("device %s is listed more than once", id)
		}
		seen[id] = true
	}

	var g errgroup.Group
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			f := job.Flasher
			if f == nil {
				f = New()
			}
			if err := f.FlashFiles(ctx, job.Device, job.Steps, job.ResetAfterFlash); err != nil {
				return fmt.Errorf("%s: %w", job.Device.ID(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
