// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fwflash-cli/device/dummy"
	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/flash/progress"
	"github.com/fwflash-cli/lib"
	"github.com/fwflash-cli/module"
	"github.com/fwflash-cli/platform"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var errCancelled = errors.New("flash cancelled")

// FlashOpts encapsulates flash parameters
type FlashOpts struct {
	Files     []string
	Devices   []*dummy.Device
	Platforms *platform.Table
	Factory   bool
	All       bool
	NoReset   bool
	Yes       bool
	Timeout   time.Duration
	Out       io.Writer
	// Flasher options applied after the defaults
	FlasherOptions []flash.Option
}

// flashCmd represents the flash command
var flashCmd = &cobra.Command{
	Use:   "flash FILE...",
	Short: "Flash firmware modules onto a device",
	Long: `Flash one or more firmware modules onto a device.

Modules are checked against the device platform and its protection state,
ordered by their dependencies, and flashed over control requests or DFU as
each requires.  Assets already on the device are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadPlatforms(GetPlatforms())
		if err != nil {
			return err
		}
		devices, err := loadDevices(GetDevice())
		if err != nil {
			return err
		}
		factory, _ := cmd.Flags().GetBool("factory")
		all, _ := cmd.Flags().GetBool("all")
		noReset, _ := cmd.Flags().GetBool("no-reset")

		return Flash(cmd.Context(), FlashOpts{
			Files:     args,
			Devices:   devices,
			Platforms: table,
			Factory:   factory,
			All:       all,
			NoReset:   noReset,
			Yes:       GetYes(),
			Timeout:   GetFlashTimeout(),
			Out:       os.Stdout,
		})
	},
}

func init() {
	flashCmd.Flags().Bool("factory", false, "Write the user part to the factory reset slot")
	flashCmd.Flags().Bool("all", false, "Include modules that are normally left out, such as NCP firmware")
	flashCmd.Flags().Bool("no-reset", false, "Leave the device as it is after flashing")

	flashCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\nUSAGE: %s\n\n", cmd.Long, cmd.UseLine())

		flags := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
		flags.AddFlagSet(cmd.LocalFlags())
		flags.AddFlagSet(cmd.InheritedFlags())
		lib.PrintGroupedFlags(out, []lib.FlagGroup{
			{
				Name:        "flash",
				Description: "Flashing",
				Flags:       lib.FlagsByName(flags, "factory", "all", "no-reset", "yes"),
			},
			{
				Name:        "device",
				Description: "Device & Platforms",
				Flags:       lib.FlagsByName(flags, "device", "platforms"),
			},
			{
				Name:        "logging",
				Description: "Logging",
				Flags:       lib.FlagsByName(flags, "verbose", "v", "logtostderr", "log_dir"),
			},
		})
	})

	rootCmd.AddCommand(flashCmd)
}

// Flash validates, plans and flashes the files onto every device.  Several
// devices are flashed at once.
func Flash(ctx context.Context, opts FlashOpts) error {
	if len(opts.Devices) == 0 {
		return errNoDevice
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Platforms == nil {
		opts.Platforms = platform.Default()
	}

	mods, err := loadModules(opts.Files)
	if err != nil {
		return err
	}

	jobs := make([]flash.Job, 0, len(opts.Devices))
	for _, dev := range opts.Devices {
		job, err := prepareJob(ctx, dev, mods, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", dev.ID(), err)
		}
		if len(job.Steps) == 0 {
			fmt.Fprintf(opts.Out, "%s: nothing to flash\n", dev.ID())
			continue
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil
	}

	if !opts.Yes {
		for _, job := range jobs {
			fmt.Fprintf(opts.Out, "\nDevice %s:\n", job.Device.ID())
			if err := renderPlan(opts.Out, job.Steps); err != nil {
				return err
			}
		}
		ok, err := confirm("Flash these modules?")
		if err != nil {
			return err
		}
		if !ok {
			return errCancelled
		}
	}

	out := opts.Out
	if len(jobs) > 1 {
		out = &lockedWriter{w: opts.Out}
	}
	for i := range jobs {
		sink, err := reporter(jobs[i], len(jobs), out)
		if err != nil {
			return err
		}
		flasherOpts := append([]flash.Option{
			flash.WithProgress(sink),
			flash.WithRetryPolicy(flash.RetryPolicy{Timeout: opts.Timeout, Interval: time.Second}),
		}, opts.FlasherOptions...)
		jobs[i].Flasher = flash.New(flasherOpts...)
	}

	return flash.FlashAll(ctx, jobs)
}

// prepareJob runs every check that can fail before a byte is written and
// plans the flash for one device
func prepareJob(ctx context.Context, dev flash.Device, mods []*module.Descriptor, opts FlashOpts) (flash.Job, error) {
	plat, ok := opts.Platforms.Lookup(dev.PlatformID())
	if !ok {
		return flash.Job{}, fmt.Errorf("Unknown platform ID: %d", dev.PlatformID())
	}
	if err := flash.ValidateModulesForPlatform(mods, plat); err != nil {
		return flash.Job{}, err
	}
	filtered := flash.FilterModulesToFlash(mods, plat, opts.All)
	if len(filtered) == 0 {
		return flash.Job{Device: dev}, nil
	}
	if err := flash.ValidateDFUSupport(dev, plat); err != nil {
		return flash.Job{}, err
	}
	if err := flash.ValidateModulesForProtection(ctx, dev, filtered); err != nil {
		return flash.Job{}, err
	}

	planner := flash.NewPlanner(opts.Platforms)
	steps, err := planner.CreateFlashSteps(filtered, flash.PlanOptions{
		IsInDfuMode: dev.IsInDfuMode(),
		Factory:     opts.Factory,
		PlatformID:  plat.ID,
	})
	if err != nil {
		return flash.Job{}, err
	}
	glog.V(1).Infof("%s: %d steps, %d bytes", dev.ID(), len(steps), steps.TotalBytes())

	return flash.Job{
		Device:          dev,
		Steps:           steps,
		ResetAfterFlash: resetAfterFlash(filtered, opts),
	}, nil
}

// resetAfterFlash decides whether the device is reset once flashed: only
// when an application is the first thing flashed, since Device OS updates
// reset the device themselves
func resetAfterFlash(mods []*module.Descriptor, opts FlashOpts) bool {
	if opts.NoReset || opts.Factory || len(mods) == 0 {
		return false
	}
	return mods[0].Prefix.Function == module.FunctionUserPart
}

// reporter shows a progress bar for a single device on a terminal and logs
// lines otherwise
func reporter(job flash.Job, jobs int, out io.Writer) (flash.ProgressSink, error) {
	if f, ok := out.(*os.File); ok && jobs == 1 {
		return progress.ForTerminal(job.Steps, f)
	}
	prefix := ""
	if jobs > 1 {
		prefix = job.Device.ID()
	}
	return progress.NewLog(job.Steps, out, prefix), nil
}

// lockedWriter serializes the log lines of devices flashed at once
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
