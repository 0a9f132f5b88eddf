// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package flash

import "fmt"

// Messages that callers and tests rely on
const (
	MsgFactoryUserPartOnly   = "Factory reset is only supported for user part"
	MsgFactoryNotSupported   = "Factory reset is not supported for this platform"
	MsgProtectedDowngrade    = "Cannot downgrade Device OS below version " + ProtectedMinimumVersion + " on a Protected Device"
	MsgDfuModeRequired       = "Put the device in DFU mode and try again"
	MsgUnableToFlash         = "Unable to flash device"
	MsgWritingOverDfuFailed  = "Writing over DFU failed"
	MsgDeviceProtection      = "Operation could not be completed due to device protection."
	MsgUnableToReconnect     = "Unable to reconnect to the device. Try again or put the device in DFU mode and flash Device OS to repair it"
	msgUnknownPlatformFormat = "Unknown platform ID: %d"
)

// PlanningError is raised before any device I/O when the requested flash
// can't be planned.  Nothing has been written to the device.
type PlanningError struct {
	Msg string
}

func (e *PlanningError) Error() string {
	return e.Msg
}

func planningErrorf(format string, args ...interface{}) *PlanningError {
	return &PlanningError{Msg: fmt.Sprintf(format, args...)}
}

// TransferError aborts a flash in progress.  The device has been reset
// and closed as needed by the time it is returned.
type TransferError struct {
	Msg string
	Err error
}

func (e *TransferError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
