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

// FlashTimeout is how long a normal-mode transfer keeps being retried.
// Flashing NCP firmware can take a few minutes.
const FlashTimeout = 4 * time.Minute

// RetryPolicy governs the normal-mode transfer loop.  Attempts that fail
// with a retryable error are repeated every Interval until Timeout has
// elapsed since the first attempt.
type RetryPolicy struct {
	Timeout   time.Duration
	Interval  time.Duration
	Retryable func(err error) bool
}

// DefaultRetryPolicy retries everything but device protection refusals
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:   FlashTimeout,
		Interval:  time.Second,
		Retryable: IsTransient,
	}
}

// IsTransient reports whether a failed transfer is worth another attempt
func IsTransient(err error) bool {
	return !errors.Is(err, ErrDeviceProtection)
}

// constantBackOff waits interval between attempts and gives up after timeout
func constantBackOff(interval, timeout time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxInterval = interval
	b.Multiplier = 1
	b.RandomizationFactor = 0
	b.MaxElapsedTime = timeout
	return b
}

// run calls op until it succeeds, fails permanently, the budget runs out or
// ctx is done.  It returns the last error seen.
func (p RetryPolicy) run(ctx context.Context, what string, op func() error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = FlashTimeout
	}

	attempt := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		glog.V(1).Infof("%s failed, retrying in %s: %s", what, wait, err)
	}

	return backoff.RetryNotify(attempt, backoff.WithContext(constantBackOff(p.Interval, timeout), ctx), notify)
}
