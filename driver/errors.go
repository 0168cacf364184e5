// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
)

// Device status errors. They alias the HAL sentinels so callers that
// already handle wgpu device states need no extra cases.
var (
	// ErrWasStillDrawing is returned by Present with PresentDoNotWait while
	// the device queue is full. Retry the call.
	ErrWasStillDrawing = hal.ErrNotReady

	// ErrDeviceLost means the device was removed or reset and every
	// resource it owns is invalid.
	ErrDeviceLost = hal.ErrDeviceLost

	// ErrOutOfMemory means a resource allocation failed for lack of memory.
	ErrOutOfMemory = hal.ErrDeviceOutOfMemory
)

// Driver errors.
var (
	// ErrDriverNotAvailable is returned when no driver is registered
	// under the requested name.
	ErrDriverNotAvailable = errors.New("driver: not available")

	// ErrUnsupported is returned for an operation or format the driver
	// does not implement.
	ErrUnsupported = errors.New("driver: unsupported")

	// ErrInvalidCall is returned for invalid arguments or call order.
	ErrInvalidCall = errors.New("driver: invalid call")
)
