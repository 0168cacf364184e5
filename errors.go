// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package videorender

import (
	"errors"

	"github.com/gogpu/videorender/internal/bringup"
	"github.com/gogpu/videorender/internal/negotiate"
	"github.com/gogpu/videorender/internal/vproc"
	"github.com/gogpu/videorender/overlay"
	"github.com/gogpu/videorender/surfacepool"
)

// Errors returned by Initialize. Test with errors.Is.
var (
	ErrDeviceInit        = bringup.ErrDeviceInit
	ErrNoMatchingProfile = negotiate.ErrNoMatchingProfile
	ErrNoMatchingConfig  = negotiate.ErrNoMatchingConfig
	ErrSurfaceAlloc      = negotiate.ErrSurfaceAlloc
	ErrDecoderCreate     = negotiate.ErrDecoderCreate

	// ErrProcessorUnavailable is logged, not returned: the renderer falls
	// back to raw copies.
	ErrProcessorUnavailable = vproc.ErrProcessorUnavailable

	// ErrCodecDisabled means the GPU policy disabled hardware decoding of
	// the requested codec on this adapter.
	ErrCodecDisabled = errors.New("videorender: codec disabled on this GPU")
)

// Errors returned after Initialize.
var (
	// ErrPoolExhausted is returned by GetBuffer once every decode surface
	// has been handed out.
	ErrPoolExhausted = surfacepool.ErrPoolExhausted

	// ErrFrameRender wraps every device failure while rendering a frame.
	ErrFrameRender = errors.New("videorender: frame render failed")

	// ErrOverlayUpdate wraps failures of NotifyOverlayUpdated.
	ErrOverlayUpdate = overlay.ErrOverlayUpdate

	// ErrNotInitialized is returned before a successful Initialize.
	ErrNotInitialized = errors.New("videorender: renderer not initialized")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("videorender: renderer closed")
)
