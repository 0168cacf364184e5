// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bringup creates the presentation device and decides how frames
// reach the display.
package bringup

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/video"
)

// ErrDeviceInit is wrapped by every error returned from Open.
var ErrDeviceInit = errors.New("bringup: device initialization failed")

// Presentation is the buffering and vsync policy of the swapchain.
type Presentation struct {
	BackBufferCount int
	SwapEffect      driver.SwapEffect
	PresentMode     gputypes.PresentMode

	// Blocking is true when Present waits for vblank. The render loop
	// then presents with PresentDoNotWait and polls instead.
	Blocking bool
}

// Choose picks the presentation policy.
//
// With a compositor running in windowed mode the compositor already
// synchronizes to vblank, so the device presents immediately to avoid
// double vsync. FlipEx is only used with vsync on: with vsync off it would
// block while the compositor holds the surface, which behaves like vsync.
// Everywhere else vsync means one present per vblank and no vsync means
// tearing.
func Choose(windowed, composited, vsync bool) Presentation {
	switch {
	case windowed && composited && vsync:
		return Presentation{
			BackBufferCount: 2,
			SwapEffect:      driver.SwapEffectFlipEx,
			PresentMode:     gputypes.PresentModeImmediate,
		}
	case windowed && composited:
		return Presentation{
			BackBufferCount: 1,
			SwapEffect:      driver.SwapEffectDiscard,
			PresentMode:     gputypes.PresentModeImmediate,
		}
	case vsync:
		return Presentation{
			BackBufferCount: 1,
			SwapEffect:      driver.SwapEffectDiscard,
			PresentMode:     gputypes.PresentModeFifo,
			Blocking:        true,
		}
	default:
		return Presentation{
			BackBufferCount: 1,
			SwapEffect:      driver.SwapEffectDiscard,
			PresentMode:     gputypes.PresentModeImmediate,
		}
	}
}

// Params describes the device to create.
type Params struct {
	Window driver.Window
	VSync  bool

	// Format is the codec being decoded. 10-bit codecs require a 10-bit
	// display format.
	Format video.Format
}

// Device is an opened presentation device.
type Device struct {
	driver.Device

	Adapter      driver.AdapterInfo
	Presentation Presentation

	// Width and Height are the back buffer size.
	Width  int
	Height int
}

// Open acquires the adapter hosting the window and creates the device.
func Open(drv driver.Driver, p Params, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	adapter, err := drv.Open(p.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: open adapter: %w", ErrDeviceInit, err)
	}
	defer adapter.Release()

	info := adapter.Info()
	logger.Info("display adapter",
		"name", info.Name,
		"vendor", fmt.Sprintf("%#04x", info.VendorID),
		"device", fmt.Sprintf("%#04x", info.DeviceID),
		"driver", info.DriverVersion.String())

	caps, err := adapter.Caps()
	if err != nil {
		return nil, fmt.Errorf("%w: device caps: %w", ErrDeviceInit, err)
	}
	mode, err := adapter.DisplayMode()
	if err != nil {
		return nil, fmt.Errorf("%w: display mode: %w", ErrDeviceInit, err)
	}

	// A2R10G10B10 only exists as a display format in exclusive
	// fullscreen, but the check gates the codec in both modes.
	if p.Format.Is10Bit() {
		if err := adapter.CheckDisplayFormat(driver.FormatRGB10A2); err != nil {
			logger.Warn("GPU/driver doesn't support 10-bit display format")
			return nil, fmt.Errorf("%w: 10-bit display format: %w", ErrDeviceInit, err)
		}
	}

	pp := driver.PresentParameters{
		Window:        p.Window,
		Windowed:      !p.Window.Fullscreen,
		Multithreaded: true,
		Video:         true,
	}
	if p.Window.Fullscreen {
		pp.Width = mode.Width
		pp.Height = mode.Height
		pp.RefreshRate = mode.RefreshRate
		pp.BackBufferFormat = mode.Format
		if p.Format.Is10Bit() {
			pp.BackBufferFormat = driver.FormatRGB10A2
		}
	} else {
		pp.BackBufferFormat = driver.FormatUnknown
		pp.Width, pp.Height = p.Window.PixelSize()
	}

	composited := adapter.CompositionEnabled()
	pres := Choose(pp.Windowed, composited, p.VSync)
	pp.BackBufferCount = pres.BackBufferCount
	pp.SwapEffect = pres.SwapEffect
	pp.PresentMode = pres.PresentMode

	logger.Info("presentation",
		"windowed", pp.Windowed,
		"composited", composited,
		"vsync", p.VSync,
		"swap", pres.SwapEffect.String(),
		"mode", pres.PresentMode.String(),
		"blocking", pres.Blocking)

	if caps.HardwareTransformAndLight {
		pp.HardwareVertexProcessing = true
	} else {
		logger.Warn("no hardware vertex processing support")
	}

	dev, err := adapter.CreateDevice(&pp)
	if err != nil {
		return nil, fmt.Errorf("%w: create device: %w", ErrDeviceInit, err)
	}
	if err := dev.SetMaximumFrameLatency(1); err != nil {
		dev.Release()
		return nil, fmt.Errorf("%w: frame latency: %w", ErrDeviceInit, err)
	}

	return &Device{
		Device:       dev,
		Adapter:      info,
		Presentation: pres,
		Width:        pp.Width,
		Height:       pp.Height,
	}, nil
}
