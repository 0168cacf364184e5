// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the platform abstraction the video renderer is
// written against: a fixed-function presentation device with a swapchain,
// a hardware decoder service and a hardware video processor service.
//
// The model follows Direct3D 9Ex + DXVA2 closely because that is the API
// the hardware path targets (see driver/d3d9). Other implementations
// (driver/soft) emulate the same contract on the CPU.
//
// Implementations register themselves by name:
//
//	func init() {
//	    driver.Register("soft", func() driver.Driver { return soft.New() })
//	}
//
// and callers that own renderer selection pick one with [Best] or [Get].
package driver

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Driver opens the display adapter that hosts a window.
type Driver interface {
	// Name returns the registry name of the driver.
	Name() string

	// Open acquires the adapter that presents to w.
	Open(w Window) (Adapter, error)
}

// SchedulingBooster is implemented by drivers that can raise the
// process into a low-latency multimedia scheduling class for the
// lifetime of a renderer.
type SchedulingBooster interface {
	EnableLowLatencyScheduling(enable bool) error
}

// Window describes the native window a device presents into.
type Window struct {
	// Handle is the native window handle (HWND on Windows). Zero for
	// headless drivers.
	Handle uintptr

	// Provider reports the client area size. Required for windowed mode.
	Provider gpucontext.WindowProvider

	// Fullscreen requests exclusive fullscreen presentation.
	Fullscreen bool
}

// PixelSize returns the client area in physical pixels.
func (w Window) PixelSize() (int, int) {
	if w.Provider == nil {
		return 0, 0
	}
	lw, lh := w.Provider.Size()
	scale := w.Provider.ScaleFactor()
	return int(float64(lw) * scale), int(float64(lh) * scale)
}

// Adapter is an opened display adapter.
type Adapter interface {
	// Info returns the adapter identity used by the capability policy.
	Info() AdapterInfo

	// DisplayMode returns the current mode of the display hosting the window.
	DisplayMode() (DisplayMode, error)

	// CheckDisplayFormat reports whether f can be used as both the display
	// and back buffer format in exclusive fullscreen.
	CheckDisplayFormat(f Format) error

	// Caps returns device capabilities relevant to bring-up.
	Caps() (AdapterCaps, error)

	// CompositionEnabled reports whether a desktop compositor owns vsync.
	CompositionEnabled() bool

	// CreateDevice creates the presentation device.
	CreateDevice(p *PresentParameters) (Device, error)

	// Release frees the adapter. Devices created from it stay valid.
	Release()
}

// AdapterCaps holds the subset of device capabilities used at bring-up.
type AdapterCaps struct {
	HardwareTransformAndLight bool
}

// AdapterInfo identifies the GPU and its driver.
type AdapterInfo struct {
	gputypes.AdapterInfo

	// Ordinal is the adapter index within the driver.
	Ordinal int

	// DriverVersion is the four-part driver version.
	DriverVersion DriverVersion
}

// DriverVersion is a product.version.subversion.build driver version.
type DriverVersion [4]uint16

// DriverVersionFromUint64 splits a packed 64-bit driver version (high
// word first) into its four parts.
func DriverVersionFromUint64(v uint64) DriverVersion {
	return DriverVersion{
		uint16(v >> 48),
		uint16(v >> 32),
		uint16(v >> 16),
		uint16(v),
	}
}

// Product returns the product part.
func (v DriverVersion) Product() uint16 { return v[0] }

// Version returns the version part.
func (v DriverVersion) Version() uint16 { return v[1] }

// SubVersion returns the sub-version part.
func (v DriverVersion) SubVersion() uint16 { return v[2] }

// Build returns the build part.
func (v DriverVersion) Build() uint16 { return v[3] }

// String formats the version as a.b.c.d.
func (v DriverVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// DisplayMode describes the current display mode.
type DisplayMode struct {
	Width       int
	Height      int
	RefreshRate int
	Format      Format
}

// SwapEffect selects how back buffers are handed to the display.
type SwapEffect uint8

const (
	// SwapEffectDiscard lets the driver discard back buffer contents.
	SwapEffectDiscard SwapEffect = iota + 1
	// SwapEffectFlipEx hands buffers to the compositor without copying.
	SwapEffectFlipEx
)

// String returns the swap effect name.
func (s SwapEffect) String() string {
	switch s {
	case SwapEffectDiscard:
		return "Discard"
	case SwapEffectFlipEx:
		return "FlipEx"
	default:
		return "Unknown"
	}
}

// PresentParameters configures the swapchain.
type PresentParameters struct {
	Window Window

	// Windowed is false for exclusive fullscreen.
	Windowed bool

	// Width and Height of the back buffer in pixels.
	Width  int
	Height int

	// BackBufferFormat is FormatUnknown in windowed mode (use the desktop
	// format) or an explicit display format in fullscreen.
	BackBufferFormat Format
	BackBufferCount  int
	RefreshRate      int

	SwapEffect SwapEffect

	// PresentMode is PresentModeImmediate (interval immediate) or
	// PresentModeFifo (one present per vblank).
	PresentMode gputypes.PresentMode

	// HardwareVertexProcessing selects hardware over software T&L.
	HardwareVertexProcessing bool

	// Multithreaded makes the device safe for concurrent decode.
	Multithreaded bool

	// Video hints that the swapchain carries video content.
	Video bool
}

// PresentFlags modify a single Present call.
type PresentFlags uint32

const (
	// PresentDoNotWait returns ErrWasStillDrawing instead of blocking when
	// the device queue is full.
	PresentDoNotWait PresentFlags = 1 << iota
)

// Device is the presentation device and owner of its resources.
type Device interface {
	// BackBuffer returns the swapchain render target. The caller releases it.
	BackBuffer() (Surface, error)

	SetMaximumFrameLatency(n int) error

	Clear(c gputypes.Color) error
	BeginScene() error
	EndScene() error
	Present(flags PresentFlags) error

	// StretchRect copies src into dst without colorspace-aware conversion.
	StretchRect(src Surface, srcRect image.Rectangle, dst Surface, dstRect image.Rectangle, filter gputypes.FilterMode) error

	// CreateTexture creates a dynamic CPU-writable texture.
	CreateTexture(width, height int, format Format) (Texture, error)
	// CreateVertexBuffer creates a dynamic write-only vertex buffer.
	CreateVertexBuffer(size int) (VertexBuffer, error)

	SetRenderState(state *RenderState) error
	SetTexture(stage int, t Texture) error
	SetStreamSource(vb VertexBuffer, stride int) error
	DrawPrimitive(topology gputypes.PrimitiveTopology, start, count int) error

	DecoderService() (DecoderService, error)
	ProcessorService() (ProcessorService, error)

	Release()
}
