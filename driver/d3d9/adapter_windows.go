// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d9

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

// IDirect3D9Ex vtable slots.
const (
	d3dGetAdapterCount       = 4
	d3dGetAdapterIdentifier  = 5
	d3dGetAdapterDisplayMode = 8
	d3dCheckDeviceType       = 9
	d3dGetDeviceCaps         = 14
	d3dGetAdapterMonitor     = 15
	d3dCreateDeviceEx        = 20
)

const (
	d3ddevtypeHAL = 1

	d3dcreateMultithreaded              = 0x00000004
	d3dcreateSoftwareVertexProcessing   = 0x00000020
	d3dcreateHardwareVertexProcessing   = 0x00000040
	d3ddevcapsHardwareTransformAndLight = 0x00010000
)

// adapterIdentifier is D3DADAPTER_IDENTIFIER9.
type adapterIdentifier struct {
	Driver           [512]byte
	Description      [512]byte
	DeviceName       [32]byte
	DriverVersion    uint64
	VendorID         uint32
	DeviceID         uint32
	SubSysID         uint32
	Revision         uint32
	DeviceIdentifier driver.GUID
	WHQLLevel        uint32
}

// displayMode is D3DDISPLAYMODE.
type displayMode struct {
	Width, Height, RefreshRate, Format uint32
}

// displayModeEx is D3DDISPLAYMODEEX.
type displayModeEx struct {
	Size                               uint32
	Width, Height, RefreshRate, Format uint32
	ScanLineOrdering                   uint32
}

// caps9 is the head of D3DCAPS9. The tail is opaque padding.
type caps9 struct {
	DeviceType            uint32
	AdapterOrdinal        uint32
	Caps                  uint32
	Caps2                 uint32
	Caps3                 uint32
	PresentationIntervals uint32
	CursorCaps            uint32
	DevCaps               uint32
	_                     [480]byte
}

// presentParameters is D3DPRESENT_PARAMETERS.
type presentParameters struct {
	BackBufferWidth        uint32
	BackBufferHeight       uint32
	BackBufferFormat       uint32
	BackBufferCount        uint32
	MultiSampleType        uint32
	MultiSampleQuality     uint32
	SwapEffect             uint32
	DeviceWindow           uintptr
	Windowed               int32
	EnableAutoDepthStencil int32
	AutoDepthStencilFormat uint32
	Flags                  uint32
	FullScreenRefreshRate  uint32
	PresentationInterval   uint32
}

type adapter struct {
	d3d     *object
	window  driver.Window
	ordinal uint32
	info    driver.AdapterInfo
}

// findOrdinal returns the adapter driving the monitor that shows hwnd,
// or the default adapter.
func (a *adapter) findOrdinal(hwnd uintptr) uint32 {
	if hwnd == 0 || procMonitorFromWindow.Find() != nil {
		return 0
	}
	monitor, _, _ := procMonitorFromWindow.Call(hwnd, monitorDefaultToPrimary)
	n := uint32(a.d3d.call(d3dGetAdapterCount))
	for i := uint32(0); i < n; i++ {
		if a.d3d.call(d3dGetAdapterMonitor, uintptr(i)) == monitor {
			return i
		}
	}
	return 0
}

func (a *adapter) identify() (driver.AdapterInfo, error) {
	var id adapterIdentifier
	if err := a.d3d.hr(d3dGetAdapterIdentifier, uintptr(a.ordinal), 0, uintptr(unsafe.Pointer(&id))); err != nil {
		return driver.AdapterInfo{}, fmt.Errorf("GetAdapterIdentifier: %w", err)
	}
	version := driver.DriverVersionFromUint64(id.DriverVersion)
	return driver.AdapterInfo{
		AdapterInfo: gputypes.AdapterInfo{
			Name:       windows.ByteSliceToString(id.Description[:]),
			Vendor:     vendorName(id.VendorID),
			VendorID:   id.VendorID,
			DeviceID:   id.DeviceID,
			DeviceType: deviceType(id.VendorID),
			Driver:     version.String(),
			DriverInfo: windows.ByteSliceToString(id.Driver[:]),
		},
		Ordinal:       int(a.ordinal),
		DriverVersion: version,
	}, nil
}

func (a *adapter) Info() driver.AdapterInfo { return a.info }

func (a *adapter) DisplayMode() (driver.DisplayMode, error) {
	var m displayMode
	if err := a.d3d.hr(d3dGetAdapterDisplayMode, uintptr(a.ordinal), uintptr(unsafe.Pointer(&m))); err != nil {
		return driver.DisplayMode{}, fmt.Errorf("GetAdapterDisplayMode: %w", err)
	}
	return driver.DisplayMode{
		Width:       int(m.Width),
		Height:      int(m.Height),
		RefreshRate: int(m.RefreshRate),
		Format:      fromD3DFormat(m.Format),
	}, nil
}

func (a *adapter) CheckDisplayFormat(f driver.Format) error {
	d3dfmt := toD3DFormat(f)
	if d3dfmt == d3dfmtUnknown || f.IsYUV() {
		return driver.ErrUnsupported
	}
	return a.d3d.hr(d3dCheckDeviceType, uintptr(a.ordinal), d3ddevtypeHAL, uintptr(d3dfmt), uintptr(d3dfmt), 0)
}

func (a *adapter) Caps() (driver.AdapterCaps, error) {
	var c caps9
	if err := a.d3d.hr(d3dGetDeviceCaps, uintptr(a.ordinal), d3ddevtypeHAL, uintptr(unsafe.Pointer(&c))); err != nil {
		return driver.AdapterCaps{}, fmt.Errorf("GetDeviceCaps: %w", err)
	}
	return driver.AdapterCaps{
		HardwareTransformAndLight: c.DevCaps&d3ddevcapsHardwareTransformAndLight != 0,
	}, nil
}

func (a *adapter) CompositionEnabled() bool { return compositionEnabled() }

func (a *adapter) CreateDevice(p *driver.PresentParameters) (driver.Device, error) {
	if p == nil || p.Width <= 0 || p.Height <= 0 || p.BackBufferCount < 1 {
		return nil, driver.ErrInvalidCall
	}
	pp := presentParameters{
		BackBufferWidth:      uint32(p.Width),
		BackBufferHeight:     uint32(p.Height),
		BackBufferFormat:     toD3DFormat(p.BackBufferFormat),
		BackBufferCount:      uint32(p.BackBufferCount),
		SwapEffect:           toD3DSwapEffect(p.SwapEffect),
		DeviceWindow:         p.Window.Handle,
		Windowed:             int32(boolArg(p.Windowed)),
		PresentationInterval: toD3DInterval(p.PresentMode),
	}
	if p.Video {
		pp.Flags |= d3dpresentflagVideo
	}

	var mode *displayModeEx
	if !p.Windowed {
		pp.FullScreenRefreshRate = uint32(p.RefreshRate)
		mode = &displayModeEx{
			Size:             uint32(unsafe.Sizeof(displayModeEx{})),
			Width:            pp.BackBufferWidth,
			Height:           pp.BackBufferHeight,
			RefreshRate:      pp.FullScreenRefreshRate,
			Format:           pp.BackBufferFormat,
			ScanLineOrdering: 1,
		}
	}

	flags := uintptr(0)
	if p.Multithreaded {
		flags |= d3dcreateMultithreaded
	}
	if p.HardwareVertexProcessing {
		flags |= d3dcreateHardwareVertexProcessing
	} else {
		flags |= d3dcreateSoftwareVertexProcessing
	}

	var dev *object
	err := a.d3d.hr(d3dCreateDeviceEx,
		uintptr(a.ordinal),
		d3ddevtypeHAL,
		p.Window.Handle,
		flags,
		uintptr(unsafe.Pointer(&pp)),
		uintptr(unsafe.Pointer(mode)),
		uintptr(unsafe.Pointer(&dev)),
	)
	if err != nil {
		return nil, fmt.Errorf("CreateDeviceEx: %w", err)
	}
	return &device{dev: dev}, nil
}

func (a *adapter) Release() {
	a.d3d.release()
	a.d3d = nil
}
