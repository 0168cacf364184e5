// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d9

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gogpu/videorender/driver"
)

const d3dSDKVersion = 32

var (
	modD3D9   = windows.NewLazySystemDLL("d3d9.dll")
	modDXVA2  = windows.NewLazySystemDLL("dxva2.dll")
	modDwmapi = windows.NewLazySystemDLL("dwmapi.dll")
	modUser32 = windows.NewLazySystemDLL("user32.dll")

	procDirect3DCreate9Ex       = modD3D9.NewProc("Direct3DCreate9Ex")
	procDXVA2CreateVideoService = modDXVA2.NewProc("DXVA2CreateVideoService")
	procDwmEnableMMCSS          = modDwmapi.NewProc("DwmEnableMMCSS")
	procDwmIsCompositionEnabled = modDwmapi.NewProc("DwmIsCompositionEnabled")
	procMonitorFromWindow       = modUser32.NewProc("MonitorFromWindow")
)

const monitorDefaultToPrimary = 1

var errNoD3D9Ex = fmt.Errorf("%w: Direct3D 9Ex not available", driver.ErrDriverNotAvailable)

func init() {
	driver.Register(driver.NameD3D9, func() driver.Driver { return New() })
}

// Driver opens Direct3D 9Ex adapters.
type Driver struct {
	mu    sync.Mutex
	mmcss bool
}

// New creates a Direct3D 9Ex driver. Library loading is deferred to Open.
func New() *Driver { return &Driver{} }

// Name implements driver.Driver.
func (d *Driver) Name() string { return driver.NameD3D9 }

// Open implements driver.Driver. It selects the adapter driving the
// monitor that shows the window.
func (d *Driver) Open(w driver.Window) (driver.Adapter, error) {
	if err := procDirect3DCreate9Ex.Find(); err != nil {
		return nil, errNoD3D9Ex
	}
	var d3d *object
	r, _, _ := procDirect3DCreate9Ex.Call(d3dSDKVersion, uintptr(unsafe.Pointer(&d3d)))
	if err := check(r); err != nil {
		return nil, fmt.Errorf("Direct3DCreate9Ex: %w", err)
	}

	a := &adapter{d3d: d3d, window: w}
	a.ordinal = a.findOrdinal(w.Handle)
	info, err := a.identify()
	if err != nil {
		d3d.release()
		return nil, err
	}
	a.info = info
	return a, nil
}

// EnableLowLatencyScheduling implements driver.SchedulingBooster with the
// DWM multimedia class scheduler.
func (d *Driver) EnableLowLatencyScheduling(enable bool) error {
	if err := procDwmEnableMMCSS.Find(); err != nil {
		return fmt.Errorf("%w: DwmEnableMMCSS: %w", driver.ErrUnsupported, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mmcss == enable {
		return nil
	}
	r, _, _ := procDwmEnableMMCSS.Call(boolArg(enable))
	if err := check(r); err != nil {
		return fmt.Errorf("DwmEnableMMCSS: %w", err)
	}
	d.mmcss = enable
	return nil
}

func compositionEnabled() bool {
	if procDwmIsCompositionEnabled.Find() != nil {
		return false
	}
	var enabled int32
	r, _, _ := procDwmIsCompositionEnabled.Call(uintptr(unsafe.Pointer(&enabled)))
	return check(r) == nil && enabled != 0
}

// createVideoService opens a DXVA2 service of type iid on dev.
func createVideoService(dev *object, iid *driver.GUID) (*object, error) {
	if err := procDXVA2CreateVideoService.Find(); err != nil {
		return nil, fmt.Errorf("%w: dxva2.dll: %w", driver.ErrUnsupported, err)
	}
	var svc *object
	r, _, _ := procDXVA2CreateVideoService.Call(uintptr(unsafe.Pointer(dev)), uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&svc)))
	if err := check(r); err != nil {
		return nil, fmt.Errorf("DXVA2CreateVideoService: %w", err)
	}
	return svc, nil
}
