// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package soft implements the driver contract on the CPU.
//
// The soft driver keeps decode targets as NV12/P010 byte planes and the
// back buffer as an *image.RGBA. Video processing converts YUV to RGB with
// the matrix carried by the sample and scales with golang.org/x/image/draw;
// StretchRect uses nearest-neighbor sampling and a fixed BT.601 matrix the
// way fixed-function hardware does.
//
// Every driver operation can be made to fail through [Driver.Inject],
// which makes the package double as the test device for the renderer.
//
// Example:
//
//	drv := soft.New(soft.WithAdapter(info))
//	r := videorender.New(drv)
//	if err := r.Initialize(params); err != nil { ... }
//	...
//	img := drv.LastDevice().Snapshot()
package soft

import (
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

func init() {
	driver.Register(driver.NameSoft, func() driver.Driver { return New() })
}

// Driver is the CPU driver.
type Driver struct {
	cfg    config
	faults *Faults

	mu   sync.Mutex
	last *Device
}

// New creates a soft driver.
func New(opts ...Option) *Driver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Driver{cfg: cfg, faults: newFaults()}
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return driver.NameSoft }

// Open implements driver.Driver.
func (d *Driver) Open(w driver.Window) (driver.Adapter, error) {
	if err := d.faults.hit(OpOpen); err != nil {
		return nil, err
	}
	return &adapter{drv: d, window: w}, nil
}

// Inject makes the next times calls of op fail with err. A negative
// times fails every call until Clear is called.
func (d *Driver) Inject(op Op, err error, times int) {
	d.faults.inject(op, err, times)
}

// Faults returns the fault and call-count table shared by every object
// the driver creates.
func (d *Driver) Faults() *Faults { return d.faults }

// LastDevice returns the most recently created device, or nil.
func (d *Driver) LastDevice() *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Scheduling reports whether low-latency scheduling is currently enabled.
func (d *Driver) Scheduling() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.scheduling
}

// EnableLowLatencyScheduling implements driver.SchedulingBooster.
func (d *Driver) EnableLowLatencyScheduling(enable bool) error {
	if err := d.faults.hit(OpScheduling); err != nil {
		return err
	}
	d.mu.Lock()
	d.cfg.scheduling = enable
	d.mu.Unlock()
	return nil
}

type adapter struct {
	drv    *Driver
	window driver.Window
}

func (a *adapter) Info() driver.AdapterInfo { return a.drv.cfg.info }

func (a *adapter) DisplayMode() (driver.DisplayMode, error) {
	if err := a.drv.faults.hit(OpDisplayMode); err != nil {
		return driver.DisplayMode{}, err
	}
	return a.drv.cfg.mode, nil
}

func (a *adapter) CheckDisplayFormat(f driver.Format) error {
	switch f {
	case driver.FormatBGRA8, driver.FormatBGRX8:
		return nil
	case driver.FormatRGB10A2:
		if a.drv.cfg.tenBit {
			return nil
		}
	}
	return driver.ErrUnsupported
}

func (a *adapter) Caps() (driver.AdapterCaps, error) {
	if err := a.drv.faults.hit(OpCaps); err != nil {
		return driver.AdapterCaps{}, err
	}
	return driver.AdapterCaps{HardwareTransformAndLight: a.drv.cfg.hardwareTnL}, nil
}

func (a *adapter) CompositionEnabled() bool { return a.drv.cfg.composited }

func (a *adapter) CreateDevice(p *driver.PresentParameters) (driver.Device, error) {
	if err := a.drv.faults.hit(OpCreateDevice); err != nil {
		return nil, err
	}
	if p == nil || p.Width <= 0 || p.Height <= 0 || p.BackBufferCount < 1 {
		return nil, driver.ErrInvalidCall
	}
	if p.SwapEffect == driver.SwapEffectFlipEx && (!p.Windowed || p.BackBufferCount < 2) {
		return nil, driver.ErrInvalidCall
	}
	format := p.BackBufferFormat
	if format == driver.FormatUnknown {
		format = a.drv.cfg.mode.Format
	}
	dev := newDevice(a.drv, *p, format)
	a.drv.mu.Lock()
	a.drv.last = dev
	a.drv.mu.Unlock()
	return dev, nil
}

func (a *adapter) Release() {}

// config is the simulated hardware description.
type config struct {
	info        driver.AdapterInfo
	mode        driver.DisplayMode
	composited  bool
	tenBit      bool
	hardwareTnL bool
	scheduling  bool

	profiles  []driver.GUID
	configs   []driver.DecoderConfig
	procCaps  driver.ProcessorCaps
	procAmp   map[driver.ProcAmp]driver.ValueRange
	noProcSvc bool
}

func defaultConfig() config {
	return config{
		info: driver.AdapterInfo{
			AdapterInfo: gputypes.AdapterInfo{
				Name:       "Software Video Adapter",
				Vendor:     "gogpu",
				VendorID:   0x1414,
				DeviceID:   0x008C,
				DeviceType: gputypes.DeviceTypeCPU,
				Driver:     "soft",
			},
			DriverVersion: driver.DriverVersion{1, 0, 0, 1},
		},
		mode: driver.DisplayMode{
			Width:       1920,
			Height:      1080,
			RefreshRate: 60,
			Format:      driver.FormatBGRX8,
		},
		composited:  true,
		hardwareTnL: true,
		profiles: []driver.GUID{
			driver.ModeH264E,
			driver.ModeHEVCMain,
			driver.ModeHEVCMain10,
		},
		configs: []driver.DecoderConfig{{
			BitstreamEncryption:      driver.NoEncrypt,
			MBControlEncryption:      driver.NoEncrypt,
			ResidDiffEncryption:      driver.NoEncrypt,
			BitstreamRaw:             1,
			MinRenderTargetBuffCount: 4,
		}},
		procCaps: driver.ProcessorCaps{
			DeviceCaps: driver.VPDevHardwareDevice,
			InputPool:  0,
			Operations: driver.ProcessYUV2RGB | driver.ProcessStretchX | driver.ProcessStretchY,
		},
		procAmp: map[driver.ProcAmp]driver.ValueRange{
			driver.ProcAmpBrightness: {Min: driver.Fixed32{Value: -100}, Max: driver.Fixed32{Value: 100}},
			driver.ProcAmpContrast:   {Max: driver.Fixed32{Value: 10}, Default: driver.Fixed32{Value: 1}},
			driver.ProcAmpHue:        {Min: driver.Fixed32{Value: -180}, Max: driver.Fixed32{Value: 180}},
			driver.ProcAmpSaturation: {Max: driver.Fixed32{Value: 10}, Default: driver.Fixed32{Value: 1}},
		},
	}
}

// Option configures the simulated hardware.
type Option func(*config)

// WithAdapter sets the adapter identity reported to the capability policy.
func WithAdapter(info driver.AdapterInfo) Option {
	return func(c *config) { c.info = info }
}

// WithDisplayMode sets the display mode.
func WithDisplayMode(m driver.DisplayMode) Option {
	return func(c *config) { c.mode = m }
}

// WithComposition sets whether a desktop compositor is running.
func WithComposition(enabled bool) Option {
	return func(c *config) { c.composited = enabled }
}

// With10BitDisplay makes RGB10A2 a valid display format.
func With10BitDisplay(enabled bool) Option {
	return func(c *config) { c.tenBit = enabled }
}

// WithHardwareTnL sets the hardware transform and lighting capability.
func WithHardwareTnL(enabled bool) Option {
	return func(c *config) { c.hardwareTnL = enabled }
}

// WithProfiles replaces the decoder profile list, in enumeration order.
func WithProfiles(profiles ...driver.GUID) Option {
	return func(c *config) { c.profiles = profiles }
}

// WithDecoderConfigs replaces the decoder configuration list.
func WithDecoderConfigs(cfgs ...driver.DecoderConfig) Option {
	return func(c *config) { c.configs = cfgs }
}

// WithProcessorCaps replaces the processor capabilities.
func WithProcessorCaps(caps driver.ProcessorCaps) Option {
	return func(c *config) { c.procCaps = caps }
}

// WithoutProcessorService makes ProcessorService fail with ErrUnsupported.
func WithoutProcessorService() Option {
	return func(c *config) { c.noProcSvc = true }
}
