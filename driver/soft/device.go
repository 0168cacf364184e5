// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/videorender/driver"
)

// Device is the soft presentation device.
type Device struct {
	drv    *Driver
	params driver.PresentParameters

	mu       sync.Mutex
	back     *Surface
	front    *image.RGBA
	inScene  bool
	state    driver.RenderState
	texture  *Texture
	stream   *VertexBuffer
	stride   int
	latency  int
	presents int
	draws    int

	released atomic.Bool
}

func newDevice(drv *Driver, p driver.PresentParameters, format driver.Format) *Device {
	back := newRGBSurface(p.Width, p.Height, format)
	return &Device{
		drv:    drv,
		params: p,
		back:   back,
		front:  image.NewRGBA(back.rgba.Bounds()),
	}
}

// Params returns the parameters the device was created with.
func (d *Device) Params() driver.PresentParameters { return d.params }

// Released reports whether Release was called.
func (d *Device) Released() bool { return d.released.Load() }

// FrameLatency returns the last value passed to SetMaximumFrameLatency.
func (d *Device) FrameLatency() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latency
}

// Presents returns the number of successful presents.
func (d *Device) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// Draws returns the number of successful draw calls.
func (d *Device) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

// RenderState returns the last state set with SetRenderState.
func (d *Device) RenderState() driver.RenderState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Snapshot returns a copy of the last presented frame.
func (d *Device) Snapshot() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := image.NewRGBA(d.front.Bounds())
	copy(out.Pix, d.front.Pix)
	return out
}

// BackBuffer implements driver.Device.
func (d *Device) BackBuffer() (driver.Surface, error) {
	if err := d.drv.faults.hit(OpBackBuffer); err != nil {
		return nil, err
	}
	return d.back, nil
}

// SetMaximumFrameLatency implements driver.Device.
func (d *Device) SetMaximumFrameLatency(n int) error {
	if err := d.drv.faults.hit(OpFrameLatency); err != nil {
		return err
	}
	d.mu.Lock()
	d.latency = n
	d.mu.Unlock()
	return nil
}

// Clear implements driver.Device.
func (d *Device) Clear(c gputypes.Color) error {
	if err := d.drv.faults.hit(OpClear); err != nil {
		return err
	}
	px := color.RGBA{R: clamp8(c.R), G: clamp8(c.G), B: clamp8(c.B), A: clamp8(c.A)}
	d.mu.Lock()
	defer d.mu.Unlock()
	img := d.back.rgba
	xdraw.Draw(img, img.Bounds(), image.NewUniform(px), image.Point{}, xdraw.Src)
	return nil
}

// BeginScene implements driver.Device.
func (d *Device) BeginScene() error {
	if err := d.drv.faults.hit(OpBeginScene); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inScene {
		return fmt.Errorf("soft: BeginScene inside a scene: %w", driver.ErrInvalidCall)
	}
	d.inScene = true
	return nil
}

// EndScene implements driver.Device.
func (d *Device) EndScene() error {
	if err := d.drv.faults.hit(OpEndScene); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.inScene {
		return fmt.Errorf("soft: EndScene outside a scene: %w", driver.ErrInvalidCall)
	}
	d.inScene = false
	return nil
}

// Present implements driver.Device. With PresentDoNotWait an injected
// OpPresent fault of ErrWasStillDrawing behaves like a busy queue.
func (d *Device) Present(flags driver.PresentFlags) error {
	if err := d.drv.faults.hit(OpPresent); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inScene {
		return fmt.Errorf("soft: Present inside a scene: %w", driver.ErrInvalidCall)
	}
	copy(d.front.Pix, d.back.rgba.Pix)
	d.presents++
	return nil
}

// StretchRect implements driver.Device. YUV sources are converted with a
// fixed full-range BT.601 matrix.
func (d *Device) StretchRect(src driver.Surface, srcRect image.Rectangle, dst driver.Surface, dstRect image.Rectangle, filter gputypes.FilterMode) error {
	if err := d.drv.faults.hit(OpStretchRect); err != nil {
		return err
	}
	s, ok := src.(*Surface)
	if !ok {
		return fmt.Errorf("soft: foreign source surface %T: %w", src, driver.ErrInvalidCall)
	}
	t, ok := dst.(*Surface)
	if !ok || t.rgba == nil {
		return fmt.Errorf("soft: destination is not a render target: %w", driver.ErrInvalidCall)
	}
	if s.Released() {
		return fmt.Errorf("soft: source surface released: %w", driver.ErrInvalidCall)
	}
	rgb := s.toRGBA(srcRect, rawConvert)
	d.mu.Lock()
	defer d.mu.Unlock()
	scaler(filter).Scale(t.rgba, dstRect, rgb, rgb.Bounds(), xdraw.Src, nil)
	return nil
}

// CreateTexture implements driver.Device.
func (d *Device) CreateTexture(width, height int, format driver.Format) (driver.Texture, error) {
	if err := d.drv.faults.hit(OpCreateTexture); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || format != driver.FormatBGRA8 {
		return nil, fmt.Errorf("soft: texture %dx%d %v: %w", width, height, format, driver.ErrUnsupported)
	}
	return newTexture(d.drv, width, height), nil
}

// CreateVertexBuffer implements driver.Device.
func (d *Device) CreateVertexBuffer(size int) (driver.VertexBuffer, error) {
	if err := d.drv.faults.hit(OpCreateVertexBuffer); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, driver.ErrInvalidCall
	}
	return newVertexBuffer(d.drv, size), nil
}

// SetRenderState implements driver.Device.
func (d *Device) SetRenderState(state *driver.RenderState) error {
	if err := d.drv.faults.hit(OpRenderState); err != nil {
		return err
	}
	d.mu.Lock()
	d.state = *state
	d.mu.Unlock()
	return nil
}

// SetTexture implements driver.Device.
func (d *Device) SetTexture(stage int, t driver.Texture) error {
	if stage != 0 {
		return driver.ErrUnsupported
	}
	var tex *Texture
	if t != nil {
		var ok bool
		if tex, ok = t.(*Texture); !ok {
			return driver.ErrInvalidCall
		}
	}
	d.mu.Lock()
	d.texture = tex
	d.mu.Unlock()
	return nil
}

// SetStreamSource implements driver.Device.
func (d *Device) SetStreamSource(vb driver.VertexBuffer, stride int) error {
	var buf *VertexBuffer
	if vb != nil {
		var ok bool
		if buf, ok = vb.(*VertexBuffer); !ok {
			return driver.ErrInvalidCall
		}
	}
	d.mu.Lock()
	d.stream = buf
	d.stride = stride
	d.mu.Unlock()
	return nil
}

// DrawPrimitive implements driver.Device. Only screen-aligned quads
// drawn as a two-triangle strip are supported, which is all overlays need.
func (d *Device) DrawPrimitive(topology gputypes.PrimitiveTopology, start, count int) error {
	if err := d.drv.faults.hit(OpDraw); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.inScene {
		return fmt.Errorf("soft: draw outside a scene: %w", driver.ErrInvalidCall)
	}
	if topology != gputypes.PrimitiveTopologyTriangleStrip || count != 2 {
		return fmt.Errorf("soft: %v x%d: %w", topology, count, driver.ErrUnsupported)
	}
	if d.texture == nil || d.stream == nil || d.stride != driver.VertexSize {
		return fmt.Errorf("soft: draw without texture or stream: %w", driver.ErrInvalidCall)
	}
	if d.texture.Released() || d.stream.Released() {
		return fmt.Errorf("soft: draw with released resources: %w", driver.ErrInvalidCall)
	}

	var vs [4]driver.Vertex
	if n := driver.ReadVertices(vs[:], d.stream.data[start*driver.VertexSize:]); n != len(vs) {
		return fmt.Errorf("soft: short vertex stream: %w", driver.ErrInvalidCall)
	}
	dst := image.Rect(int(vs[0].X), int(vs[0].Y), int(vs[3].X), int(vs[3].Y))

	src := d.texture.nrgba()
	op := xdraw.Src
	if d.state.Blend != nil {
		op = xdraw.Over
	}
	scaler(d.state.MagFilter).Scale(d.back.rgba, dst, src, src.Bounds(), op, nil)
	d.draws++
	return nil
}

// DecoderService implements driver.Device.
func (d *Device) DecoderService() (driver.DecoderService, error) {
	if err := d.drv.faults.hit(OpDecoderService); err != nil {
		return nil, err
	}
	return &decoderService{drv: d.drv}, nil
}

// ProcessorService implements driver.Device.
func (d *Device) ProcessorService() (driver.ProcessorService, error) {
	if err := d.drv.faults.hit(OpProcessorService); err != nil {
		return nil, err
	}
	if d.drv.cfg.noProcSvc {
		return nil, driver.ErrUnsupported
	}
	return &processorService{dev: d}, nil
}

// Release implements driver.Device.
func (d *Device) Release() {
	d.released.Store(true)
}

func scaler(filter gputypes.FilterMode) xdraw.Scaler {
	if filter == gputypes.FilterModeLinear {
		return xdraw.ApproxBiLinear
	}
	return xdraw.NearestNeighbor
}
