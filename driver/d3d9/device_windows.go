// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d9

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

// IDirect3DDevice9Ex vtable slots.
const (
	devGetBackBuffer          = 18
	devCreateTexture          = 23
	devCreateVertexBuffer     = 26
	devStretchRect            = 34
	devBeginScene             = 41
	devEndScene               = 42
	devClear                  = 43
	devSetRenderState         = 57
	devSetTexture             = 65
	devSetTextureStageState   = 67
	devSetSamplerState        = 69
	devDrawPrimitive          = 81
	devSetFVF                 = 89
	devSetStreamSource        = 100
	devPresentEx              = 121
	devSetMaximumFrameLatency = 126
)

// IDirect3DSurface9, IDirect3DTexture9 and IDirect3DVertexBuffer9 slots.
const (
	surfGetDesc = 12
	texLockRect = 19
	texUnlock   = 20
	vbLock      = 11
	vbUnlock    = 12
)

// D3DRENDERSTATETYPE values.
const (
	d3drsZEnable                  = 7
	d3drsSrcBlend                 = 19
	d3drsDestBlend                = 20
	d3drsCullMode                 = 22
	d3drsAlphaBlendEnable         = 27
	d3drsLighting                 = 137
	d3drsBlendOp                  = 171
	d3drsSeparateAlphaBlendEnable = 206
	d3drsSrcBlendAlpha            = 207
	d3drsDestBlendAlpha           = 208
	d3drsBlendOpAlpha             = 209
)

// Texture stage and sampler states.
const (
	d3dtssColorOp   = 1
	d3dtssColorArg1 = 2
	d3dtssColorArg2 = 3
	d3dtssAlphaOp   = 4
	d3dtssAlphaArg1 = 5
	d3dtssAlphaArg2 = 6

	d3dtopSelectArg1 = 2
	d3dtopModulate   = 4

	d3dtaDiffuse = 0
	d3dtaTexture = 2

	d3dsampMagFilter = 5
	d3dsampMinFilter = 6
)

const (
	d3dclearTarget      = 0x1
	d3dpresentDoNotWait = 0x1

	d3dusageWriteOnly = 0x8
	d3dusageDynamic   = 0x200
	d3dpoolDefault    = 0
	d3dlockDiscard    = 0x2000

	fvfXYZRHWTex1 = 0x004 | 0x100
)

// surfaceDesc is D3DSURFACE_DESC.
type surfaceDesc struct {
	Format             uint32
	Type               uint32
	Usage              uint32
	Pool               uint32
	MultiSampleType    uint32
	MultiSampleQuality uint32
	Width              uint32
	Height             uint32
}

// lockedRect is D3DLOCKED_RECT.
type lockedRect struct {
	Pitch int32
	Bits  unsafe.Pointer
}

type device struct {
	dev *object
}

func (d *device) BackBuffer() (driver.Surface, error) {
	var s *object
	if err := d.dev.hr(devGetBackBuffer, 0, 0, 0, uintptr(unsafe.Pointer(&s))); err != nil {
		return nil, fmt.Errorf("GetBackBuffer: %w", err)
	}
	bb, err := describe(s)
	if err != nil {
		return nil, err
	}
	return bb, nil
}

func (d *device) SetMaximumFrameLatency(n int) error {
	return d.dev.hr(devSetMaximumFrameLatency, uintptr(n))
}

func (d *device) Clear(c gputypes.Color) error {
	// Z is a float argument passed on the stack, so its bit pattern (0)
	// is passed as an integer.
	return d.dev.hr(devClear, 0, 0, d3dclearTarget, uintptr(toD3DColor(c)), 0, 0)
}

func (d *device) BeginScene() error { return d.dev.hr(devBeginScene) }

func (d *device) EndScene() error { return d.dev.hr(devEndScene) }

func (d *device) Present(flags driver.PresentFlags) error {
	f := uintptr(0)
	if flags&driver.PresentDoNotWait != 0 {
		f |= d3dpresentDoNotWait
	}
	return d.dev.hr(devPresentEx, 0, 0, 0, 0, f)
}

func (d *device) StretchRect(src driver.Surface, srcRect image.Rectangle, dst driver.Surface, dstRect image.Rectangle, filter gputypes.FilterMode) error {
	s, err := unwrapSurface(src)
	if err != nil {
		return err
	}
	t, err := unwrapSurface(dst)
	if err != nil {
		return err
	}
	sr, dr := toRect(srcRect), toRect(dstRect)
	return d.dev.hr(devStretchRect,
		uintptr(unsafe.Pointer(s.obj)), uintptr(unsafe.Pointer(&sr)),
		uintptr(unsafe.Pointer(t.obj)), uintptr(unsafe.Pointer(&dr)),
		uintptr(toD3DFilter(filter)))
}

func (d *device) CreateTexture(width, height int, format driver.Format) (driver.Texture, error) {
	var t *object
	err := d.dev.hr(devCreateTexture,
		uintptr(width), uintptr(height), 1,
		d3dusageDynamic, uintptr(toD3DFormat(format)), d3dpoolDefault,
		uintptr(unsafe.Pointer(&t)), 0)
	if err != nil {
		return nil, fmt.Errorf("CreateTexture: %w", err)
	}
	return &texture{obj: t, width: width, height: height}, nil
}

func (d *device) CreateVertexBuffer(size int) (driver.VertexBuffer, error) {
	var vb *object
	err := d.dev.hr(devCreateVertexBuffer,
		uintptr(size), d3dusageWriteOnly, fvfXYZRHWTex1, d3dpoolDefault,
		uintptr(unsafe.Pointer(&vb)), 0)
	if err != nil {
		return nil, fmt.Errorf("CreateVertexBuffer: %w", err)
	}
	return &vertexBuffer{obj: vb, size: size}, nil
}

type state struct {
	kind  int
	index uintptr
	value uint32
}

func (d *device) SetRenderState(rs *driver.RenderState) error {
	states := []state{
		{devSetRenderState, d3drsZEnable, uint32(boolArg(rs.DepthTest))},
		{devSetRenderState, d3drsLighting, uint32(boolArg(rs.Lighting))},
		{devSetRenderState, d3drsCullMode, toD3DCull(rs.Cull)},
		{devSetRenderState, d3drsAlphaBlendEnable, uint32(boolArg(rs.Blend != nil))},
	}
	if b := rs.Blend; b != nil {
		blend, err := blendStates(b)
		if err != nil {
			return err
		}
		states = append(states, blend...)
	}

	op := uint32(d3dtopSelectArg1)
	if rs.TextureOp == driver.TextureOpModulate {
		op = d3dtopModulate
	}
	states = append(states,
		state{devSetTextureStageState, d3dtssColorOp, op},
		state{devSetTextureStageState, d3dtssColorArg1, d3dtaTexture},
		state{devSetTextureStageState, d3dtssColorArg2, d3dtaDiffuse},
		state{devSetTextureStageState, d3dtssAlphaOp, op},
		state{devSetTextureStageState, d3dtssAlphaArg1, d3dtaTexture},
		state{devSetTextureStageState, d3dtssAlphaArg2, d3dtaDiffuse},
		state{devSetSamplerState, d3dsampMinFilter, toD3DFilter(rs.MinFilter)},
		state{devSetSamplerState, d3dsampMagFilter, toD3DFilter(rs.MagFilter)},
	)

	for _, s := range states {
		var err error
		if s.kind == devSetRenderState {
			err = d.dev.hr(s.kind, s.index, uintptr(s.value))
		} else {
			err = d.dev.hr(s.kind, 0, s.index, uintptr(s.value))
		}
		if err != nil {
			return fmt.Errorf("set state %d/%d: %w", s.kind, s.index, err)
		}
	}
	return d.dev.hr(devSetFVF, fvfXYZRHWTex1)
}

func blendStates(b *gputypes.BlendState) ([]state, error) {
	var vals [6]uint32
	var err error
	for i, conv := range []func() (uint32, error){
		func() (uint32, error) { return toD3DBlend(b.Color.SrcFactor) },
		func() (uint32, error) { return toD3DBlend(b.Color.DstFactor) },
		func() (uint32, error) { return toD3DBlendOp(b.Color.Operation) },
		func() (uint32, error) { return toD3DBlend(b.Alpha.SrcFactor) },
		func() (uint32, error) { return toD3DBlend(b.Alpha.DstFactor) },
		func() (uint32, error) { return toD3DBlendOp(b.Alpha.Operation) },
	} {
		if vals[i], err = conv(); err != nil {
			return nil, err
		}
	}
	return []state{
		{devSetRenderState, d3drsSrcBlend, vals[0]},
		{devSetRenderState, d3drsDestBlend, vals[1]},
		{devSetRenderState, d3drsBlendOp, vals[2]},
		{devSetRenderState, d3drsSeparateAlphaBlendEnable, uint32(boolArg(b.Alpha != b.Color))},
		{devSetRenderState, d3drsSrcBlendAlpha, vals[3]},
		{devSetRenderState, d3drsDestBlendAlpha, vals[4]},
		{devSetRenderState, d3drsBlendOpAlpha, vals[5]},
	}, nil
}

func (d *device) SetTexture(stage int, t driver.Texture) error {
	var p uintptr
	if t != nil {
		tex, ok := t.(*texture)
		if !ok {
			return fmt.Errorf("%w: foreign texture %T", driver.ErrInvalidCall, t)
		}
		p = uintptr(unsafe.Pointer(tex.obj))
	}
	return d.dev.hr(devSetTexture, uintptr(stage), p)
}

func (d *device) SetStreamSource(vb driver.VertexBuffer, stride int) error {
	b, ok := vb.(*vertexBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign vertex buffer %T", driver.ErrInvalidCall, vb)
	}
	return d.dev.hr(devSetStreamSource, 0, uintptr(unsafe.Pointer(b.obj)), 0, uintptr(stride))
}

func (d *device) DrawPrimitive(topology gputypes.PrimitiveTopology, start, count int) error {
	return d.dev.hr(devDrawPrimitive, uintptr(toD3DPrimitive(topology)), uintptr(start), uintptr(count))
}

func (d *device) DecoderService() (driver.DecoderService, error) {
	svc, err := createVideoService(d.dev, &iidDirectXVideoDecoderService)
	if err != nil {
		return nil, err
	}
	return &decoderService{obj: svc}, nil
}

func (d *device) ProcessorService() (driver.ProcessorService, error) {
	svc, err := createVideoService(d.dev, &iidDirectXVideoProcessorService)
	if err != nil {
		return nil, err
	}
	return &processorService{obj: svc}, nil
}

func (d *device) Release() {
	d.dev.release()
	d.dev = nil
}

type surface struct {
	obj    *object
	width  int
	height int
	format driver.Format
}

// describe wraps s, taking over its reference.
func describe(s *object) (*surface, error) {
	var desc surfaceDesc
	if err := s.hr(surfGetDesc, uintptr(unsafe.Pointer(&desc))); err != nil {
		s.release()
		return nil, fmt.Errorf("GetDesc: %w", err)
	}
	return &surface{
		obj:    s,
		width:  int(desc.Width),
		height: int(desc.Height),
		format: fromD3DFormat(desc.Format),
	}, nil
}

func unwrapSurface(s driver.Surface) (*surface, error) {
	ds, ok := s.(*surface)
	if !ok || ds.obj == nil {
		return nil, fmt.Errorf("%w: foreign or released surface %T", driver.ErrInvalidCall, s)
	}
	return ds, nil
}

func (s *surface) Width() int            { return s.width }
func (s *surface) Height() int           { return s.height }
func (s *surface) Format() driver.Format { return s.format }

func (s *surface) Release() {
	s.obj.release()
	s.obj = nil
}

type texture struct {
	obj    *object
	width  int
	height int
}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }

func (t *texture) Lock() (driver.LockedRect, error) {
	var lr lockedRect
	if err := t.obj.hr(texLockRect, 0, uintptr(unsafe.Pointer(&lr)), 0, d3dlockDiscard); err != nil {
		return driver.LockedRect{}, fmt.Errorf("LockRect: %w", err)
	}
	pitch := int(lr.Pitch)
	return driver.LockedRect{
		Pitch: pitch,
		Pix:   unsafe.Slice((*byte)(lr.Bits), pitch*t.height),
	}, nil
}

func (t *texture) Unlock() error { return t.obj.hr(texUnlock, 0) }

func (t *texture) Release() {
	t.obj.release()
	t.obj = nil
}

type vertexBuffer struct {
	obj  *object
	size int
}

func (b *vertexBuffer) Size() int { return b.size }

func (b *vertexBuffer) Lock() ([]byte, error) {
	var p unsafe.Pointer
	if err := b.obj.hr(vbLock, 0, 0, uintptr(unsafe.Pointer(&p)), 0); err != nil {
		return nil, fmt.Errorf("Lock: %w", err)
	}
	return unsafe.Slice((*byte)(p), b.size), nil
}

func (b *vertexBuffer) Unlock() error { return b.obj.hr(vbUnlock) }

func (b *vertexBuffer) Release() {
	b.obj.release()
	b.obj = nil
}

func toRect(r image.Rectangle) rect {
	return rect{
		Left:   int32(r.Min.X),
		Top:    int32(r.Min.Y),
		Right:  int32(r.Max.X),
		Bottom: int32(r.Max.Y),
	}
}
