// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/videorender/driver"
)

// Texture is a BGRA texture with straight alpha.
type Texture struct {
	drv    *Driver
	width  int
	height int
	pitch  int

	mu     sync.Mutex
	pix    []byte
	locked bool

	released atomic.Bool
}

func newTexture(drv *Driver, w, h int) *Texture {
	// Pad rows to 64 bytes like a GPU allocation, so callers exercise
	// the stride-mismatch copy path.
	pitch := (w*4 + 63) &^ 63
	return &Texture{
		drv:    drv,
		width:  w,
		height: h,
		pitch:  pitch,
		pix:    make([]byte, pitch*h),
	}
}

// Width implements driver.Texture.
func (t *Texture) Width() int { return t.width }

// Height implements driver.Texture.
func (t *Texture) Height() int { return t.height }

// Pitch returns the row pitch in bytes.
func (t *Texture) Pitch() int { return t.pitch }

// Lock implements driver.Texture.
func (t *Texture) Lock() (driver.LockedRect, error) {
	if err := t.drv.faults.hit(OpLock); err != nil {
		return driver.LockedRect{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locked {
		return driver.LockedRect{}, driver.ErrInvalidCall
	}
	t.locked = true
	return driver.LockedRect{Pitch: t.pitch, Pix: t.pix}, nil
}

// Unlock implements driver.Texture.
func (t *Texture) Unlock() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.locked {
		return driver.ErrInvalidCall
	}
	t.locked = false
	return nil
}

// Release implements driver.Texture.
func (t *Texture) Release() { t.released.Store(true) }

// Released reports whether Release was called.
func (t *Texture) Released() bool { return t.released.Load() }

// nrgba returns the texture as an NRGBA image (BGRA swizzled to RGBA).
func (t *Texture) nrgba() *image.NRGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		src := t.pix[y*t.pitch : y*t.pitch+t.width*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+t.width*4]
		for x := 0; x < len(src); x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return out
}

// VertexBuffer is a CPU vertex buffer.
type VertexBuffer struct {
	drv  *Driver
	data []byte

	released atomic.Bool
}

func newVertexBuffer(drv *Driver, size int) *VertexBuffer {
	return &VertexBuffer{drv: drv, data: make([]byte, size)}
}

// Size implements driver.VertexBuffer.
func (b *VertexBuffer) Size() int { return len(b.data) }

// Lock implements driver.VertexBuffer.
func (b *VertexBuffer) Lock() ([]byte, error) {
	if err := b.drv.faults.hit(OpLock); err != nil {
		return nil, err
	}
	return b.data, nil
}

// Unlock implements driver.VertexBuffer.
func (b *VertexBuffer) Unlock() error { return nil }

// Release implements driver.VertexBuffer.
func (b *VertexBuffer) Release() { b.released.Store(true) }

// Released reports whether Release was called.
func (b *VertexBuffer) Released() bool { return b.released.Load() }
