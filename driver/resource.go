// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// Format is a surface or texture pixel format.
type Format uint32

const (
	FormatUnknown Format = iota
	// FormatNV12 is 8-bit 4:2:0 with an interleaved CbCr plane.
	FormatNV12
	// FormatP010 is 10-bit 4:2:0 stored in the high bits of 16-bit words.
	FormatP010
	// FormatBGRA8 is 8-bit B, G, R, A in memory order (A8R8G8B8).
	FormatBGRA8
	// FormatRGB10A2 is a 10-bit-per-channel display format (A2R10G10B10).
	FormatRGB10A2
	// FormatBGRX8 is 8-bit B, G, R with an ignored byte (X8R8G8B8).
	FormatBGRX8
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatUnknown:
		return "Unknown"
	case FormatNV12:
		return "NV12"
	case FormatP010:
		return "P010"
	case FormatBGRA8:
		return "BGRA8"
	case FormatRGB10A2:
		return "RGB10A2"
	case FormatBGRX8:
		return "BGRX8"
	default:
		return "Invalid"
	}
}

// IsYUV reports whether f is a decode-target format.
func (f Format) IsYUV() bool {
	return f == FormatNV12 || f == FormatP010
}

// TextureFormat maps RGB formats onto gputypes. YUV formats have no
// single-plane equivalent and map to TextureFormatUndefined.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatBGRA8, FormatBGRX8:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatRGB10A2:
		return gputypes.TextureFormatRGB10A2Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// Surface is a 2D image owned by the device: decode targets, the back
// buffer, or any other render target.
type Surface interface {
	Width() int
	Height() int
	Format() Format
	Release()
}

// LockedRect is CPU access to a locked texture level.
type LockedRect struct {
	Pitch int
	Pix   []byte
}

// Texture is a dynamic CPU-writable texture.
type Texture interface {
	Width() int
	Height() int

	// Lock maps level 0 for writing, discarding previous contents.
	Lock() (LockedRect, error)
	Unlock() error

	Release()
}

// VertexBuffer is a dynamic write-only vertex buffer.
type VertexBuffer interface {
	Size() int

	// Lock maps the whole buffer for writing, discarding previous contents.
	Lock() ([]byte, error)
	Unlock() error

	Release()
}

// Vertex is a pre-transformed, textured vertex (XYZRHW | TEX1).
type Vertex struct {
	X, Y, Z, RHW float32
	U, V         float32
}

// VertexSize is the encoded size of a Vertex in bytes.
const VertexSize = 24

// PutVertices encodes vs into dst in native (little-endian) layout and
// returns the number of bytes written.
func PutVertices(dst []byte, vs []Vertex) int {
	n := 0
	for _, v := range vs {
		if n+VertexSize > len(dst) {
			break
		}
		for _, f := range [...]float32{v.X, v.Y, v.Z, v.RHW, v.U, v.V} {
			binary.LittleEndian.PutUint32(dst[n:], math.Float32bits(f))
			n += 4
		}
	}
	return n
}

// ReadVertices decodes up to len(dst) vertices from src.
func ReadVertices(dst []Vertex, src []byte) int {
	n := 0
	for i := range dst {
		off := i * VertexSize
		if off+VertexSize > len(src) {
			break
		}
		f := func(k int) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(src[off+4*k:]))
		}
		dst[i] = Vertex{X: f(0), Y: f(1), Z: f(2), RHW: f(3), U: f(4), V: f(5)}
		n++
	}
	return n
}

// TextureOp is the color operation of texture stage 0.
type TextureOp uint8

const (
	// TextureOpSelect outputs the texture color unchanged.
	TextureOpSelect TextureOp = iota
	// TextureOpModulate multiplies the texture by the diffuse color.
	TextureOpModulate
)

// RenderState is the fixed-function pipeline state used for overlays.
type RenderState struct {
	DepthTest bool
	Lighting  bool
	Cull      gputypes.CullMode

	// Blend is nil when blending is disabled.
	Blend *gputypes.BlendState

	TextureOp TextureOp
	MinFilter gputypes.FilterMode
	MagFilter gputypes.FilterMode
}
