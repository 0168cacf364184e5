// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"encoding/binary"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/videorender/driver"
)

// Surface is a CPU surface. YUV surfaces hold a luma plane followed by an
// interleaved CbCr plane at half vertical resolution; RGB surfaces wrap an
// *image.RGBA.
type Surface struct {
	width  int
	height int
	format driver.Format

	rgba *image.RGBA

	y      []byte
	uv     []byte
	stride int

	released atomic.Bool
}

func newRGBSurface(w, h int, format driver.Format) *Surface {
	return &Surface{
		width:  w,
		height: h,
		format: format,
		rgba:   image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

func newYUVSurface(w, h int, format driver.Format) *Surface {
	bpp := 1
	if format == driver.FormatP010 {
		bpp = 2
	}
	stride := w * bpp
	return &Surface{
		width:  w,
		height: h,
		format: format,
		y:      make([]byte, stride*h),
		uv:     make([]byte, stride*((h+1)/2)),
		stride: stride,
	}
}

// Width implements driver.Surface.
func (s *Surface) Width() int { return s.width }

// Height implements driver.Surface.
func (s *Surface) Height() int { return s.height }

// Format implements driver.Surface.
func (s *Surface) Format() driver.Format { return s.format }

// Release implements driver.Surface.
func (s *Surface) Release() { s.released.Store(true) }

// Released reports whether Release was called.
func (s *Surface) Released() bool { return s.released.Load() }

// Image returns the pixels of an RGB surface, or nil for YUV surfaces.
func (s *Surface) Image() *image.RGBA { return s.rgba }

// Planes returns the luma and chroma planes of a YUV surface and their
// row stride in bytes.
func (s *Surface) Planes() (y, uv []byte, stride int) {
	return s.y, s.uv, s.stride
}

// Fill writes img into a YUV surface with full-range BT.601 coefficients,
// the inverse of the raw-copy conversion. Chroma is taken from the top
// left pixel of every 2x2 block.
func (s *Surface) Fill(img image.Image) {
	if !s.format.IsYUV() {
		return
	}
	b := img.Bounds()
	w := min(b.Dx(), s.width)
	h := min(b.Dy(), s.height)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			r, g, bl, _ := img.At(b.Min.X+col, b.Min.Y+row).RGBA()
			yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			s.put(s.y, row, col, yy)
			if row%2 == 0 && col%2 == 0 && col+1 < s.width {
				s.put(s.uv, row/2, col, cb)
				s.put(s.uv, row/2, col+1, cr)
			}
		}
	}
}

func (s *Surface) put(plane []byte, row, col int, v uint8) {
	if s.format == driver.FormatP010 {
		binary.LittleEndian.PutUint16(plane[row*s.stride+col*2:], uint16(v)<<8)
		return
	}
	plane[row*s.stride+col] = v
}

func (s *Surface) get(plane []byte, row, col int) uint8 {
	if s.format == driver.FormatP010 {
		return uint8(binary.LittleEndian.Uint16(plane[row*s.stride+col*2:]) >> 8)
	}
	return plane[row*s.stride+col]
}

// sample returns the Y, Cb, Cr triple at (x, y).
func (s *Surface) sample(x, y int) (uint8, uint8, uint8) {
	cx := x &^ 1
	return s.get(s.y, y, x), s.get(s.uv, y/2, cx), s.get(s.uv, y/2, cx+1)
}

// toRGBA converts the r region of a YUV surface (or copies it from an
// RGB surface) using conv.
func (s *Surface) toRGBA(r image.Rectangle, conv converter) *image.RGBA {
	r = r.Intersect(image.Rect(0, 0, s.width, s.height))
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	if s.rgba != nil {
		for row := 0; row < r.Dy(); row++ {
			src := s.rgba.Pix[s.rgba.PixOffset(r.Min.X, r.Min.Y+row):]
			copy(out.Pix[row*out.Stride:row*out.Stride+r.Dx()*4], src[:r.Dx()*4])
		}
		return out
	}
	for row := 0; row < r.Dy(); row++ {
		for col := 0; col < r.Dx(); col++ {
			yy, cb, cr := s.sample(r.Min.X+col, r.Min.Y+row)
			out.SetRGBA(col, row, conv(yy, cb, cr))
		}
	}
	return out
}

// converter maps one YCbCr sample to RGB.
type converter func(y, cb, cr uint8) color.RGBA

// rawConvert is the fixed conversion of the raw-copy path.
func rawConvert(y, cb, cr uint8) color.RGBA {
	r, g, b := color.YCbCrToRGB(y, cb, cr)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// matrixConverter builds a conversion from a sample's color description.
func matrixConverter(f driver.SampleFormat) converter {
	kr, kb := 0.299, 0.114
	switch f.Matrix {
	case driver.TransferMatrixBT709:
		kr, kb = 0.2126, 0.0722
	case driver.TransferMatrixSMPTE240M:
		kr, kb = 0.212, 0.087
	}
	limited := f.NominalRange == driver.NominalRange16_235
	return func(y, cb, cr uint8) color.RGBA {
		var yf, cbf, crf float64
		if limited {
			yf = (float64(y) - 16) / 219
			cbf = (float64(cb) - 128) / 224
			crf = (float64(cr) - 128) / 224
		} else {
			yf = float64(y) / 255
			cbf = (float64(cb) - 128) / 255
			crf = (float64(cr) - 128) / 255
		}
		r := yf + 2*(1-kr)*crf
		b := yf + 2*(1-kb)*cbf
		g := (yf - kr*r - kb*b) / (1 - kr - kb)
		return color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: 0xFF}
	}
}

func clamp8(v float64) uint8 {
	v = v*255 + 0.5
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
