// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package overlay draws auxiliary layers, such as connection status and
// debug statistics, on top of the video.
//
// Content is produced by a [Source], typically a [Manager], as BGRA
// surfaces. A [Compositor] uploads each fresh surface off the render
// goroutine and publishes it with a single atomic swap, so the render
// goroutine always draws either the complete old layer or the complete new
// one and never waits for an update in progress.
package overlay

import (
	"image"
)

// Type identifies an overlay layer. Layers are drawn in Type order.
type Type int

const (
	// StatusUpdate is the connection status layer, anchored bottom-left.
	StatusUpdate Type = iota
	// Debug is the statistics layer, anchored top-left.
	Debug

	// Count is the number of overlay types.
	Count
)

// String returns the overlay type name.
func (t Type) String() string {
	switch t {
	case StatusUpdate:
		return "StatusUpdate"
	case Debug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// Surface is overlay content: Height rows of Width BGRA pixels with
// straight alpha, Stride bytes apart.
type Surface struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewSurface allocates a transparent w x h surface with tightly packed rows.
func NewSurface(w, h int) *Surface {
	return &Surface{
		Width:  w,
		Height: h,
		Stride: w * 4,
		Pix:    make([]byte, w*h*4),
	}
}

// SurfaceFromNRGBA converts img to a BGRA surface.
func SurfaceFromNRGBA(img *image.NRGBA) *Surface {
	b := img.Bounds()
	s := NewSurface(b.Dx(), b.Dy())
	for y := 0; y < s.Height; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := s.Pix[y*s.Stride:]
		for x := 0; x < s.Width*4; x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return s
}

// Source supplies overlay content.
type Source interface {
	// IsEnabled reports whether layer t should be drawn.
	IsEnabled(t Type) bool

	// UpdatedSurface returns content for t produced since the last call,
	// or nil when nothing changed. Each surface is returned once.
	UpdatedSurface(t Type) *Surface
}
