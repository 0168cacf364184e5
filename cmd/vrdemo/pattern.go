// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/videorender/video"
)

// bt709Limited is the color description of the synthetic stream.
var bt709Limited = video.ColorMetadata{
	Range:     video.RangeMPEG,
	Primaries: video.PrimariesBT709,
	Transfer:  video.TransferBT709,
	Matrix:    video.MatrixBT709,
	Chroma:    video.ChromaLeft,
}

// bars are SMPTE-style 75% color bars.
var bars = []color.RGBA{
	{0xBF, 0xBF, 0xBF, 0xFF},
	{0xBF, 0xBF, 0x00, 0xFF},
	{0x00, 0xBF, 0xBF, 0xFF},
	{0x00, 0xBF, 0x00, 0xFF},
	{0xBF, 0x00, 0xBF, 0xFF},
	{0xBF, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0xBF, 0xFF},
}

// colorBars draws the bars scrolled left by frame pixels.
func colorBars(w, h, frame int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bw := max(w/len(bars), 1)
	for i := 0; i <= len(bars); i++ {
		x0 := i*bw - frame%bw
		r := image.Rect(x0, 0, x0+bw, h).Intersect(img.Bounds())
		xdraw.Draw(img, r, image.NewUniform(bars[(i+frame/bw)%len(bars)]), image.Point{}, xdraw.Src)
	}
	return img
}
