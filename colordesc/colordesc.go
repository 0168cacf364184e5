// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package colordesc maps bitstream color metadata onto the extended
// sample format understood by hardware video processors.
//
// The mapping is total: every input resolves to a defined value, and
// anything without a processor equivalent resolves to the field's
// "unknown" value so the driver falls back to its own default.
package colordesc

import (
	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/video"
)

// Describe returns the sample format for a progressive frame carrying md.
func Describe(md video.ColorMetadata) driver.SampleFormat {
	return driver.SampleFormat{
		Layout:       driver.SampleProgressiveFrame,
		Chroma:       Chroma(md.Chroma),
		NominalRange: Range(md.Range),
		Matrix:       Matrix(md.Matrix),
		Lighting:     driver.LightingUnknown,
		Primaries:    Primaries(md.Primaries),
		Transfer:     Transfer(md.Transfer),
	}
}

// Range maps the quantization range.
func Range(r video.ColorRange) driver.NominalRange {
	switch r {
	case video.RangeJPEG:
		return driver.NominalRange0_255
	case video.RangeMPEG:
		return driver.NominalRange16_235
	default:
		return driver.NominalRangeUnknown
	}
}

// Primaries maps the color primaries.
func Primaries(p video.ColorPrimaries) driver.Primaries {
	switch p {
	case video.PrimariesBT709:
		return driver.PrimariesBT709
	case video.PrimariesBT470M:
		return driver.PrimariesSysM
	case video.PrimariesBT470BG:
		return driver.PrimariesSysBG
	case video.PrimariesSMPTE170M:
		return driver.PrimariesSMPTE170M
	case video.PrimariesSMPTE240M:
		return driver.PrimariesSMPTE240M
	default:
		return driver.PrimariesUnknown
	}
}

// Transfer maps the transfer characteristic.
func Transfer(t video.TransferCharacteristic) driver.TransferFunction {
	switch t {
	case video.TransferSMPTE170M, video.TransferBT709:
		return driver.Transfer709
	case video.TransferLinear:
		return driver.Transfer10
	case video.TransferGamma22:
		return driver.Transfer22
	case video.TransferGamma28:
		return driver.Transfer28
	case video.TransferSMPTE240M:
		return driver.Transfer240M
	case video.TransferIEC61966_2_1:
		return driver.TransferSRGB
	default:
		return driver.TransferUnknown
	}
}

// Matrix maps the matrix coefficients.
func Matrix(m video.MatrixCoefficients) driver.TransferMatrix {
	switch m {
	case video.MatrixBT709:
		return driver.TransferMatrixBT709
	case video.MatrixBT470BG, video.MatrixSMPTE170M:
		return driver.TransferMatrixBT601
	case video.MatrixSMPTE240M:
		return driver.TransferMatrixSMPTE240M
	default:
		return driver.TransferMatrixUnknown
	}
}

// Chroma maps the chroma sample location.
func Chroma(c video.ChromaLocation) driver.ChromaSiting {
	switch c {
	case video.ChromaLeft:
		return driver.ChromaHorizontallyCosited | driver.ChromaVerticallyAlignedPlanes
	case video.ChromaCenter:
		return driver.ChromaVerticallyAlignedPlanes
	case video.ChromaTopLeft:
		return driver.ChromaHorizontallyCosited | driver.ChromaVerticallyCosited
	default:
		return 0
	}
}
