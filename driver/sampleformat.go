// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

// SampleLayout describes frame structure.
type SampleLayout uint8

const (
	SampleUnknown          SampleLayout = 0
	SampleProgressiveFrame SampleLayout = 2
)

// ChromaSiting is a bit set describing chroma sample placement.
// The zero value is unknown.
type ChromaSiting uint8

const (
	ChromaVerticallyAlignedPlanes ChromaSiting = 0x1
	ChromaVerticallyCosited       ChromaSiting = 0x2
	ChromaHorizontallyCosited     ChromaSiting = 0x4
)

// NominalRange is the sample quantization range.
type NominalRange uint8

const (
	NominalRangeUnknown NominalRange = 0
	NominalRange0_255   NominalRange = 1
	NominalRange16_235  NominalRange = 2
)

// TransferMatrix is the YUV->RGB conversion matrix.
type TransferMatrix uint8

const (
	TransferMatrixUnknown   TransferMatrix = 0
	TransferMatrixBT709     TransferMatrix = 1
	TransferMatrixBT601     TransferMatrix = 2
	TransferMatrixSMPTE240M TransferMatrix = 3
)

// Lighting is the intended viewing environment.
type Lighting uint8

const LightingUnknown Lighting = 0

// Primaries are the color primaries.
type Primaries uint8

const (
	PrimariesUnknown   Primaries = 0
	PrimariesBT709     Primaries = 2
	PrimariesSysM      Primaries = 3
	PrimariesSysBG     Primaries = 4
	PrimariesSMPTE170M Primaries = 5
	PrimariesSMPTE240M Primaries = 6
)

// TransferFunction is the opto-electronic transfer function.
type TransferFunction uint8

const (
	TransferUnknown TransferFunction = 0
	Transfer10      TransferFunction = 1
	Transfer22      TransferFunction = 4
	Transfer709     TransferFunction = 5
	Transfer240M    TransferFunction = 6
	TransferSRGB    TransferFunction = 7
	Transfer28      TransferFunction = 8
)

// SampleFormat is the extended color description of a video sample.
type SampleFormat struct {
	Layout       SampleLayout
	Chroma       ChromaSiting
	NominalRange NominalRange
	Matrix       TransferMatrix
	Lighting     Lighting
	Primaries    Primaries
	Transfer     TransferFunction
}

// Pack encodes f as a DXVA2_ExtendedFormat bitfield.
func (f SampleFormat) Pack() uint32 {
	return uint32(f.Layout)&0xFF |
		(uint32(f.Chroma)&0xF)<<8 |
		(uint32(f.NominalRange)&0x7)<<12 |
		(uint32(f.Matrix)&0x7)<<15 |
		(uint32(f.Lighting)&0xF)<<18 |
		(uint32(f.Primaries)&0x1F)<<22 |
		(uint32(f.Transfer)&0x1F)<<27
}

// UnpackSampleFormat decodes a DXVA2_ExtendedFormat bitfield.
func UnpackSampleFormat(v uint32) SampleFormat {
	return SampleFormat{
		Layout:       SampleLayout(v & 0xFF),
		Chroma:       ChromaSiting(v >> 8 & 0xF),
		NominalRange: NominalRange(v >> 12 & 0x7),
		Matrix:       TransferMatrix(v >> 15 & 0x7),
		Lighting:     Lighting(v >> 18 & 0xF),
		Primaries:    Primaries(v >> 22 & 0x1F),
		Transfer:     TransferFunction(v >> 27 & 0x1F),
	}
}
