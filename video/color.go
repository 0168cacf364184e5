// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package video

// The enumerations below use the code points of ITU-T H.273 (and the
// FFmpeg AVCOL_* constants derived from it), so values coming straight out
// of a bitstream or a decode framework can be converted without a table.

// ColorRange is the quantization range of the luma and chroma samples.
type ColorRange uint8

const (
	RangeUnspecified ColorRange = 0
	// RangeMPEG is limited ("TV") range, 16-235 for 8-bit luma.
	RangeMPEG ColorRange = 1
	// RangeJPEG is full ("PC") range, 0-255 for 8-bit luma.
	RangeJPEG ColorRange = 2
)

// ColorPrimaries identifies the chromaticity of the source primaries.
type ColorPrimaries uint8

const (
	PrimariesBT709       ColorPrimaries = 1
	PrimariesUnspecified ColorPrimaries = 2
	PrimariesBT470M      ColorPrimaries = 4
	PrimariesBT470BG     ColorPrimaries = 5
	PrimariesSMPTE170M   ColorPrimaries = 6
	PrimariesSMPTE240M   ColorPrimaries = 7
	PrimariesFilm        ColorPrimaries = 8
	PrimariesBT2020      ColorPrimaries = 9
	PrimariesSMPTE428    ColorPrimaries = 10
	PrimariesSMPTE431    ColorPrimaries = 11
	PrimariesSMPTE432    ColorPrimaries = 12
)

// TransferCharacteristic identifies the opto-electronic transfer function.
type TransferCharacteristic uint8

const (
	TransferBT709        TransferCharacteristic = 1
	TransferUnspecified  TransferCharacteristic = 2
	TransferGamma22      TransferCharacteristic = 4
	TransferGamma28      TransferCharacteristic = 5
	TransferSMPTE170M    TransferCharacteristic = 6
	TransferSMPTE240M    TransferCharacteristic = 7
	TransferLinear       TransferCharacteristic = 8
	TransferLog          TransferCharacteristic = 9
	TransferLogSqrt      TransferCharacteristic = 10
	TransferIEC61966_2_4 TransferCharacteristic = 11
	TransferBT1361       TransferCharacteristic = 12
	TransferIEC61966_2_1 TransferCharacteristic = 13
	TransferBT2020_10    TransferCharacteristic = 14
	TransferBT2020_12    TransferCharacteristic = 15
	TransferSMPTE2084    TransferCharacteristic = 16
	TransferSMPTE428     TransferCharacteristic = 17
	TransferARIBSTDB67   TransferCharacteristic = 18
)

// MatrixCoefficients identifies the YUV<->RGB matrix.
type MatrixCoefficients uint8

const (
	MatrixRGB         MatrixCoefficients = 0
	MatrixBT709       MatrixCoefficients = 1
	MatrixUnspecified MatrixCoefficients = 2
	MatrixFCC         MatrixCoefficients = 4
	MatrixBT470BG     MatrixCoefficients = 5
	MatrixSMPTE170M   MatrixCoefficients = 6
	MatrixSMPTE240M   MatrixCoefficients = 7
	MatrixYCgCo       MatrixCoefficients = 8
	MatrixBT2020NCL   MatrixCoefficients = 9
	MatrixBT2020CL    MatrixCoefficients = 10
)

// ChromaLocation is the siting of chroma samples relative to luma.
type ChromaLocation uint8

const (
	ChromaUnspecified ChromaLocation = 0
	ChromaLeft        ChromaLocation = 1
	ChromaCenter      ChromaLocation = 2
	ChromaTopLeft     ChromaLocation = 3
	ChromaTop         ChromaLocation = 4
	ChromaBottomLeft  ChromaLocation = 5
	ChromaBottom      ChromaLocation = 6
)

// ColorMetadata is the per-frame color description carried by a decoded
// frame. The zero value means "everything unspecified".
type ColorMetadata struct {
	Range     ColorRange
	Primaries ColorPrimaries
	Transfer  TransferCharacteristic
	Matrix    MatrixCoefficients
	Chroma    ChromaLocation
}
