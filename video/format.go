// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package video defines the codec formats, pixel formats and bitstream
// color metadata that flow from the decode framework into the renderer.
package video

// Format identifies a negotiated codec profile. Formats are bit flags so
// that a set of formats can be expressed as a Format mask.
type Format uint32

const (
	// H264 is H.264/AVC (any profile the decoder accepts).
	H264 Format = 1 << 0
	// HEVCMain is H.265/HEVC Main profile (8-bit).
	HEVCMain Format = 1 << 8
	// HEVCMain10 is H.265/HEVC Main10 profile (10-bit).
	HEVCMain10 Format = 1 << 9
)

// Masks grouping related formats.
const (
	// MaskH264 matches every H.264 variant.
	MaskH264 Format = 0x00FF
	// MaskHEVC matches every H.265/HEVC variant.
	MaskHEVC Format = 0xFF00
	// Mask10Bit matches formats that decode to 10-bit surfaces.
	Mask10Bit Format = HEVCMain10
)

// Has reports whether f shares any bit with mask.
func (f Format) Has(mask Format) bool {
	return f&mask != 0
}

// IsHEVC reports whether f is an HEVC variant.
func (f Format) IsHEVC() bool {
	return f.Has(MaskHEVC)
}

// Is10Bit reports whether f requires 10-bit decode targets and a 10-bit
// capable display format.
func (f Format) Is10Bit() bool {
	return f.Has(Mask10Bit)
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case H264:
		return "H264"
	case HEVCMain:
		return "HEVCMain"
	case HEVCMain10:
		return "HEVCMain10"
	case 0:
		return "None"
	default:
		return "Mask"
	}
}

// PixelFormat is the frame pixel format reported by the decode framework.
type PixelFormat uint8

const (
	// PixelFormatNone means the decoder has not chosen a format.
	PixelFormatNone PixelFormat = iota
	// PixelFormatDXVA2 is an opaque hardware decode surface.
	PixelFormatDXVA2
	// PixelFormatNV12 is 8-bit 4:2:0 semi-planar in system memory.
	PixelFormatNV12
	// PixelFormatP010 is 10-bit 4:2:0 semi-planar in system memory.
	PixelFormatP010
	// PixelFormatYUV420P is 8-bit planar 4:2:0 in system memory.
	PixelFormatYUV420P
)

// String returns the pixel format name.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatNone:
		return "None"
	case PixelFormatDXVA2:
		return "DXVA2"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatP010:
		return "P010"
	case PixelFormatYUV420P:
		return "YUV420P"
	default:
		return "Unknown"
	}
}

// Colorspace is the YUV->RGB conversion the renderer applies when it
// cannot honor per-frame color metadata.
type Colorspace uint8

const (
	// ColorspaceRec601 is ITU-R BT.601.
	ColorspaceRec601 Colorspace = iota
	// ColorspaceRec709 is ITU-R BT.709.
	ColorspaceRec709
	// ColorspaceRec2020 is ITU-R BT.2020.
	ColorspaceRec2020
)

// String returns the colorspace name.
func (c Colorspace) String() string {
	switch c {
	case ColorspaceRec601:
		return "Rec601"
	case ColorspaceRec709:
		return "Rec709"
	case ColorspaceRec2020:
		return "Rec2020"
	default:
		return "Unknown"
	}
}
