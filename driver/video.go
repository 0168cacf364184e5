// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"fmt"
	"image"
)

// GUID identifies decoder profiles, processor devices and encryption
// modes. The layout matches the Windows GUID structure.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// String formats g in registry form.
func (g GUID) String() string {
	return fmt.Sprintf("{%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		g.Data1, g.Data2, g.Data3,
		g.Data4[0], g.Data4[1], g.Data4[2], g.Data4[3],
		g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7])
}

// Decoder profiles.
var (
	ModeH264E      = GUID{0x1b81be68, 0xa0c7, 0x11d3, [8]byte{0xb9, 0x84, 0x00, 0xc0, 0x4f, 0x2e, 0x73, 0xc5}}
	ModeH264F      = GUID{0x1b81be69, 0xa0c7, 0x11d3, [8]byte{0xb9, 0x84, 0x00, 0xc0, 0x4f, 0x2e, 0x73, 0xc5}}
	ModeH264EIntel = GUID{0x604f8e68, 0x4951, 0x4c54, [8]byte{0x88, 0xfe, 0xab, 0xd2, 0x5c, 0x15, 0xb3, 0xd6}}
	ModeHEVCMain   = GUID{0x5b11d51b, 0x2f4c, 0x4452, [8]byte{0xbc, 0xc3, 0x09, 0xf2, 0xa1, 0x16, 0x0c, 0xc0}}
	ModeHEVCMain10 = GUID{0x107af0e0, 0xef1a, 0x4d19, [8]byte{0xab, 0xa8, 0x67, 0xa1, 0x63, 0x07, 0x3d, 0x13}}
)

// NoEncrypt is the "no content protection" encryption mode.
var NoEncrypt = GUID{0x1b81bed0, 0xa0c7, 0x11d3, [8]byte{0xb9, 0x84, 0x00, 0xc0, 0x4f, 0x2e, 0x73, 0xc5}}

// ProgressiveDevice is the progressive (no deinterlacing) processor device.
var ProgressiveDevice = GUID{0x5a54a0c9, 0xc7ec, 0x4bd9, [8]byte{0x8e, 0xde, 0xf3, 0xc7, 0x5d, 0xc4, 0x39, 0x3b}}

// VideoDesc describes the decoded video stream.
type VideoDesc struct {
	Width        int
	Height       int
	Format       Format
	SampleFormat SampleFormat
}

// DecoderConfig is a decoder configuration (DXVA2_ConfigPictureDecode).
type DecoderConfig struct {
	BitstreamEncryption GUID
	MBControlEncryption GUID
	ResidDiffEncryption GUID

	BitstreamRaw          uint32
	MBControlRasterOrder  uint32
	ResidDiffHost         uint32
	SpatialResid8         uint32
	Resid8Subtraction     uint32
	SpatialHost8or9Clip   uint32
	SpatialResidInterleav uint32
	IntraResidUnsigned    uint32
	ResidDiffAccelerator  uint32
	HostInverseScan       uint32
	SpecificIDCT          uint32
	FourGroupedCoefs      uint32

	MinRenderTargetBuffCount uint16
	DecoderSpecific          uint16
}

// DecoderService enumerates and creates hardware decoders.
type DecoderService interface {
	// DecoderProfiles lists the supported profile GUIDs in driver order.
	DecoderProfiles() ([]GUID, error)

	// DecoderConfigs lists the configurations of profile for desc.
	DecoderConfigs(profile GUID, desc *VideoDesc) ([]DecoderConfig, error)

	// CreateSurfaces allocates count decode targets.
	CreateSurfaces(width, height, count int, format Format) ([]Surface, error)

	// CreateDecoder creates a decoder bound to exactly targets.
	CreateDecoder(profile GUID, desc *VideoDesc, cfg *DecoderConfig, targets []Surface) (Decoder, error)

	Release()
}

// Decoder is a hardware decoder instance. It is driven by the external
// decode framework; the renderer only owns its lifetime.
type Decoder interface {
	Release()
}

// Processor device capability bits (ProcessorCaps.DeviceCaps).
const (
	VPDevEmulatedDXVA1  uint32 = 0x1
	VPDevHardwareDevice uint32 = 0x4
)

// Processor operation bits (ProcessorCaps.Operations).
const (
	ProcessYUV2RGB         uint32 = 0x1
	ProcessStretchX        uint32 = 0x2
	ProcessStretchY        uint32 = 0x4
	ProcessYUV2RGBExtended uint32 = 0x80
)

// ProcessorCaps is the capability set of a video processor device. The
// layout matches DXVA2_VideoProcessorCaps.
type ProcessorCaps struct {
	DeviceCaps         uint32
	InputPool          uint32
	NumForwardRefs     uint32
	NumBackwardRefs    uint32
	Reserved           uint32
	DeinterlaceTech    uint32
	ProcAmpControlCaps uint32
	Operations         uint32
	NoiseFilterTech    uint32
	DetailFilterTech   uint32
}

// ProcAmp selects a processing amplifier property.
type ProcAmp uint32

const (
	ProcAmpBrightness ProcAmp = 1
	ProcAmpContrast   ProcAmp = 2
	ProcAmpHue        ProcAmp = 4
	ProcAmpSaturation ProcAmp = 8
)

// Fixed32 is a signed 16.16 fixed-point value.
type Fixed32 struct {
	Fraction uint16
	Value    int16
}

// OpaqueAlpha is the fixed-point value 1.0.
var OpaqueAlpha = Fixed32{Fraction: 0, Value: 1}

// Float returns f as a float64.
func (f Fixed32) Float() float64 {
	return float64(f.Value) + float64(f.Fraction)/65536
}

// ValueRange is the range of a processing amplifier property.
type ValueRange struct {
	Min     Fixed32
	Max     Fixed32
	Default Fixed32
	Step    Fixed32
}

// ProcAmpValues holds one value per processing amplifier property.
type ProcAmpValues struct {
	Brightness Fixed32
	Contrast   Fixed32
	Hue        Fixed32
	Saturation Fixed32
}

// AYUVSample16 is a 16-bit-per-channel background color.
type AYUVSample16 struct {
	Cr, Cb, Y, Alpha uint16
}

// VideoSample is one input stream to a processor blit.
type VideoSample struct {
	Start, End  int64
	Format      SampleFormat
	Surface     Surface
	SrcRect     image.Rectangle
	DstRect     image.Rectangle
	PlanarAlpha Fixed32
}

// BltParams are the per-call processor parameters.
type BltParams struct {
	TargetFrame     int64
	TargetRect      image.Rectangle
	BackgroundColor AYUVSample16
	DestFormat      SampleFormat
	ProcAmp         ProcAmpValues
	Alpha           Fixed32
}

// ProcessorService creates hardware video processors.
type ProcessorService interface {
	ProcessorCaps(device GUID, desc *VideoDesc, target Format) (ProcessorCaps, error)
	ProcAmpRange(device GUID, desc *VideoDesc, target Format, prop ProcAmp) (ValueRange, error)
	CreateProcessor(device GUID, desc *VideoDesc, target Format) (Processor, error)
	Release()
}

// Processor performs colorspace conversion and scaling into a render target.
type Processor interface {
	Blt(target Surface, params *BltParams, samples []VideoSample) error
	Release()
}
