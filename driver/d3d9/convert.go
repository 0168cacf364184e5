// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package d3d9

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/policy"
)

// D3DFORMAT values.
const (
	d3dfmtUnknown     uint32 = 0
	d3dfmtA8R8G8B8    uint32 = 21
	d3dfmtX8R8G8B8    uint32 = 22
	d3dfmtA2R10G10B10 uint32 = 35
	d3dfmtNV12        uint32 = 'N' | 'V'<<8 | '1'<<16 | '2'<<24
	d3dfmtP010        uint32 = 'P' | '0'<<8 | '1'<<16 | '0'<<24
)

func toD3DFormat(f driver.Format) uint32 {
	switch f {
	case driver.FormatNV12:
		return d3dfmtNV12
	case driver.FormatP010:
		return d3dfmtP010
	case driver.FormatBGRA8:
		return d3dfmtA8R8G8B8
	case driver.FormatBGRX8:
		return d3dfmtX8R8G8B8
	case driver.FormatRGB10A2:
		return d3dfmtA2R10G10B10
	default:
		return d3dfmtUnknown
	}
}

func fromD3DFormat(f uint32) driver.Format {
	switch f {
	case d3dfmtNV12:
		return driver.FormatNV12
	case d3dfmtP010:
		return driver.FormatP010
	case d3dfmtA8R8G8B8:
		return driver.FormatBGRA8
	case d3dfmtX8R8G8B8:
		return driver.FormatBGRX8
	case d3dfmtA2R10G10B10:
		return driver.FormatRGB10A2
	default:
		return driver.FormatUnknown
	}
}

// D3DBLEND and D3DBLENDOP values.
const (
	d3dblendZero         uint32 = 1
	d3dblendOne          uint32 = 2
	d3dblendSrcColor     uint32 = 3
	d3dblendInvSrcColor  uint32 = 4
	d3dblendSrcAlpha     uint32 = 5
	d3dblendInvSrcAlpha  uint32 = 6
	d3dblendDestAlpha    uint32 = 7
	d3dblendInvDestAlpha uint32 = 8
	d3dblendDestColor    uint32 = 9
	d3dblendInvDestColor uint32 = 10
	d3dblendSrcAlphaSat  uint32 = 11
	d3dblendBlendFactor  uint32 = 14
	d3dblendInvBlendFact uint32 = 15

	d3dblendopAdd         uint32 = 1
	d3dblendopSubtract    uint32 = 2
	d3dblendopRevSubtract uint32 = 3
	d3dblendopMin         uint32 = 4
	d3dblendopMax         uint32 = 5
)

func toD3DBlend(f gputypes.BlendFactor) (uint32, error) {
	switch f {
	case gputypes.BlendFactorZero:
		return d3dblendZero, nil
	case gputypes.BlendFactorOne:
		return d3dblendOne, nil
	case gputypes.BlendFactorSrc:
		return d3dblendSrcColor, nil
	case gputypes.BlendFactorOneMinusSrc:
		return d3dblendInvSrcColor, nil
	case gputypes.BlendFactorSrcAlpha:
		return d3dblendSrcAlpha, nil
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return d3dblendInvSrcAlpha, nil
	case gputypes.BlendFactorDst:
		return d3dblendDestColor, nil
	case gputypes.BlendFactorOneMinusDst:
		return d3dblendInvDestColor, nil
	case gputypes.BlendFactorDstAlpha:
		return d3dblendDestAlpha, nil
	case gputypes.BlendFactorOneMinusDstAlpha:
		return d3dblendInvDestAlpha, nil
	case gputypes.BlendFactorSrcAlphaSaturated:
		return d3dblendSrcAlphaSat, nil
	case gputypes.BlendFactorConstant:
		return d3dblendBlendFactor, nil
	case gputypes.BlendFactorOneMinusConstant:
		return d3dblendInvBlendFact, nil
	default:
		return 0, fmt.Errorf("%w: blend factor %d", driver.ErrUnsupported, f)
	}
}

func toD3DBlendOp(op gputypes.BlendOperation) (uint32, error) {
	switch op {
	case gputypes.BlendOperationAdd:
		return d3dblendopAdd, nil
	case gputypes.BlendOperationSubtract:
		return d3dblendopSubtract, nil
	case gputypes.BlendOperationReverseSubtract:
		return d3dblendopRevSubtract, nil
	case gputypes.BlendOperationMin:
		return d3dblendopMin, nil
	case gputypes.BlendOperationMax:
		return d3dblendopMax, nil
	default:
		return 0, fmt.Errorf("%w: blend operation %d", driver.ErrUnsupported, op)
	}
}

// D3DCULL values. Front faces wind clockwise.
const (
	d3dcullNone uint32 = 1
	d3dcullCW   uint32 = 2
	d3dcullCCW  uint32 = 3
)

func toD3DCull(m gputypes.CullMode) uint32 {
	switch m {
	case gputypes.CullModeFront:
		return d3dcullCW
	case gputypes.CullModeBack:
		return d3dcullCCW
	default:
		return d3dcullNone
	}
}

// D3DTEXTUREFILTERTYPE values.
const (
	d3dtexfNone   uint32 = 0
	d3dtexfPoint  uint32 = 1
	d3dtexfLinear uint32 = 2
)

func toD3DFilter(m gputypes.FilterMode) uint32 {
	switch m {
	case gputypes.FilterModeNearest:
		return d3dtexfPoint
	case gputypes.FilterModeLinear:
		return d3dtexfLinear
	default:
		return d3dtexfNone
	}
}

// D3DPRIMITIVETYPE values.
const (
	d3dptPointList     uint32 = 1
	d3dptLineList      uint32 = 2
	d3dptLineStrip     uint32 = 3
	d3dptTriangleList  uint32 = 4
	d3dptTriangleStrip uint32 = 5
)

func toD3DPrimitive(t gputypes.PrimitiveTopology) uint32 {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return d3dptPointList
	case gputypes.PrimitiveTopologyLineList:
		return d3dptLineList
	case gputypes.PrimitiveTopologyLineStrip:
		return d3dptLineStrip
	case gputypes.PrimitiveTopologyTriangleStrip:
		return d3dptTriangleStrip
	default:
		return d3dptTriangleList
	}
}

// Presentation constants.
const (
	d3dswapeffectDiscard uint32 = 1
	d3dswapeffectFlipEx  uint32 = 5

	d3dpresentIntervalOne       uint32 = 0x00000001
	d3dpresentIntervalImmediate uint32 = 0x80000000

	d3dpresentflagVideo uint32 = 0x00000010
)

func toD3DSwapEffect(s driver.SwapEffect) uint32 {
	if s == driver.SwapEffectFlipEx {
		return d3dswapeffectFlipEx
	}
	return d3dswapeffectDiscard
}

func toD3DInterval(m gputypes.PresentMode) uint32 {
	if m == gputypes.PresentModeImmediate || m == gputypes.PresentModeMailbox {
		return d3dpresentIntervalImmediate
	}
	return d3dpresentIntervalOne
}

// toD3DColor packs c as a D3DCOLOR (A8R8G8B8).
func toD3DColor(c gputypes.Color) uint32 {
	q := func(v float64) uint32 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 0xFF
		default:
			return uint32(v*255 + 0.5)
		}
	}
	return q(c.A)<<24 | q(c.R)<<16 | q(c.G)<<8 | q(c.B)
}

// HRESULT values the renderer distinguishes.
const (
	eOutOfMemory           hresult = 0x8007000E
	eNoInterface           hresult = 0x80004002
	eNotImpl               hresult = 0x80004001
	d3derrWasStillDrawing  hresult = 0x8876021C
	d3derrOutOfVideoMemory hresult = 0x8876017C
	d3derrDeviceLost       hresult = 0x88760868
	d3derrNotAvailable     hresult = 0x8876086A
	d3derrInvalidCall      hresult = 0x8876086C
	d3derrDeviceRemoved    hresult = 0x88760870
	d3derrDeviceHung       hresult = 0x88760874
)

// hresult is a failed COM call. It unwraps to the driver sentinel for
// the failure class.
type hresult uint32

var hresultNames = map[hresult]string{
	eOutOfMemory:           "E_OUTOFMEMORY",
	eNoInterface:           "E_NOINTERFACE",
	eNotImpl:               "E_NOTIMPL",
	d3derrWasStillDrawing:  "D3DERR_WASSTILLDRAWING",
	d3derrOutOfVideoMemory: "D3DERR_OUTOFVIDEOMEMORY",
	d3derrDeviceLost:       "D3DERR_DEVICELOST",
	d3derrNotAvailable:     "D3DERR_NOTAVAILABLE",
	d3derrInvalidCall:      "D3DERR_INVALIDCALL",
	d3derrDeviceRemoved:    "D3DERR_DEVICEREMOVED",
	d3derrDeviceHung:       "D3DERR_DEVICEHUNG",
}

func (hr hresult) Error() string {
	if name, ok := hresultNames[hr]; ok {
		return fmt.Sprintf("d3d9: HRESULT 0x%08X: %s", uint32(hr), name)
	}
	return fmt.Sprintf("d3d9: HRESULT 0x%08X", uint32(hr))
}

func (hr hresult) Unwrap() error {
	switch hr {
	case d3derrWasStillDrawing:
		return driver.ErrWasStillDrawing
	case d3derrDeviceLost, d3derrDeviceRemoved, d3derrDeviceHung:
		return driver.ErrDeviceLost
	case eOutOfMemory, d3derrOutOfVideoMemory:
		return driver.ErrOutOfMemory
	case d3derrNotAvailable, eNoInterface, eNotImpl:
		return driver.ErrUnsupported
	case d3derrInvalidCall:
		return driver.ErrInvalidCall
	default:
		return nil
	}
}

// check converts a raw HRESULT into an error. Success codes, including
// S_PRESENT_OCCLUDED, are nil.
func check(r uintptr) error {
	if int32(uint32(r)) >= 0 {
		return nil
	}
	return hresult(uint32(r))
}

// vendorName returns the marketing name of a PCI vendor.
func vendorName(id uint32) string {
	switch id {
	case policy.VendorIntel:
		return "Intel"
	case policy.VendorNVIDIA:
		return "NVIDIA"
	case policy.VendorAMD:
		return "AMD"
	case policy.VendorQualcomm:
		return "Qualcomm"
	case vendorMicrosoft:
		return "Microsoft"
	default:
		return ""
	}
}

// vendorMicrosoft owns the Basic Render Driver, a CPU rasterizer.
const vendorMicrosoft uint32 = 0x1414

// deviceType guesses the adapter class from its vendor. Direct3D 9 does
// not report it.
func deviceType(vendor uint32) gputypes.DeviceType {
	switch vendor {
	case policy.VendorIntel, policy.VendorQualcomm:
		return gputypes.DeviceTypeIntegratedGPU
	case policy.VendorNVIDIA, policy.VendorAMD:
		return gputypes.DeviceTypeDiscreteGPU
	case vendorMicrosoft:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}
