// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package d3d9

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

func TestFormatRoundTrip(t *testing.T) {
	for _, f := range []driver.Format{
		driver.FormatNV12,
		driver.FormatP010,
		driver.FormatBGRA8,
		driver.FormatBGRX8,
		driver.FormatRGB10A2,
	} {
		if got := fromD3DFormat(toD3DFormat(f)); got != f {
			t.Errorf("fromD3DFormat(toD3DFormat(%v)) = %v", f, got)
		}
	}
	if got := toD3DFormat(driver.FormatUnknown); got != d3dfmtUnknown {
		t.Errorf("toD3DFormat(Unknown) = %d, want 0", got)
	}
}

func TestFourCC(t *testing.T) {
	if d3dfmtNV12 != 0x3231564E {
		t.Errorf("NV12 = %#x, want 0x3231564E", d3dfmtNV12)
	}
	if d3dfmtP010 != 0x30313050 {
		t.Errorf("P010 = %#x, want 0x30313050", d3dfmtP010)
	}
}

func TestBlendAlpha(t *testing.T) {
	b := gputypes.BlendStateAlpha()
	src, err := toD3DBlend(b.Color.SrcFactor)
	if err != nil || src != d3dblendSrcAlpha {
		t.Errorf("src = %d, %v, want SRCALPHA", src, err)
	}
	dst, err := toD3DBlend(b.Color.DstFactor)
	if err != nil || dst != d3dblendInvSrcAlpha {
		t.Errorf("dst = %d, %v, want INVSRCALPHA", dst, err)
	}
	op, err := toD3DBlendOp(b.Color.Operation)
	if err != nil || op != d3dblendopAdd {
		t.Errorf("op = %d, %v, want ADD", op, err)
	}
}

func TestBlendUnsupported(t *testing.T) {
	if _, err := toD3DBlend(gputypes.BlendFactorUndefined); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("toD3DBlend(Undefined) error = %v, want ErrUnsupported", err)
	}
	if _, err := toD3DBlendOp(gputypes.BlendOperationUndefined); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("toD3DBlendOp(Undefined) error = %v, want ErrUnsupported", err)
	}
}

func TestFixedFunctionState(t *testing.T) {
	if got := toD3DCull(gputypes.CullModeNone); got != d3dcullNone {
		t.Errorf("toD3DCull(None) = %d, want %d", got, d3dcullNone)
	}
	if got := toD3DFilter(gputypes.FilterModeLinear); got != d3dtexfLinear {
		t.Errorf("toD3DFilter(Linear) = %d, want %d", got, d3dtexfLinear)
	}
	if got := toD3DPrimitive(gputypes.PrimitiveTopologyTriangleStrip); got != d3dptTriangleStrip {
		t.Errorf("toD3DPrimitive(TriangleStrip) = %d, want %d", got, d3dptTriangleStrip)
	}
}

func TestPresentation(t *testing.T) {
	tests := []struct {
		mode gputypes.PresentMode
		want uint32
	}{
		{gputypes.PresentModeImmediate, d3dpresentIntervalImmediate},
		{gputypes.PresentModeFifo, d3dpresentIntervalOne},
	}
	for _, tt := range tests {
		if got := toD3DInterval(tt.mode); got != tt.want {
			t.Errorf("toD3DInterval(%v) = %#x, want %#x", tt.mode, got, tt.want)
		}
	}
	if got := toD3DSwapEffect(driver.SwapEffectFlipEx); got != d3dswapeffectFlipEx {
		t.Errorf("toD3DSwapEffect(FlipEx) = %d, want %d", got, d3dswapeffectFlipEx)
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		c    gputypes.Color
		want uint32
	}{
		{gputypes.ColorBlack, 0xFF000000},
		{gputypes.Color{R: 1, G: 0.5, B: 0, A: 1}, 0xFFFF8000},
		{gputypes.Color{R: 2, G: -1, B: 1, A: 0}, 0x00FF00FF},
	}
	for _, tt := range tests {
		if got := toD3DColor(tt.c); got != tt.want {
			t.Errorf("toD3DColor(%+v) = %#08x, want %#08x", tt.c, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		r    uintptr
		want error
	}{
		{"ok", 0, nil},
		{"occluded is success", 0x08760868, nil},
		{"still drawing", 0x8876021C, driver.ErrWasStillDrawing},
		{"device lost", 0x88760868, driver.ErrDeviceLost},
		{"device removed", 0x88760870, driver.ErrDeviceLost},
		{"out of memory", 0x8007000E, driver.ErrOutOfMemory},
		{"invalid call", 0x8876086C, driver.ErrInvalidCall},
		{"not available", 0x8876086A, driver.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := check(tt.r)
			if tt.want == nil {
				if err != nil {
					t.Errorf("check(%#x) = %v, want nil", tt.r, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("check(%#x) = %v, want %v", tt.r, err, tt.want)
			}
		})
	}
}

func TestCheckUnknownFailure(t *testing.T) {
	err := check(0x80004005)
	if err == nil {
		t.Fatal("check(E_FAIL) = nil")
	}
	if got, want := err.Error(), "d3d9: HRESULT 0x80004005"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestVendor(t *testing.T) {
	if got := vendorName(0x8086); got != "Intel" {
		t.Errorf("vendorName(Intel) = %q", got)
	}
	if got := deviceType(0x8086); got != gputypes.DeviceTypeIntegratedGPU {
		t.Errorf("deviceType(Intel) = %v", got)
	}
	if got := deviceType(0x1414); got != gputypes.DeviceTypeCPU {
		t.Errorf("deviceType(Microsoft) = %v", got)
	}
}
