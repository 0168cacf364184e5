// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package video

import "testing"

func TestFormatMasks(t *testing.T) {
	tests := []struct {
		f      Format
		hevc   bool
		tenBit bool
		h264   bool
	}{
		{H264, false, false, true},
		{HEVCMain, true, false, false},
		{HEVCMain10, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := tt.f.IsHEVC(); got != tt.hevc {
				t.Errorf("IsHEVC() = %v, want %v", got, tt.hevc)
			}
			if got := tt.f.Is10Bit(); got != tt.tenBit {
				t.Errorf("Is10Bit() = %v, want %v", got, tt.tenBit)
			}
			if got := tt.f.Has(MaskH264); got != tt.h264 {
				t.Errorf("Has(MaskH264) = %v, want %v", got, tt.h264)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	if got := Format(0).String(); got != "None" {
		t.Errorf("Format(0).String() = %q, want %q", got, "None")
	}
	if got := MaskHEVC.String(); got != "Mask" {
		t.Errorf("MaskHEVC.String() = %q, want %q", got, "Mask")
	}
	if got := PixelFormatP010.String(); got != "P010" {
		t.Errorf("PixelFormatP010.String() = %q, want %q", got, "P010")
	}
	if got := ColorspaceRec709.String(); got != "Rec709" {
		t.Errorf("ColorspaceRec709.String() = %q, want %q", got, "Rec709")
	}
}
