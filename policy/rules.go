// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package policy

import (
	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/video"
)

// ProcessorRule avoids the video processor on every device of a vendor.
type ProcessorRule struct {
	Name   string
	Vendor uint32
	Reason string
}

// ProcessorRules is the built-in processor-avoidance table.
var ProcessorRules = []ProcessorRule{
	{
		Name:   "intel-enhancement",
		Vendor: VendorIntel,
		Reason: "driver forces video enhancement post-processing",
	},
	{
		Name:   "qualcomm-scaling",
		Vendor: VendorQualcomm,
		Reason: "processor scaling quality is poor",
	},
}

// DriverPredicate matches driver versions.
type DriverPredicate func(driver.DriverVersion) bool

// CodecRule matches adapters by vendor, masked device id range and an
// optional driver predicate. Codecs is the set of formats the rule
// disables; a zero mask is an explicit "allow".
type CodecRule struct {
	Name   string
	Vendor uint32

	// DeviceMask is applied to the device id before the range test.
	// Zero means the full id.
	DeviceMask uint32
	DeviceMin  uint32
	DeviceMax  uint32

	// AnyDevice matches every device of the vendor.
	AnyDevice bool

	// Driver restricts the rule to matching driver versions when non-nil.
	Driver DriverPredicate

	// Only restricts the rule to these codecs when non-zero. Other codecs
	// fall through to the next rule.
	Only video.Format

	Codecs video.Format
}

// Matches reports whether the rule applies to codec on a.
func (r CodecRule) Matches(a Adapter, codec video.Format) bool {
	if r.Vendor != a.VendorID {
		return false
	}
	if r.Only != 0 && !codec.Has(r.Only) {
		return false
	}
	if !r.AnyDevice {
		id := a.DeviceID
		if r.DeviceMask != 0 {
			id &= r.DeviceMask
		}
		if id < r.DeviceMin || id > r.DeviceMax {
			return false
		}
	}
	return r.Driver == nil || r.Driver(a.Driver)
}

// IntelBuggyHEVCDriver matches Intel drivers released before the late
// 2017 HEVC artifact fix (build 4836). Sub-versions of 100 and above use
// the newer numbering scheme and are never affected.
func IntelBuggyHEVCDriver(v driver.DriverVersion) bool {
	return v.SubVersion() < 100 && v.Build() < 4836
}

func intelGen(name string, gen uint32, codecs video.Format) CodecRule {
	return CodecRule{
		Name:       name,
		Vendor:     VendorIntel,
		DeviceMask: 0xFF00,
		DeviceMin:  gen,
		DeviceMax:  gen,
		Codecs:     codecs,
	}
}

func nvidiaRange(name string, lo, hi uint32) CodecRule {
	return CodecRule{
		Name:      name,
		Vendor:    VendorNVIDIA,
		DeviceMin: lo,
		DeviceMax: hi,
		Codecs:    video.MaskHEVC,
	}
}

// CodecRules is the built-in codec-disable table.
var CodecRules = []CodecRule{
	// Intel encodes the GPU generation in the high byte of the device id.
	// These generations advertise HEVC but decode it partly in shaders.
	intelGen("intel-haswell-hybrid-hevc", 0x0400, video.MaskHEVC),
	intelGen("intel-haswell-hybrid-hevc", 0x0A00, video.MaskHEVC),
	intelGen("intel-haswell-hybrid-hevc", 0x0D00, video.MaskHEVC),
	intelGen("intel-broadwell-hybrid-hevc", 0x1600, video.MaskHEVC),
	intelGen("intel-braswell-hybrid-hevc", 0x2200, video.MaskHEVC),
	// Skylake decodes HEVC Main in fixed function but Main10 is hybrid.
	// Other codecs still go through the driver check below.
	{
		Name:       "intel-skylake-hybrid-main10",
		Vendor:     VendorIntel,
		DeviceMask: 0xFF00,
		DeviceMin:  0x1900,
		DeviceMax:  0x1900,
		Only:       video.HEVCMain10,
		Codecs:     video.HEVCMain10,
	},
	{
		Name:      "intel-buggy-hevc-driver",
		Vendor:    VendorIntel,
		AnyDevice: true,
		Driver:    IntelBuggyHEVCDriver,
		Codecs:    video.MaskHEVC,
	},
	{Name: "intel", Vendor: VendorIntel, AnyDevice: true},

	// NVIDIA Feature Set E (and Kepler) parts decode HEVC in a hybrid
	// path. Fermi has no HEVC hardware at all.
	nvidiaRange("nvidia-gk104", 0x1180, 0x11BF),
	nvidiaRange("nvidia-gk106", 0x11C0, 0x11FF),
	nvidiaRange("nvidia-gk107", 0x0FC0, 0x0FFF),
	nvidiaRange("nvidia-gk110", 0x1000, 0x103F),
	nvidiaRange("nvidia-gf11x", 0x1200, 0x127F),
	nvidiaRange("nvidia-gk208", 0x1280, 0x12BF),
	nvidiaRange("nvidia-gm108", 0x1340, 0x137F),
	nvidiaRange("nvidia-gm107", 0x1380, 0x13BF),
	nvidiaRange("nvidia-gm204", 0x13C0, 0x13FF),
	nvidiaRange("nvidia-gm204", 0x1617, 0x161A),
	nvidiaRange("nvidia-gm204", 0x1667, 0x1667),
	nvidiaRange("nvidia-gm200", 0x17C0, 0x17FF),
	{Name: "nvidia", Vendor: VendorNVIDIA, AnyDevice: true},

	{Name: "amd", Vendor: VendorAMD, AnyDevice: true},
}
