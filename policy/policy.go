// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package policy decides which hardware video paths to avoid on a given
// GPU. Both decisions are pure functions of the adapter identity and the
// requested codec, evaluated once when a renderer is initialized.
//
// Codec decisions come from an ordered rule table. The first rule whose
// vendor, device range and driver predicate all match decides; later rules
// are not consulted. A vendor with no matching rule is let through with a
// warning.
package policy

import (
	"fmt"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/video"
)

// PCI vendor identifiers.
const (
	VendorIntel    uint32 = 0x8086
	VendorNVIDIA   uint32 = 0x10DE
	VendorAMD      uint32 = 0x1002
	VendorQualcomm uint32 = 0x4D4F4351 // "QCOM"
)

// Adapter is the identity the policy depends on.
type Adapter struct {
	VendorID uint32
	DeviceID uint32
	Driver   driver.DriverVersion
}

// FromInfo extracts the policy inputs from a driver adapter description.
func FromInfo(info driver.AdapterInfo) Adapter {
	return Adapter{
		VendorID: info.VendorID,
		DeviceID: info.DeviceID,
		Driver:   info.DriverVersion,
	}
}

// String formats the adapter as vendor:device.
func (a Adapter) String() string {
	return fmt.Sprintf("%x:%x", a.VendorID, a.DeviceID)
}

// Overrides bypass the blacklists for troubleshooting.
type Overrides struct {
	DisableProcessorBlacklist bool
	DisableDecoderBlacklist   bool
}

// Decision is the outcome of a policy query.
type Decision struct {
	// Result is true when the path should be avoided or the codec disabled.
	Result bool

	// Rule names the table entry that decided, empty when none matched.
	Rule string

	// Warning is a diagnostic the caller should log at warn level.
	Warning string
}

// Policy evaluates the processor and codec tables with optional overrides.
// The zero value uses the built-in tables without overrides.
type Policy struct {
	Overrides Overrides

	// Processor and Codec replace the built-in tables when non-nil.
	Processor []ProcessorRule
	Codec     []CodecRule
}

// AvoidProcessor reports whether the hardware video processor should be
// bypassed in favor of a raw copy on adapter a.
func (p Policy) AvoidProcessor(a Adapter) Decision {
	if p.Overrides.DisableProcessorBlacklist {
		return Decision{Warning: "video processor blacklist is disabled"}
	}
	rules := p.Processor
	if rules == nil {
		rules = ProcessorRules
	}
	for _, r := range rules {
		if r.Vendor == a.VendorID {
			return Decision{Result: true, Rule: r.Name}
		}
	}
	return Decision{}
}

// DisableCodec reports whether codec must not be hardware-decoded on
// adapter a.
func (p Policy) DisableCodec(a Adapter, codec video.Format) Decision {
	if p.Overrides.DisableDecoderBlacklist {
		return Decision{Warning: "decoder blacklist is disabled"}
	}
	rules := p.Codec
	if rules == nil {
		rules = CodecRules
	}
	for _, r := range rules {
		if r.Matches(a, codec) {
			return Decision{Result: codec.Has(r.Codecs), Rule: r.Name}
		}
	}
	return Decision{Warning: fmt.Sprintf("unrecognized vendor ID: %x", a.VendorID)}
}

// AvoidProcessor evaluates the built-in processor table.
func AvoidProcessor(a Adapter) Decision {
	return Policy{}.AvoidProcessor(a)
}

// DisableCodec evaluates the built-in codec table.
func DisableCodec(a Adapter, codec video.Format) Decision {
	return Policy{}.DisableCodec(a, codec)
}
