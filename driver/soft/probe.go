// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

// DefaultSysfsRoot is where Linux exposes DRM devices.
const DefaultSysfsRoot = "/sys/class/drm"

// ProbeDRM lists the GPUs under a DRM sysfs root (usually
// DefaultSysfsRoot) by PCI vendor and device id. Cards whose ids cannot
// be read are skipped. The result is ordered by card name.
func ProbeDRM(root string) ([]driver.AdapterInfo, error) {
	cards, err := filepath.Glob(filepath.Join(root, "card[0-9]*"))
	if err != nil {
		return nil, fmt.Errorf("soft: probe %s: %w", root, err)
	}
	sort.Strings(cards)

	var out []driver.AdapterInfo
	for _, card := range cards {
		// card0-DP-1 style connector entries share the card's device.
		if strings.Contains(filepath.Base(card), "-") {
			continue
		}
		vendor, err := readHexID(filepath.Join(card, "device", "vendor"))
		if err != nil {
			continue
		}
		device, err := readHexID(filepath.Join(card, "device", "device"))
		if err != nil {
			continue
		}
		out = append(out, driver.AdapterInfo{
			AdapterInfo: gputypes.AdapterInfo{
				Name:       filepath.Base(card),
				Vendor:     vendorName(vendor),
				VendorID:   vendor,
				DeviceID:   device,
				DeviceType: gputypes.DeviceTypeOther,
				Driver:     readDriverName(card),
			},
			Ordinal: len(out),
		})
	}
	return out, nil
}

// WithProbedAdapter reports the identity of the first GPU found under
// root instead of the built-in software adapter. The policy then sees
// the real vendor and device id of the host.
func WithProbedAdapter(root string) Option {
	return func(c *config) {
		found, err := ProbeDRM(root)
		if err != nil || len(found) == 0 {
			return
		}
		c.info = found[0]
	}
}

func readHexID(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("soft: parse %s: %w", path, err)
	}
	return uint32(v), nil
}

func readDriverName(card string) string {
	link, err := os.Readlink(filepath.Join(card, "device", "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

func vendorName(id uint32) string {
	switch id {
	case 0x8086:
		return "Intel"
	case 0x10DE:
		return "NVIDIA"
	case 0x1002:
		return "AMD"
	case 0x4D4F4351, 0x5143:
		return "Qualcomm"
	default:
		return ""
	}
}
