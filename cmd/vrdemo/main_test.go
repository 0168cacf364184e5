// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/driver/soft"
	"github.com/gogpu/videorender/internal/config"
	"github.com/gogpu/videorender/policy"
	"github.com/gogpu/videorender/video"
)

func TestParseCodec(t *testing.T) {
	tests := []struct {
		in      string
		want    video.Format
		wantErr bool
	}{
		{"h264", video.H264, false},
		{"H264", video.H264, false},
		{"hevc", video.HEVCMain, false},
		{"hevc10", video.HEVCMain10, false},
		{"vp9", 0, true},
	}
	for _, tt := range tests {
		got, err := parseCodec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCodec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCodec(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAdapterType(t *testing.T) {
	tests := []struct {
		in   gputypes.DeviceType
		want gpucontext.AdapterType
	}{
		{gputypes.DeviceTypeDiscreteGPU, gpucontext.AdapterTypeDiscrete},
		{gputypes.DeviceTypeIntegratedGPU, gpucontext.AdapterTypeIntegrated},
		{gputypes.DeviceTypeCPU, gpucontext.AdapterTypeSoftware},
		{gputypes.DeviceTypeOther, gpucontext.AdapterTypeUnknown},
	}
	for _, tt := range tests {
		if got := adapterType(tt.in); got != tt.want {
			t.Errorf("adapterType(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorBars(t *testing.T) {
	img := colorBars(70, 4, 0)
	if got := img.RGBAAt(0, 0); got != bars[0] {
		t.Errorf("pixel(0,0) = %v, want %v", got, bars[0])
	}
	if got := img.RGBAAt(69, 3); got != bars[6] {
		t.Errorf("pixel(69,3) = %v, want %v", got, bars[6])
	}
	// Scrolling by a full bar shifts the colors by one.
	if got := colorBars(70, 4, 10).RGBAAt(0, 0); got != bars[1] {
		t.Errorf("scrolled pixel(0,0) = %v, want %v", got, bars[1])
	}
}

func TestRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	cfg := &config.Config{Demo: config.Demo{
		Codec:  "h264",
		Width:  64,
		Height: 36,
		Frames: 20,
		Out:    out,
	}}
	if err := run(context.Background(), cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 36 {
		t.Errorf("output size = %v, want 64x36", b)
	}
	if c := color.RGBAModel.Convert(img.At(32, 18)).(color.RGBA); c.R == 0 && c.G == 0 && c.B == 0 {
		t.Error("output center is black, want video")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		demo config.Demo
	}{
		{"codec", config.Demo{Codec: "mpeg2", Width: 64, Height: 36, Frames: 1}},
		{"size", config.Demo{Codec: "h264", Width: 0, Height: 36, Frames: 1}},
		{"frames", config.Demo{Codec: "h264", Width: 64, Height: 36}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Demo: tt.demo}
			if err := run(context.Background(), cfg, slog.New(slog.DiscardHandler)); err == nil {
				t.Error("run() error = nil, want error")
			}
		})
	}
}

func TestDescribeAdapter(t *testing.T) {
	drv := soft.New(soft.WithAdapter(driver.AdapterInfo{
		AdapterInfo: gputypes.AdapterInfo{
			Name:       "Intel(R) HD Graphics 530",
			VendorID:   0x8086,
			DeviceID:   0x1912,
			DeviceType: gputypes.DeviceTypeIntegratedGPU,
		},
		DriverVersion: driver.DriverVersion{26, 20, 100, 7000},
	}))
	var b strings.Builder
	if err := describeAdapter(&b, drv, policy.Policy{}); err != nil {
		t.Fatalf("describeAdapter() error = %v", err)
	}
	lines := map[string]string{}
	for _, l := range strings.Split(strings.TrimSpace(b.String()), "\n") {
		k, v, _ := strings.Cut(l, ":")
		lines[k] = strings.TrimSpace(v)
	}
	tests := []struct {
		key, prefix string
	}{
		{"driver", "soft"},
		{"adapter", "Intel(R) HD Graphics 530 (8086:1912)"},
		{"type", "Integrated"},
		{"processor", "avoided"},
		{video.H264.String(), "enabled"},
		{video.HEVCMain.String(), "enabled"},
		{video.HEVCMain10.String(), "disabled"},
	}
	for _, tt := range tests {
		if got := lines[tt.key]; !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("%s = %q, want prefix %q", tt.key, got, tt.prefix)
		}
	}
}

func TestDescribeAdapterOverrides(t *testing.T) {
	drv := soft.New()
	var b strings.Builder
	p := policy.Policy{Overrides: policy.Overrides{DisableDecoderBlacklist: true}}
	if err := describeAdapter(&b, drv, p); err != nil {
		t.Fatalf("describeAdapter() error = %v", err)
	}
	if !strings.Contains(b.String(), "decoder blacklist is disabled") {
		t.Errorf("output missing override warning:\n%s", b.String())
	}
}
