// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package negotiate

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/driver/soft"
	"github.com/gogpu/videorender/video"
)

func decoderService(t *testing.T, opts ...soft.Option) (*soft.Driver, driver.DecoderService) {
	t.Helper()
	drv := soft.New(opts...)
	a, err := drv.Open(driver.Window{Provider: gpucontext.NullWindowProvider{W: 64, H: 64}})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	dev, err := a.CreateDevice(&driver.PresentParameters{Windowed: true, Width: 64, Height: 64, BackBufferCount: 1})
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	svc, err := dev.DecoderService()
	if err != nil {
		t.Fatalf("DecoderService() error = %v", err)
	}
	return drv, svc
}

var rawConfig = driver.DecoderConfig{BitstreamEncryption: driver.NoEncrypt, BitstreamRaw: 1}

func TestAlign(t *testing.T) {
	tests := []struct {
		format        video.Format
		w, h          int
		wantW, wantH  int
		wantAlignment int
	}{
		{video.H264, 1920, 1080, 1920, 1088, 16},
		{video.H264, 1280, 720, 1280, 720, 16},
		{video.HEVCMain, 1920, 1080, 1920, 1088, 32},
		{video.HEVCMain10, 1280, 720, 1280, 736, 32},
	}
	for _, tt := range tests {
		d := Describe(Request{Format: tt.format, Width: tt.w, Height: tt.h})
		if d.Width != tt.wantW || d.Height != tt.wantH {
			t.Errorf("Describe(%v %dx%d) = %dx%d, want %dx%d", tt.format, tt.w, tt.h, d.Width, d.Height, tt.wantW, tt.wantH)
		}
		if got := Alignment(tt.format); got != tt.wantAlignment {
			t.Errorf("Alignment(%v) = %d, want %d", tt.format, got, tt.wantAlignment)
		}
	}
}

func TestDescribeFormat(t *testing.T) {
	if got := Describe(Request{Format: video.HEVCMain10}).Format; got != driver.FormatP010 {
		t.Errorf("Describe(HEVCMain10).Format = %v, want P010", got)
	}
	d := Describe(Request{Format: video.H264})
	if d.Format != driver.FormatNV12 {
		t.Errorf("Describe(H264).Format = %v, want NV12", d.Format)
	}
	if d.SampleFormat != (driver.SampleFormat{Layout: driver.SampleProgressiveFrame}) {
		t.Errorf("Describe(H264).SampleFormat = %+v, want progressive only", d.SampleFormat)
	}
}

func TestNegotiateFirstMatchingProfile(t *testing.T) {
	tests := []struct {
		name        string
		profiles    []driver.GUID
		codec       video.Format
		want        driver.GUID
		workarounds Workaround
	}{
		{"h264 e", []driver.GUID{driver.ModeHEVCMain, driver.ModeH264E}, video.H264, driver.ModeH264E, 0},
		{"h264 f before e", []driver.GUID{driver.ModeH264F, driver.ModeH264E}, video.H264, driver.ModeH264F, 0},
		{"intel clearvideo", []driver.GUID{driver.ModeH264EIntel, driver.ModeH264E}, video.H264, driver.ModeH264EIntel, WorkaroundIntelClearVideo},
		{"hevc main", []driver.GUID{driver.ModeHEVCMain10, driver.ModeHEVCMain}, video.HEVCMain, driver.ModeHEVCMain, 0},
		{"hevc main10", []driver.GUID{driver.ModeHEVCMain, driver.ModeHEVCMain10}, video.HEVCMain10, driver.ModeHEVCMain10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := decoderService(t, soft.WithProfiles(tt.profiles...), soft.WithDecoderConfigs(rawConfig))
			s, err := Negotiate(svc, Request{Format: tt.codec, Width: 1920, Height: 1080}, nil)
			if err != nil {
				t.Fatalf("Negotiate() error = %v", err)
			}
			defer s.Close()
			if s.Profile.ID != tt.want {
				t.Errorf("Profile.ID = %v, want %v", s.Profile.ID, tt.want)
			}
			if s.Profile.Workarounds != tt.workarounds {
				t.Errorf("Workarounds = %b, want %b", s.Profile.Workarounds, tt.workarounds)
			}
			if ctx := s.Context(); ctx.Workarounds != tt.workarounds || len(ctx.Surfaces) != SurfaceCount {
				t.Errorf("Context() = %+v", ctx)
			}
		})
	}
}

func TestNegotiateNoProfile(t *testing.T) {
	_, svc := decoderService(t, soft.WithProfiles(driver.ModeH264E))
	if _, err := Negotiate(svc, Request{Format: video.HEVCMain, Width: 64, Height: 64}, nil); !errors.Is(err, ErrNoMatchingProfile) {
		t.Errorf("Negotiate() error = %v, want ErrNoMatchingProfile", err)
	}
}

func TestNegotiateConfigSelection(t *testing.T) {
	encrypted := driver.DecoderConfig{BitstreamEncryption: driver.GUID{Data1: 1}, BitstreamRaw: 1}
	nonRaw := driver.DecoderConfig{BitstreamEncryption: driver.NoEncrypt, BitstreamRaw: 0}
	shortSlice := driver.DecoderConfig{BitstreamEncryption: driver.NoEncrypt, BitstreamRaw: 2, HostInverseScan: 7}

	_, svc := decoderService(t, soft.WithDecoderConfigs(encrypted, nonRaw, shortSlice, rawConfig))
	s, err := Negotiate(svc, Request{Format: video.H264, Width: 64, Height: 64}, nil)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if s.Profile.Config != shortSlice {
		t.Errorf("Config = %+v, want %+v", s.Profile.Config, shortSlice)
	}

	_, svc = decoderService(t, soft.WithDecoderConfigs(encrypted, nonRaw))
	if _, err := Negotiate(svc, Request{Format: video.H264, Width: 64, Height: 64}, nil); !errors.Is(err, ErrNoMatchingConfig) {
		t.Errorf("Negotiate() error = %v, want ErrNoMatchingConfig", err)
	}
}

func TestNegotiateSurfaces(t *testing.T) {
	_, svc := decoderService(t)
	s, err := Negotiate(svc, Request{Format: video.HEVCMain10, Width: 1280, Height: 720}, nil)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if len(s.Surfaces) != 7 {
		t.Fatalf("len(Surfaces) = %d, want 7", len(s.Surfaces))
	}
	for i, surf := range s.Surfaces {
		if surf.Width() != 1280 || surf.Height() != 736 || surf.Format() != driver.FormatP010 {
			t.Errorf("surface %d = %dx%d %v, want 1280x736 P010", i, surf.Width(), surf.Height(), surf.Format())
		}
	}
	dec := s.Decoder.(*soft.Decoder)
	if len(dec.Targets) != len(s.Surfaces) {
		t.Errorf("decoder bound to %d targets, want %d", len(dec.Targets), len(s.Surfaces))
	}
	s.Close()
	if !dec.Released() {
		t.Error("Close() did not release the decoder")
	}
}

func TestNegotiateFailures(t *testing.T) {
	tests := []struct {
		op   soft.Op
		want error
	}{
		{soft.OpDecoderProfiles, ErrNoMatchingProfile},
		{soft.OpDecoderConfigs, ErrNoMatchingConfig},
		{soft.OpCreateSurfaces, ErrSurfaceAlloc},
		{soft.OpCreateDecoder, ErrDecoderCreate},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			drv, svc := decoderService(t)
			drv.Inject(tt.op, driver.ErrOutOfMemory, 1)
			_, err := Negotiate(svc, Request{Format: video.H264, Width: 64, Height: 64}, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Negotiate() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, driver.ErrOutOfMemory) {
				t.Errorf("Negotiate() error = %v, want wrapped ErrOutOfMemory", err)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		codec video.Format
		want  bool
	}{
		{video.H264, true},
		{video.HEVCMain, true},
		{video.HEVCMain10, true},
		{video.MaskHEVC, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := Supported(tt.codec); got != tt.want {
			t.Errorf("Supported(%v) = %v, want %v", tt.codec, got, tt.want)
		}
	}
}
