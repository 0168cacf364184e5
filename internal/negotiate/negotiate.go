// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package negotiate binds a hardware decoder to the requested codec.
//
// Negotiation walks the driver's profile list for the first profile that
// decodes the codec, picks an unencrypted raw-bitstream configuration for
// it, allocates the decode targets and creates the decoder bound to them.
package negotiate

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/video"
)

// Negotiation errors.
var (
	ErrNoMatchingProfile = errors.New("negotiate: no matching decoder profile")
	ErrNoMatchingConfig  = errors.New("negotiate: no matching decoder configuration")
	ErrSurfaceAlloc      = errors.New("negotiate: decode surface allocation failed")
	ErrDecoderCreate     = errors.New("negotiate: decoder creation failed")
)

const (
	// MinSurfaces is the number of reference and output surfaces the
	// profiles need at minimum.
	MinSurfaces = 4
	// ExtraSurfaces is the margin that lets the decoder run ahead of the
	// renderer.
	ExtraSurfaces = MinSurfaces - 1
	// SurfaceCount is the size of the decode surface array.
	SurfaceCount = MinSurfaces + ExtraSurfaces
)

// Workaround is a set of decoder quirk flags passed to the decode framework.
type Workaround uint32

const (
	// WorkaroundIntelClearVideo marks the Intel ClearVideo H.264 profile,
	// which needs a different slice-data layout.
	WorkaroundIntelClearVideo Workaround = 1 << iota
)

// candidates lists the profiles accepted for each codec.
var candidates = map[video.Format][]driver.GUID{
	video.H264:       {driver.ModeH264E, driver.ModeH264F, driver.ModeH264EIntel},
	video.HEVCMain:   {driver.ModeHEVCMain},
	video.HEVCMain10: {driver.ModeHEVCMain10},
}

// Supported reports whether codec has candidate decoder profiles.
func Supported(codec video.Format) bool {
	return len(candidates[codec]) > 0
}

// Profile is the negotiated decoder profile. It never changes after
// negotiation.
type Profile struct {
	Codec       video.Format
	ID          driver.GUID
	Config      driver.DecoderConfig
	Workarounds Workaround
}

// Request is the stream to negotiate a decoder for.
type Request struct {
	Format video.Format
	Width  int
	Height int
}

// Alignment returns the decode surface alignment for format. HEVC needs
// 32 rather than 16: some Intel drivers draw a green line at the top of
// 720p and 1080p frames otherwise.
func Alignment(format video.Format) int {
	if format.IsHEVC() {
		return 32
	}
	return 16
}

// Align rounds v up to a multiple of a power-of-two a.
func Align(v, a int) int {
	return (v + a - 1) &^ (a - 1)
}

// Describe returns the video description for req: aligned size, the
// decode target format and a progressive sample format with every other
// color field unknown.
func Describe(req Request) driver.VideoDesc {
	a := Alignment(req.Format)
	format := driver.FormatNV12
	if req.Format.Is10Bit() {
		format = driver.FormatP010
	}
	return driver.VideoDesc{
		Width:        Align(req.Width, a),
		Height:       Align(req.Height, a),
		Format:       format,
		SampleFormat: driver.SampleFormat{Layout: driver.SampleProgressiveFrame},
	}
}

// Session is a negotiated decoder with its decode targets.
type Session struct {
	Profile  Profile
	Desc     driver.VideoDesc
	Decoder  driver.Decoder
	Surfaces []driver.Surface
}

// DecoderContext is what the decode framework's hardware context needs.
type DecoderContext struct {
	Decoder     driver.Decoder
	Config      *driver.DecoderConfig
	Surfaces    []driver.Surface
	Workarounds Workaround
}

// Context returns the decode framework context for s.
func (s *Session) Context() DecoderContext {
	return DecoderContext{
		Decoder:     s.Decoder,
		Config:      &s.Profile.Config,
		Surfaces:    s.Surfaces,
		Workarounds: s.Profile.Workarounds,
	}
}

// Close releases the decoder. The surfaces belong to whoever took them
// over (normally a surfacepool.Pool).
func (s *Session) Close() {
	if s.Decoder != nil {
		s.Decoder.Release()
		s.Decoder = nil
	}
}

// Negotiate selects a profile and configuration for req and creates the
// decoder with SurfaceCount decode targets.
func Negotiate(svc driver.DecoderService, req Request, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	profiles, err := svc.DecoderProfiles()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate profiles: %w", ErrNoMatchingProfile, err)
	}
	prof, ok := selectProfile(req.Format, profiles)
	if !ok {
		logger.Error("no matching decoder profile", "codec", req.Format, "profiles", len(profiles))
		return nil, ErrNoMatchingProfile
	}

	desc := Describe(req)
	configs, err := svc.DecoderConfigs(prof.ID, &desc)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate configurations: %w", ErrNoMatchingConfig, err)
	}
	cfg, ok := selectConfig(configs)
	if !ok {
		logger.Error("no matching decoder configuration", "profile", prof.ID, "configs", len(configs))
		return nil, ErrNoMatchingConfig
	}
	prof.Config = cfg

	surfaces, err := svc.CreateSurfaces(desc.Width, desc.Height, SurfaceCount, desc.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceAlloc, err)
	}
	if len(surfaces) != SurfaceCount {
		releaseAll(surfaces)
		return nil, fmt.Errorf("%w: got %d surfaces, want %d", ErrSurfaceAlloc, len(surfaces), SurfaceCount)
	}

	dec, err := svc.CreateDecoder(prof.ID, &desc, &prof.Config, surfaces)
	if err != nil {
		releaseAll(surfaces)
		return nil, fmt.Errorf("%w: %w", ErrDecoderCreate, err)
	}

	logger.Info("decoder negotiated",
		"codec", req.Format,
		"profile", prof.ID,
		"size", fmt.Sprintf("%dx%d", desc.Width, desc.Height),
		"format", desc.Format,
		"surfaces", SurfaceCount,
		"workarounds", uint32(prof.Workarounds))

	return &Session{
		Profile:  prof,
		Desc:     desc,
		Decoder:  dec,
		Surfaces: surfaces,
	}, nil
}

// selectProfile returns the first profile in driver order that decodes
// codec.
func selectProfile(codec video.Format, profiles []driver.GUID) (Profile, bool) {
	want := candidates[codec]
	for _, id := range profiles {
		if !slices.Contains(want, id) {
			continue
		}
		p := Profile{Codec: codec, ID: id}
		if id == driver.ModeH264EIntel {
			p.Workarounds |= WorkaroundIntelClearVideo
		}
		return p, true
	}
	return Profile{}, false
}

// selectConfig returns the first unencrypted configuration that accepts
// a raw bitstream.
func selectConfig(configs []driver.DecoderConfig) (driver.DecoderConfig, bool) {
	for _, c := range configs {
		if (c.BitstreamRaw == 1 || c.BitstreamRaw == 2) && c.BitstreamEncryption == driver.NoEncrypt {
			return c, true
		}
	}
	return driver.DecoderConfig{}, false
}

func releaseAll(surfaces []driver.Surface) {
	for _, s := range surfaces {
		if s != nil {
			s.Release()
		}
	}
}
