// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/videorender/driver"
)

type decoderService struct {
	drv *Driver
}

func (s *decoderService) DecoderProfiles() ([]driver.GUID, error) {
	if err := s.drv.faults.hit(OpDecoderProfiles); err != nil {
		return nil, err
	}
	return slices.Clone(s.drv.cfg.profiles), nil
}

func (s *decoderService) DecoderConfigs(profile driver.GUID, desc *driver.VideoDesc) ([]driver.DecoderConfig, error) {
	if err := s.drv.faults.hit(OpDecoderConfigs); err != nil {
		return nil, err
	}
	if !slices.Contains(s.drv.cfg.profiles, profile) {
		return nil, fmt.Errorf("soft: profile %v: %w", profile, driver.ErrUnsupported)
	}
	return slices.Clone(s.drv.cfg.configs), nil
}

func (s *decoderService) CreateSurfaces(width, height, count int, format driver.Format) ([]driver.Surface, error) {
	if err := s.drv.faults.hit(OpCreateSurfaces); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || count <= 0 || !format.IsYUV() {
		return nil, driver.ErrInvalidCall
	}
	out := make([]driver.Surface, count)
	for i := range out {
		out[i] = newYUVSurface(width, height, format)
	}
	return out, nil
}

func (s *decoderService) CreateDecoder(profile driver.GUID, desc *driver.VideoDesc, cfg *driver.DecoderConfig, targets []driver.Surface) (driver.Decoder, error) {
	if err := s.drv.faults.hit(OpCreateDecoder); err != nil {
		return nil, err
	}
	if len(targets) == 0 || cfg == nil || desc == nil {
		return nil, driver.ErrInvalidCall
	}
	return &Decoder{Profile: profile, Config: *cfg, Targets: slices.Clone(targets)}, nil
}

func (s *decoderService) Release() {}

// Decoder records how it was created. Decoding itself is done by whoever
// fills the target surfaces.
type Decoder struct {
	Profile driver.GUID
	Config  driver.DecoderConfig
	Targets []driver.Surface

	released atomic.Bool
}

// Release implements driver.Decoder.
func (d *Decoder) Release() { d.released.Store(true) }

// Released reports whether Release was called.
func (d *Decoder) Released() bool { return d.released.Load() }

type processorService struct {
	dev *Device
}

func (s *processorService) ProcessorCaps(device driver.GUID, desc *driver.VideoDesc, target driver.Format) (driver.ProcessorCaps, error) {
	if err := s.dev.drv.faults.hit(OpProcessorCaps); err != nil {
		return driver.ProcessorCaps{}, err
	}
	if device != driver.ProgressiveDevice {
		return driver.ProcessorCaps{}, driver.ErrUnsupported
	}
	return s.dev.drv.cfg.procCaps, nil
}

func (s *processorService) ProcAmpRange(device driver.GUID, desc *driver.VideoDesc, target driver.Format, prop driver.ProcAmp) (driver.ValueRange, error) {
	if err := s.dev.drv.faults.hit(OpProcAmpRange); err != nil {
		return driver.ValueRange{}, err
	}
	r, ok := s.dev.drv.cfg.procAmp[prop]
	if !ok {
		return driver.ValueRange{}, driver.ErrUnsupported
	}
	return r, nil
}

func (s *processorService) CreateProcessor(device driver.GUID, desc *driver.VideoDesc, target driver.Format) (driver.Processor, error) {
	if err := s.dev.drv.faults.hit(OpCreateProcessor); err != nil {
		return nil, err
	}
	return &Processor{dev: s.dev}, nil
}

func (s *processorService) Release() {}

// Processor converts with the per-sample color description and scales
// with bilinear filtering.
type Processor struct {
	dev      *Device
	blts     atomic.Int64
	released atomic.Bool
}

// Blt implements driver.Processor.
func (p *Processor) Blt(target driver.Surface, params *driver.BltParams, samples []driver.VideoSample) error {
	if err := p.dev.drv.faults.hit(OpBlt); err != nil {
		return err
	}
	if p.released.Load() {
		return fmt.Errorf("soft: processor released: %w", driver.ErrInvalidCall)
	}
	t, ok := target.(*Surface)
	if !ok || t.rgba == nil {
		return fmt.Errorf("soft: blt target is not a render target: %w", driver.ErrInvalidCall)
	}
	for _, s := range samples {
		src, ok := s.Surface.(*Surface)
		if !ok || src.Released() {
			return fmt.Errorf("soft: invalid blt sample: %w", driver.ErrInvalidCall)
		}
		rgb := src.toRGBA(s.SrcRect, matrixConverter(s.Format))
		p.dev.mu.Lock()
		scaler(gputypes.FilterModeLinear).Scale(t.rgba, s.DstRect, rgb, rgb.Bounds(), xdraw.Src, nil)
		p.dev.mu.Unlock()
	}
	p.blts.Add(1)
	return nil
}

// Blts returns the number of successful blits.
func (p *Processor) Blts() int { return int(p.blts.Load()) }

// Release implements driver.Processor.
func (p *Processor) Release() { p.released.Store(true) }
