// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vproc draws decoded surfaces into the render target.
//
// The hardware video processor converts with the per-frame color
// description and scales. When it is avoided by policy, unavailable, or
// fails at runtime, frames are copied with StretchRect instead, which
// applies a fixed conversion.
package vproc

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/video"
)

// ErrProcessorUnavailable is logged when the hardware processor cannot
// be used and the raw-copy path takes over.
var ErrProcessorUnavailable = errors.New("vproc: video processor unavailable")

// Processor renders one video sample per frame.
// It is used from the render goroutine only.
type Processor struct {
	dev    driver.Device
	logger *slog.Logger

	svc     driver.ProcessorService
	proc    driver.Processor
	procAmp driver.ProcAmpValues

	colorspace video.Colorspace
}

// New prepares the render path for samples described by desc drawn into
// target-format render targets. With avoid set the hardware processor is
// never opened.
func New(dev driver.Device, desc driver.VideoDesc, target driver.Format, avoid bool, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Processor{
		dev:        dev,
		logger:     logger,
		colorspace: video.ColorspaceRec709,
	}
	if avoid {
		// StretchRect converts with BT.601.
		p.colorspace = video.ColorspaceRec601
		logger.Info("video processor avoided, using StretchRect")
		return p
	}
	if err := p.open(&desc, target); err != nil {
		logger.Warn("video processor unavailable, using StretchRect", "err", err)
		p.release()
	}
	return p
}

func (p *Processor) open(desc *driver.VideoDesc, target driver.Format) error {
	svc, err := p.dev.ProcessorService()
	if err != nil {
		return fmt.Errorf("%w: create service: %w", ErrProcessorUnavailable, err)
	}
	p.svc = svc

	dev := driver.ProgressiveDevice
	caps, err := svc.ProcessorCaps(dev, desc, target)
	if err != nil {
		return fmt.Errorf("%w: caps: %w", ErrProcessorUnavailable, err)
	}
	switch {
	case caps.DeviceCaps&driver.VPDevHardwareDevice == 0:
		return fmt.Errorf("%w: progressive device is not hardware (caps %#x)", ErrProcessorUnavailable, caps.DeviceCaps)
	case caps.Operations&(driver.ProcessYUV2RGB|driver.ProcessYUV2RGBExtended) == 0:
		return fmt.Errorf("%w: no YUV to RGB conversion (ops %#x)", ErrProcessorUnavailable, caps.Operations)
	case caps.Operations&driver.ProcessStretchX == 0 || caps.Operations&driver.ProcessStretchY == 0:
		return fmt.Errorf("%w: cannot stretch (ops %#x)", ErrProcessorUnavailable, caps.Operations)
	}
	if caps.DeviceCaps&driver.VPDevEmulatedDXVA1 != 0 {
		p.logger.Warn("video processor is emulated over DXVA1")
	}

	// Missing ranges leave the zero default, as drivers do.
	for prop, dst := range map[driver.ProcAmp]*driver.Fixed32{
		driver.ProcAmpBrightness: &p.procAmp.Brightness,
		driver.ProcAmpContrast:   &p.procAmp.Contrast,
		driver.ProcAmpHue:        &p.procAmp.Hue,
		driver.ProcAmpSaturation: &p.procAmp.Saturation,
	} {
		r, err := svc.ProcAmpRange(dev, desc, target, prop)
		if err != nil {
			p.logger.Debug("proc amp range unavailable", "prop", prop, "err", err)
			continue
		}
		*dst = r.Default
	}

	proc, err := svc.CreateProcessor(dev, desc, target)
	if err != nil {
		return fmt.Errorf("%w: create processor: %w", ErrProcessorUnavailable, err)
	}
	p.proc = proc
	p.logger.Info("using hardware video processor")
	return nil
}

// Active reports whether the hardware processor is in use.
func (p *Processor) Active() bool { return p.proc != nil }

// ProcAmp returns the default processing amplifier values.
func (p *Processor) ProcAmp() driver.ProcAmpValues { return p.procAmp }

// DefaultColorspace is the conversion the decoder should assume when a
// stream carries no color metadata. It reflects the path chosen at
// initialization and does not change if the processor later fails.
func (p *Processor) DefaultColorspace() video.Colorspace { return p.colorspace }

// Render draws sample into target at sample.DstRect. A processor failure
// releases the processor for the rest of the session and the frame is
// drawn with StretchRect instead.
func (p *Processor) Render(target driver.Surface, sample driver.VideoSample) error {
	if p.proc != nil {
		params := driver.BltParams{
			TargetFrame:     sample.Start,
			TargetRect:      sample.DstRect,
			BackgroundColor: driver.AYUVSample16{Alpha: 0xFFFF},
			DestFormat:      driver.SampleFormat{Layout: driver.SampleProgressiveFrame},
			ProcAmp:         p.procAmp,
			Alpha:           driver.OpaqueAlpha,
		}
		err := p.proc.Blt(target, &params, []driver.VideoSample{sample})
		if err == nil {
			return nil
		}
		p.logger.Error("video processor blit failed, falling back to StretchRect", "err", err)
		p.release()
	}
	return p.dev.StretchRect(sample.Surface, sample.SrcRect, target, sample.DstRect, gputypes.FilterModeNearest)
}

// Close releases the processor and its service.
func (p *Processor) Close() { p.release() }

func (p *Processor) release() {
	if p.proc != nil {
		p.proc.Release()
		p.proc = nil
	}
	if p.svc != nil {
		p.svc.Release()
		p.svc = nil
	}
}

// Fit centers src in dst, preserving the aspect ratio of src.
func Fit(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return dst
	}
	h := ceilDiv(dw*sh, sw)
	w := ceilDiv(dh*sw, sh)
	if h > dh {
		x := dst.Min.X + (dw-w)/2
		return image.Rect(x, dst.Min.Y, x+w, dst.Max.Y)
	}
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(dst.Min.X, y, dst.Max.X, y+h)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
