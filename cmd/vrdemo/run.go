// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/videorender"
	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/driver/soft"
	"github.com/gogpu/videorender/internal/config"
	"github.com/gogpu/videorender/overlay"
	"github.com/gogpu/videorender/surfacepool"
	"github.com/gogpu/videorender/video"
)

// statsInterval is how often the statistics overlay refreshes.
const statsInterval = 100 * time.Millisecond

// parseCodec maps a codec name to its format.
func parseCodec(s string) (video.Format, error) {
	switch strings.ToLower(s) {
	case "h264", "avc":
		return video.H264, nil
	case "hevc", "h265":
		return video.HEVCMain, nil
	case "hevc10", "main10":
		return video.HEVCMain10, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", s)
	}
}

// adapterType maps a WebGPU device type to the adapter class reported by
// gpucontext.
func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// driverOptions builds the simulated hardware from the config.
func driverOptions(cfg *config.Config) []soft.Option {
	opts := []soft.Option{
		soft.With10BitDisplay(true),
		soft.WithDisplayMode(driver.DisplayMode{
			Width:       cfg.Demo.Width,
			Height:      cfg.Demo.Height,
			RefreshRate: 60,
			Format:      driver.FormatBGRX8,
		}),
	}
	switch {
	case cfg.Demo.Vendor != 0:
		opts = append(opts, soft.WithAdapter(driver.AdapterInfo{
			AdapterInfo: gputypes.AdapterInfo{
				Name:       fmt.Sprintf("Simulated %04x:%04x", cfg.Demo.Vendor, cfg.Demo.Device),
				VendorID:   cfg.Demo.Vendor,
				DeviceID:   cfg.Demo.Device,
				DeviceType: gputypes.DeviceTypeOther,
				Driver:     "soft",
			},
		}))
	case cfg.Demo.Probe != "":
		opts = append(opts, soft.WithProbedAdapter(cfg.Demo.Probe))
	}
	return opts
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	codec, err := parseCodec(cfg.Demo.Codec)
	if err != nil {
		return err
	}
	if cfg.Demo.Width <= 0 || cfg.Demo.Height <= 0 || cfg.Demo.Frames <= 0 {
		return fmt.Errorf("width, height and frames must be positive")
	}

	drv := soft.New(driverOptions(cfg)...)
	window := driver.Window{
		Provider: gpucontext.NullWindowProvider{W: cfg.Demo.Width, H: cfg.Demo.Height, SF: 1},
	}
	if err := reportAdapter(drv, window, logger); err != nil {
		return err
	}

	manager, err := overlay.NewManager()
	if err != nil {
		return err
	}
	r := videorender.New(drv,
		videorender.WithLogger(logger),
		videorender.WithOverrides(cfg.Overrides()),
		videorender.WithOverlaySource(manager),
	)
	defer r.Close()

	manager.SetNotify(func(t overlay.Type) {
		if err := r.NotifyOverlayUpdated(t); err != nil {
			logger.Warn("overlay update failed", "type", t, "err", err)
		}
	})
	if err := r.Initialize(videorender.Params{
		Format: codec,
		Width:  cfg.Demo.Width,
		Height: cfg.Demo.Height,
		Window: window,
		VSync:  cfg.Demo.VSync,
	}); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	manager.SetText(overlay.StatusUpdate, fmt.Sprintf("vrdemo %v, processor: %v", codec, r.ProcessorActive()))
	manager.SetEnabled(overlay.StatusUpdate, true)
	manager.SetEnabled(overlay.Debug, true)

	p := &pipeline{
		r:       r,
		manager: manager,
		logger:  logger,
		codec:   codec,
		width:   cfg.Demo.Width,
		height:  cfg.Demo.Height,
		frames:  cfg.Demo.Frames,
	}
	if err := p.run(ctx); err != nil {
		return err
	}
	return writePNG(cfg.Demo.Out, drv.LastDevice())
}

// reportAdapter logs the adapter the policy will see.
func reportAdapter(drv driver.Driver, w driver.Window, logger *slog.Logger) error {
	a, err := drv.Open(w)
	if err != nil {
		return fmt.Errorf("open adapter: %w", err)
	}
	defer a.Release()
	info := a.Info()
	report := gpucontext.AdapterInfo{Name: info.Name, Type: adapterType(info.DeviceType)}
	logger.Info("adapter",
		"name", report.Name,
		"type", report.Type,
		"vendor", fmt.Sprintf("%#04x", info.VendorID),
		"device", fmt.Sprintf("%#04x", info.DeviceID))
	return nil
}

// pipeline runs the synthetic decoder, the renderer and the statistics
// producer on their own goroutines.
type pipeline struct {
	r       *videorender.Renderer
	manager *overlay.Manager
	logger  *slog.Logger

	codec         video.Format
	width, height int
	frames        int
}

func (p *pipeline) run(ctx context.Context) error {
	// Decode surfaces are handed out once; the decoder cycles through
	// them as a real decoder's reference frames would.
	var refs []surfacepool.Ref
	for {
		ref, err := p.r.GetBuffer()
		if errors.Is(err, videorender.ErrPoolExhausted) {
			break
		}
		if err != nil {
			return fmt.Errorf("get buffer: %w", err)
		}
		refs = append(refs, ref)
	}

	free := make(chan surfacepool.Ref, len(refs))
	for _, ref := range refs {
		free <- ref
	}
	decoded := make(chan *videorender.Frame, len(refs))
	rendered := make(chan time.Duration, p.frames)

	g, ctx := errgroup.WithContext(ctx)

	// Decoder.
	g.Go(func() error {
		defer close(decoded)
		for i := 0; i < p.frames; i++ {
			var ref surfacepool.Ref
			select {
			case ref = <-free:
			case <-ctx.Done():
				return nil
			}
			s, ok := ref.Surface()
			if !ok {
				return fmt.Errorf("surface %d went stale", ref.Slot())
			}
			s.(*soft.Surface).Fill(colorBars(p.width, p.height, i))
			select {
			case decoded <- &videorender.Frame{Surface: ref, Color: bt709Limited}:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	// Renderer.
	g.Go(func() error {
		defer close(rendered)
		for f := range decoded {
			start := time.Now()
			if err := p.r.RenderFrame(f); err != nil {
				return err
			}
			rendered <- time.Since(start)
			free <- f.Surface
		}
		return nil
	})

	// Statistics overlay.
	g.Go(func() error {
		tick := time.NewTicker(statsInterval)
		defer tick.Stop()
		begin := time.Now()
		var n int64
		var total time.Duration
		for {
			select {
			case d, ok := <-rendered:
				if !ok {
					p.publish(n, total, time.Since(begin))
					return nil
				}
				n++
				total += d
			case <-tick.C:
				p.publish(n, total, time.Since(begin))
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	select {
	case e := <-p.r.Events():
		return fmt.Errorf("renderer posted %v", e)
	default:
	}
	return nil
}

func (p *pipeline) publish(frames int64, total, elapsed time.Duration) {
	s := overlay.Stats{
		Codec:  p.codec,
		Width:  p.width,
		Height: p.height,
		Frames: frames,
	}
	if sec := elapsed.Seconds(); sec > 0 {
		fps := float64(frames) / sec
		s.ReceivedFPS, s.DecodedFPS, s.RenderedFPS = fps, fps, fps
	}
	if frames > 0 {
		s.RenderTime = total / time.Duration(frames)
	}
	p.manager.SetStats(s)
}

func writePNG(path string, dev *soft.Device) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dev.Snapshot()); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
