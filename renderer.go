// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package videorender

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/colordesc"
	"github.com/gogpu/videorender/driver"
	"github.com/gogpu/videorender/internal/bringup"
	"github.com/gogpu/videorender/internal/negotiate"
	"github.com/gogpu/videorender/internal/vproc"
	"github.com/gogpu/videorender/overlay"
	"github.com/gogpu/videorender/policy"
	"github.com/gogpu/videorender/surfacepool"
	"github.com/gogpu/videorender/video"
)

// DecoderContext is the hardware context the decode framework binds to.
type DecoderContext = negotiate.DecoderContext

// Workaround is a set of decoder quirk flags in DecoderContext.
type Workaround = negotiate.Workaround

// WorkaroundIntelClearVideo marks the Intel ClearVideo H.264 profile.
const WorkaroundIntelClearVideo = negotiate.WorkaroundIntelClearVideo

// Params describes the stream and window to render.
type Params struct {
	// Format is the negotiated codec.
	Format video.Format

	// Width and Height are the coded video size.
	Width  int
	Height int

	Window driver.Window
	VSync  bool

	// Fullscreen requests exclusive fullscreen. It is merged into
	// Window.Fullscreen.
	Fullscreen bool
}

// Frame is one decoded frame.
type Frame struct {
	// Surface is the decode target returned by GetBuffer.
	Surface surfacepool.Ref

	// Width and Height are the visible size. Zero means the size passed
	// to Initialize.
	Width  int
	Height int

	Color video.ColorMetadata
}

const (
	stateNew int32 = iota
	stateReady
	stateClosed
)

// Renderer decodes into GPU surfaces and presents them with overlays.
//
// GetBuffer may be called from the decode goroutine, RenderFrame from the
// render goroutine and NotifyOverlayUpdated from a third goroutine, all
// concurrently. Initialize and Close must not overlap any other call.
type Renderer struct {
	drv    driver.Driver
	opts   options
	logger *slog.Logger
	events events

	state   atomic.Int32
	boosted bool

	params   Params
	dev      *bringup.Device
	decSvc   driver.DecoderService
	session  *negotiate.Session
	pool     *surfacepool.Pool
	target   driver.Surface
	proc     *vproc.Processor
	overlays *overlay.Compositor

	displayWidth  int
	displayHeight int

	// frameIndex is only touched by RenderFrame.
	frameIndex int64
}

// New creates a renderer on drv. Nothing is allocated until Initialize.
func New(drv driver.Driver, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	if o.source == nil {
		o.source = noOverlays{}
	}
	return &Renderer{
		drv:    drv,
		opts:   o,
		logger: o.logger,
		events: newEvents(),
	}
}

// noOverlays is the Source used without WithOverlaySource.
type noOverlays struct{}

func (noOverlays) IsEnabled(overlay.Type) bool                { return false }
func (noOverlays) UpdatedSurface(overlay.Type) *overlay.Surface { return nil }

// IsFormatSupported reports whether the renderer can take frames of codec
// in pixel format pix. Only hardware decode surfaces are accepted.
func (r *Renderer) IsFormatSupported(codec video.Format, pix video.PixelFormat) bool {
	return pix == video.PixelFormatDXVA2 && negotiate.Supported(codec)
}

// RenderThreadSupported reports whether RenderFrame may run on a
// goroutine other than the one that called Initialize. It always may.
func (r *Renderer) RenderThreadSupported() bool { return true }

// Events delivers EventRenderTargetsReset after a device failure. The
// channel holds one event; further failures before it is drained are
// coalesced.
func (r *Renderer) Events() <-chan Event { return r.events }

// Initialize creates the device, negotiates the decoder and prepares the
// render path. On failure everything acquired so far is released and the
// error wraps one of the Initialize errors.
func (r *Renderer) Initialize(p Params) error {
	switch r.state.Load() {
	case stateReady:
		return errors.New("videorender: already initialized")
	case stateClosed:
		return ErrClosed
	}
	if p.Fullscreen {
		p.Window.Fullscreen = true
	}
	r.params = p

	if err := r.initialize(); err != nil {
		r.teardown()
		return err
	}
	r.state.Store(stateReady)
	r.logger.Info("renderer initialized",
		"codec", p.Format,
		"width", p.Width,
		"height", p.Height,
		"display", fmt.Sprintf("%dx%d", r.displayWidth, r.displayHeight),
		"processor", r.proc.Active())
	return nil
}

func (r *Renderer) initialize() error {
	p := r.params

	// Multimedia class scheduling lowers frame pacing jitter. It is a
	// hint, so failure is not fatal.
	if b, ok := r.drv.(driver.SchedulingBooster); ok {
		if err := b.EnableLowLatencyScheduling(true); err != nil {
			r.logger.Warn("low-latency scheduling unavailable", "err", err)
		} else {
			r.boosted = true
		}
	}

	dev, err := bringup.Open(r.drv, bringup.Params{
		Window: p.Window,
		VSync:  p.VSync,
		Format: p.Format,
	}, r.logger)
	if err != nil {
		return err
	}
	r.dev = dev

	adapter := policy.FromInfo(dev.Adapter)
	d := r.opts.policy.DisableCodec(adapter, p.Format)
	if d.Warning != "" {
		r.logger.Warn(d.Warning, "adapter", adapter)
	}
	if d.Result {
		r.logger.Warn("GPU decoding disabled for codec", "codec", p.Format, "adapter", adapter, "rule", d.Rule)
		return fmt.Errorf("%w: %v on %v", ErrCodecDisabled, p.Format, adapter)
	}

	svc, err := dev.DecoderService()
	if err != nil {
		return fmt.Errorf("%w: decoder service: %w", ErrDeviceInit, err)
	}
	r.decSvc = svc

	session, err := negotiate.Negotiate(svc, negotiate.Request{
		Format: p.Format,
		Width:  p.Width,
		Height: p.Height,
	}, r.logger)
	if err != nil {
		return err
	}
	r.session = session
	r.pool = surfacepool.New(session.Surfaces, r.logger)

	target, err := dev.BackBuffer()
	if err != nil {
		return fmt.Errorf("%w: back buffer: %w", ErrDeviceInit, err)
	}
	r.target = target
	r.displayWidth, r.displayHeight = target.Width(), target.Height()

	avoid := r.opts.policy.AvoidProcessor(adapter)
	if avoid.Warning != "" {
		r.logger.Warn(avoid.Warning, "adapter", adapter)
	}
	r.proc = vproc.New(dev, session.Desc, target.Format(), avoid.Result, r.logger)

	r.overlays = overlay.NewCompositor(dev, r.opts.source, r.displayWidth, r.displayHeight, r.logger)
	if err := r.overlays.Setup(); err != nil {
		return fmt.Errorf("%w: overlay render state: %w", ErrDeviceInit, err)
	}
	return nil
}

// ready returns nil when the renderer accepts frames.
func (r *Renderer) ready() error {
	switch r.state.Load() {
	case stateReady:
		return nil
	case stateClosed:
		return ErrClosed
	default:
		return ErrNotInitialized
	}
}

// DecoderContext returns the hardware context for the decode framework.
func (r *Renderer) DecoderContext() (DecoderContext, error) {
	if err := r.ready(); err != nil {
		return DecoderContext{}, err
	}
	return r.session.Context(), nil
}

// GetBuffer hands out the next decode surface. Surfaces are never
// recycled: once the pool is exhausted it returns ErrPoolExhausted.
func (r *Renderer) GetBuffer() (surfacepool.Ref, error) {
	if err := r.ready(); err != nil {
		return surfacepool.Ref{}, err
	}
	return r.pool.Acquire()
}

// DecoderColorspace is the colorspace the decoder should assume when the
// stream does not signal one.
func (r *Renderer) DecoderColorspace() video.Colorspace {
	if r.proc == nil {
		return video.ColorspaceRec709
	}
	return r.proc.DefaultColorspace()
}

// FrameIndex returns the number of frames RenderFrame has attempted.
func (r *Renderer) FrameIndex() int64 { return r.frameIndex }

// ProcessorActive reports whether frames go through the hardware video
// processor rather than raw copies.
func (r *Renderer) ProcessorActive() bool {
	return r.proc != nil && r.proc.Active()
}

// NotifyOverlayUpdated uploads fresh content of overlay t. It may run
// concurrently with RenderFrame, which keeps drawing the previous content
// until the new one is complete.
func (r *Renderer) NotifyOverlayUpdated(t overlay.Type) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.overlays.Update(t)
}

// TestRenderFrame reports whether f could be rendered, without drawing.
func (r *Renderer) TestRenderFrame(f *Frame) error {
	if err := r.ready(); err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	if _, ok := f.Surface.Surface(); !ok {
		return fmt.Errorf("%w: stale surface in slot %d", ErrFrameRender, f.Surface.Slot())
	}
	return nil
}

// RenderFrame draws f with the overlays and presents it. A nil frame
// marks the end of the stream and is ignored.
//
// A device failure drops the frame, posts EventRenderTargetsReset and
// returns an error wrapping ErrFrameRender. The caller should then
// recreate the renderer.
func (r *Renderer) RenderFrame(f *Frame) error {
	if f == nil {
		return nil
	}
	if err := r.ready(); err != nil {
		return err
	}

	surface, ok := f.Surface.Surface()
	if !ok {
		r.logger.Debug("dropping frame with stale surface", "slot", f.Surface.Slot())
		return nil
	}

	w, h := f.Width, f.Height
	if w <= 0 || h <= 0 {
		w, h = r.params.Width, r.params.Height
	}
	src := image.Rect(0, 0, w, h)
	sample := driver.VideoSample{
		Start:       r.frameIndex,
		End:         r.frameIndex + 1,
		Format:      colordesc.Describe(f.Color),
		Surface:     surface,
		SrcRect:     src,
		DstRect:     vproc.Fit(src, image.Rect(0, 0, r.displayWidth, r.displayHeight)),
		PlanarAlpha: driver.OpaqueAlpha,
	}
	r.frameIndex++

	dev := r.dev
	if err := dev.Clear(gputypes.ColorBlack); err != nil {
		return r.fail("clear", err)
	}
	if err := dev.BeginScene(); err != nil {
		return r.fail("begin scene", err)
	}
	if err := r.proc.Render(r.target, sample); err != nil {
		_ = dev.EndScene()
		return r.fail("render video", err)
	}
	for t := overlay.Type(0); t < overlay.Count; t++ {
		if err := r.overlays.Render(t); err != nil {
			r.logger.Error("overlay draw failed", "type", t, "err", err)
		}
	}
	if err := dev.EndScene(); err != nil {
		return r.fail("end scene", err)
	}
	if err := r.present(); err != nil {
		return r.fail("present", err)
	}
	return nil
}

// present presents the back buffer. With a blocking swapchain it polls
// instead of blocking, so the device is not held while the decoder needs
// it.
func (r *Renderer) present() error {
	var flags driver.PresentFlags
	if r.dev.Presentation.Blocking {
		flags = driver.PresentDoNotWait
	}
	for {
		err := r.dev.Present(flags)
		if !errors.Is(err, driver.ErrWasStillDrawing) {
			return err
		}
		time.Sleep(time.Millisecond)
	}
}

// fail logs a device failure and requests a render target reset.
func (r *Renderer) fail(op string, err error) error {
	r.logger.Error(op+" failed", "frame", r.frameIndex-1, "err", err)
	r.events.post(EventRenderTargetsReset)
	if r.opts.onReset != nil {
		r.opts.onReset()
	}
	return fmt.Errorf("%w: %s: %w", ErrFrameRender, op, err)
}

// Close releases every resource. It is safe to call more than once.
func (r *Renderer) Close() error {
	if r.state.Swap(stateClosed) == stateClosed {
		return nil
	}
	r.teardown()
	r.logger.Info("renderer closed", "frames", r.frameIndex)
	return nil
}

// teardown releases the overlays, processor, decoder, pool, back buffer
// and device in that order, then restores normal scheduling.
func (r *Renderer) teardown() {
	if r.overlays != nil {
		r.overlays.Close()
		r.overlays = nil
	}
	if r.proc != nil {
		r.proc.Close()
		r.proc = nil
	}
	if r.session != nil {
		r.session.Close()
		r.session = nil
	}
	if r.decSvc != nil {
		r.decSvc.Release()
		r.decSvc = nil
	}
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	if r.target != nil {
		r.target.Release()
		r.target = nil
	}
	if r.dev != nil {
		r.dev.Release()
		r.dev = nil
	}
	if r.boosted {
		if b, ok := r.drv.(driver.SchedulingBooster); ok {
			if err := b.EnableLowLatencyScheduling(false); err != nil {
				r.logger.Warn("restore scheduling failed", "err", err)
			}
		}
		r.boosted = false
	}
}
