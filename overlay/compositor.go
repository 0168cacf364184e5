// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

// ErrOverlayUpdate is wrapped by errors from Update. The layer keeps its
// previous content when an update fails.
var ErrOverlayUpdate = errors.New("overlay: update failed")

// quad is a layer's GPU resources. It is published and retired as a unit.
type quad struct {
	tex driver.Texture
	vb  driver.VertexBuffer
}

func (q *quad) release() {
	q.tex.Release()
	q.vb.Release()
}

// Compositor owns the GPU side of the overlay layers.
//
// Update may run on any goroutine, one call at a time per compositor.
// Render runs on the render goroutine and never blocks on Update.
//
// A quad replaced by Update is released immediately when no Render is in
// flight. Otherwise it is retired and released by the first Render that
// finishes with no other Render in flight.
type Compositor struct {
	dev    driver.Device
	src    Source
	logger *slog.Logger

	width  int
	height int

	updateMu sync.Mutex
	layers   [Count]atomic.Pointer[quad]

	// drawing counts Render calls between loading a quad and finishing
	// with it.
	drawing atomic.Int32

	retiredMu sync.Mutex
	retired   []*quad
}

// NewCompositor creates a compositor drawing content from src onto a
// width x height render target.
func NewCompositor(dev driver.Device, src Source, width, height int, logger *slog.Logger) *Compositor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compositor{
		dev:    dev,
		src:    src,
		logger: logger,
		width:  width,
		height: height,
	}
}

// RenderState is the fixed pipeline state for drawing overlays: no depth,
// culling or lighting, texture modulated by diffuse, linear sampling and
// source-alpha blending.
func RenderState() driver.RenderState {
	blend := gputypes.BlendStateAlpha()
	return driver.RenderState{
		DepthTest: false,
		Lighting:  false,
		Cull:      gputypes.CullModeNone,
		Blend:     &blend,
		TextureOp: driver.TextureOpModulate,
		MinFilter: gputypes.FilterModeLinear,
		MagFilter: gputypes.FilterModeLinear,
	}
}

// Setup applies RenderState to the device.
func (c *Compositor) Setup() error {
	rs := RenderState()
	return c.dev.SetRenderState(&rs)
}

// Live reports whether layer t currently has content.
func (c *Compositor) Live(t Type) bool {
	return c.layers[t].Load() != nil
}

// Update refreshes layer t from the source. A disabled layer is dropped.
// An enabled layer without fresh content is left as is.
func (c *Compositor) Update(t Type) error {
	if t < 0 || t >= Count {
		return fmt.Errorf("%w: invalid type %d", ErrOverlayUpdate, t)
	}
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	if !c.src.IsEnabled(t) {
		// Drain a pending surface so it is not shown on re-enable.
		_ = c.src.UpdatedSurface(t)
		c.publish(t, nil)
		return nil
	}
	s := c.src.UpdatedSurface(t)
	if s == nil {
		return nil
	}

	q, err := c.build(t, s)
	if err != nil {
		c.logger.Error("overlay update failed", "type", t, "err", err)
		return fmt.Errorf("%w: %v: %w", ErrOverlayUpdate, t, err)
	}
	c.publish(t, q)
	return nil
}

// build uploads s and computes its quad.
func (c *Compositor) build(t Type, s *Surface) (*quad, error) {
	if s.Width <= 0 || s.Height <= 0 || s.Stride < s.Width*4 || len(s.Pix) < (s.Height-1)*s.Stride+s.Width*4 {
		return nil, fmt.Errorf("malformed surface %dx%d stride %d", s.Width, s.Height, s.Stride)
	}

	tex, err := c.dev.CreateTexture(s.Width, s.Height, driver.FormatBGRA8)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	lr, err := tex.Lock()
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("lock texture: %w", err)
	}
	copyRows(lr.Pix, lr.Pitch, s.Pix, s.Stride, s.Height)
	if err := tex.Unlock(); err != nil {
		tex.Release()
		return nil, fmt.Errorf("unlock texture: %w", err)
	}

	verts := c.vertices(t, s.Width, s.Height)
	vb, err := c.dev.CreateVertexBuffer(len(verts) * driver.VertexSize)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	buf, err := vb.Lock()
	if err != nil {
		tex.Release()
		vb.Release()
		return nil, fmt.Errorf("lock vertex buffer: %w", err)
	}
	driver.PutVertices(buf, verts[:])
	if err := vb.Unlock(); err != nil {
		tex.Release()
		vb.Release()
		return nil, fmt.Errorf("unlock vertex buffer: %w", err)
	}
	return &quad{tex: tex, vb: vb}, nil
}

// copyRows copies h rows. Matching pitches take a single copy.
func copyRows(dst []byte, dstPitch int, src []byte, srcPitch, h int) {
	if dstPitch == srcPitch {
		copy(dst[:dstPitch*h], src)
		return
	}
	n := min(dstPitch, srcPitch)
	for y := 0; y < h; y++ {
		copy(dst[y*dstPitch:y*dstPitch+n], src[y*srcPitch:])
	}
}

// Anchor returns the top-left corner of a w x h layer of type t.
func (c *Compositor) Anchor(t Type, h int) (x, y float32) {
	if t == StatusUpdate {
		return 0, float32(c.height - h)
	}
	return 0, 0
}

// vertices returns the layer quad as a triangle strip: top-left,
// top-right, bottom-left, bottom-right.
func (c *Compositor) vertices(t Type, w, h int) [4]driver.Vertex {
	x, y := c.Anchor(t, h)
	fw, fh := float32(w), float32(h)
	return [4]driver.Vertex{
		{X: x, Y: y, Z: 0, RHW: 1, U: 0, V: 0},
		{X: x + fw, Y: y, Z: 0, RHW: 1, U: 1, V: 0},
		{X: x, Y: y + fh, Z: 0, RHW: 1, U: 0, V: 1},
		{X: x + fw, Y: y + fh, Z: 0, RHW: 1, U: 1, V: 1},
	}
}

// publish makes q the live quad of t and disposes of the previous one.
func (c *Compositor) publish(t Type, q *quad) {
	old := c.layers[t].Swap(q)
	if old == nil {
		return
	}
	// A Render that loaded old incremented drawing before loading, so a
	// zero count here means nobody can still be using it.
	if c.drawing.Load() == 0 {
		old.release()
		return
	}
	c.retiredMu.Lock()
	c.retired = append(c.retired, old)
	c.retiredMu.Unlock()
}

// Render draws layer t if it is enabled and has content.
func (c *Compositor) Render(t Type) error {
	if t < 0 || t >= Count || !c.src.IsEnabled(t) {
		return nil
	}

	c.drawing.Add(1)
	err := c.draw(c.layers[t].Load())
	c.drawing.Add(-1)

	c.reclaim()
	return err
}

func (c *Compositor) draw(q *quad) error {
	if q == nil {
		return nil
	}
	if err := c.dev.SetTexture(0, q.tex); err != nil {
		return fmt.Errorf("overlay: set texture: %w", err)
	}
	if err := c.dev.SetStreamSource(q.vb, driver.VertexSize); err != nil {
		return fmt.Errorf("overlay: set stream source: %w", err)
	}
	if err := c.dev.DrawPrimitive(gputypes.PrimitiveTopologyTriangleStrip, 0, 2); err != nil {
		return fmt.Errorf("overlay: draw: %w", err)
	}
	return nil
}

// reclaim releases retired quads once no draw is in flight. It gives up
// instead of waiting when an update holds the list.
func (c *Compositor) reclaim() {
	if !c.retiredMu.TryLock() {
		return
	}
	var done []*quad
	if len(c.retired) > 0 && c.drawing.Load() == 0 {
		done = c.retired
		c.retired = nil
	}
	c.retiredMu.Unlock()
	for _, q := range done {
		q.release()
	}
}

// Close releases every layer. No Render or Update may run concurrently.
func (c *Compositor) Close() {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()
	for t := range c.layers {
		if q := c.layers[t].Swap(nil); q != nil {
			q.release()
		}
	}
	c.retiredMu.Lock()
	for _, q := range c.retired {
		q.release()
	}
	c.retired = nil
	c.retiredMu.Unlock()
}
