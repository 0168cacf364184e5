// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/videorender/video"
)

// Default text rendering parameters.
const (
	DefaultFontSize = 16
	textPadding     = 6
)

var (
	textColor     = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	backdropColor = color.NRGBA{A: 0xA0}
)

// Stats are the streaming statistics shown by the Debug layer.
type Stats struct {
	Codec  video.Format
	Width  int
	Height int

	ReceivedFPS float64
	DecodedFPS  float64
	RenderedFPS float64

	Frames        int64
	DroppedFrames int64

	DecodeTime time.Duration
	RenderTime time.Duration
}

// Manager is a Source that renders text content. It is safe for
// concurrent use.
//
// Every change is reported to the function set with SetNotify, which is
// normally wired to the renderer's NotifyOverlayUpdated. Text is
// rasterized outside the state lock, so IsEnabled and UpdatedSurface
// never wait for a change in progress.
type Manager struct {
	printer *message.Printer

	// faceMu serializes rasterization. font.Face is not safe for
	// concurrent use.
	faceMu sync.Mutex
	face   font.Face

	enabled [Count]atomic.Bool

	mu     sync.Mutex
	text   [Count]string
	gen    [Count]uint64
	fresh  [Count]*Surface
	notify func(Type)
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	size float64
	tag  language.Tag
}

// WithFontSize sets the text size in pixels.
func WithFontSize(size float64) ManagerOption {
	return func(o *managerOptions) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithLanguage sets the language used for number formatting.
func WithLanguage(tag language.Tag) ManagerOption {
	return func(o *managerOptions) { o.tag = tag }
}

// NewManager creates a manager that renders with Go Regular.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	o := managerOptions{size: DefaultFontSize, tag: language.English}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    o.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("overlay: create face: %w", err)
	}
	return &Manager{
		face:    face,
		printer: message.NewPrinter(o.tag),
	}, nil
}

// SetNotify sets the function called after every change of a layer.
func (m *Manager) SetNotify(fn func(Type)) {
	m.mu.Lock()
	m.notify = fn
	m.mu.Unlock()
}

// IsEnabled implements Source. It never blocks.
func (m *Manager) IsEnabled(t Type) bool {
	if t < 0 || t >= Count {
		return false
	}
	return m.enabled[t].Load()
}

// UpdatedSurface implements Source.
func (m *Manager) UpdatedSurface(t Type) *Surface {
	if t < 0 || t >= Count {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.fresh[t]
	m.fresh[t] = nil
	return s
}

// Text returns the current text of layer t.
func (m *Manager) Text(t Type) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text[t]
}

// SetEnabled shows or hides layer t. Enabling re-renders the current text.
func (m *Manager) SetEnabled(t Type, enabled bool) {
	m.mu.Lock()
	if m.enabled[t].Load() == enabled {
		m.mu.Unlock()
		return
	}
	m.enabled[t].Store(enabled)
	m.gen[t]++
	gen, text := m.gen[t], m.text[t]
	m.mu.Unlock()

	if enabled && text != "" {
		m.publish(t, gen, m.render(text))
		return
	}
	m.publish(t, gen, nil)
}

// SetText replaces the text of layer t.
func (m *Manager) SetText(t Type, s string) {
	m.mu.Lock()
	m.text[t] = s
	m.gen[t]++
	gen := m.gen[t]
	enabled := m.enabled[t].Load()
	m.mu.Unlock()

	if !enabled {
		return
	}
	var surf *Surface
	if s != "" {
		surf = m.render(s)
	}
	m.publish(t, gen, surf)
}

// publish stores surf as the fresh content of t unless a later change
// superseded generation gen, then notifies.
func (m *Manager) publish(t Type, gen uint64, surf *Surface) {
	m.mu.Lock()
	if m.gen[t] == gen {
		m.fresh[t] = surf
	}
	notify := m.notify
	m.mu.Unlock()

	if notify != nil {
		notify(t)
	}
}

// SetStats replaces the Debug layer text with formatted statistics.
func (m *Manager) SetStats(s Stats) {
	m.SetText(Debug, m.FormatStats(s))
}

// FormatStats formats s the way the Debug layer shows it.
func (m *Manager) FormatStats(s Stats) string {
	p := m.printer
	var b strings.Builder
	// Dimensions are not quantities, keep them ungrouped.
	size := fmt.Sprintf("%dx%d", s.Width, s.Height)
	b.WriteString(p.Sprintf("Video stream: %s %.2f FPS (codec: %v)\n", size, s.ReceivedFPS, s.Codec))
	b.WriteString(p.Sprintf("Decoding frame rate: %.2f FPS\n", s.DecodedFPS))
	b.WriteString(p.Sprintf("Rendering frame rate: %.2f FPS\n", s.RenderedFPS))
	dropped := 0.0
	if s.Frames > 0 {
		dropped = 100 * float64(s.DroppedFrames) / float64(s.Frames)
	}
	b.WriteString(p.Sprintf("Frames: %d, dropped: %d (%.2f%%)\n", s.Frames, s.DroppedFrames, dropped))
	b.WriteString(p.Sprintf("Average decoding time: %.2f ms\n", float64(s.DecodeTime.Microseconds())/1000))
	b.WriteString(p.Sprintf("Average rendering time: %.2f ms", float64(s.RenderTime.Microseconds())/1000))
	return b.String()
}

// render rasterizes text onto a translucent backdrop.
func (m *Manager) render(text string) *Surface {
	m.faceMu.Lock()
	defer m.faceMu.Unlock()

	lines := strings.Split(text, "\n")
	metrics := m.face.Metrics()
	lineHeight := metrics.Height.Ceil()

	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(m.face, line).Ceil())
	}
	w := width + 2*textPadding
	h := lineHeight*len(lines) + 2*textPadding

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(backdropColor), image.Point{}, xdraw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: m.face,
	}
	for i, line := range lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(textPadding),
			Y: fixed.I(textPadding+i*lineHeight) + metrics.Ascent,
		}
		d.DrawString(line)
	}
	return SurfaceFromNRGBA(img)
}
