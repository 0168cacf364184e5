// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package overlay

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/gogpu/videorender/video"
)

func newManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	m, err := NewManager(opts...)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{StatusUpdate, "StatusUpdate"},
		{Debug, "Debug"},
		{Count, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestSurfaceFromNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img.SetNRGBA(1, 0, color.NRGBA{R: 5, G: 6, B: 7, A: 8})
	s := SurfaceFromNRGBA(img)
	if s.Width != 2 || s.Height != 1 || s.Stride != 8 {
		t.Fatalf("SurfaceFromNRGBA() = %dx%d stride %d, want 2x1 stride 8", s.Width, s.Height, s.Stride)
	}
	if want := []byte{3, 2, 1, 4, 7, 6, 5, 8}; string(s.Pix) != string(want) {
		t.Errorf("Pix = %v, want %v", s.Pix, want)
	}
}

func TestManagerFreshOnce(t *testing.T) {
	m := newManager(t)
	m.SetText(StatusUpdate, "Connecting...")
	if m.UpdatedSurface(StatusUpdate) != nil {
		t.Error("disabled layer produced a surface")
	}

	m.SetEnabled(StatusUpdate, true)
	s := m.UpdatedSurface(StatusUpdate)
	if s == nil {
		t.Fatal("UpdatedSurface() = nil after enabling a layer with text")
	}
	if s.Width <= 2*textPadding || s.Height <= 2*textPadding {
		t.Errorf("surface %dx%d, want text inside the padding", s.Width, s.Height)
	}
	if m.UpdatedSurface(StatusUpdate) != nil {
		t.Error("UpdatedSurface() returned the same content twice")
	}
	if m.Text(StatusUpdate) != "Connecting..." {
		t.Errorf("Text() = %q, want %q", m.Text(StatusUpdate), "Connecting...")
	}
}

func TestManagerRendersText(t *testing.T) {
	m := newManager(t)
	m.SetEnabled(Debug, true)
	m.SetText(Debug, "one\ntwo lines")
	s := m.UpdatedSurface(Debug)
	if s == nil {
		t.Fatal("UpdatedSurface() = nil")
	}
	single := newManager(t)
	single.SetEnabled(Debug, true)
	single.SetText(Debug, "one")
	if got := single.UpdatedSurface(Debug); got.Height >= s.Height {
		t.Errorf("one line height %d, want less than two lines %d", got.Height, s.Height)
	}

	// The backdrop is translucent black and the glyphs are white.
	if px := s.Pix[0:4]; px[0] != 0 || px[3] != backdropColor.A {
		t.Errorf("corner pixel = %v, want backdrop", px)
	}
	white := false
	for i := 0; i+3 < len(s.Pix); i += 4 {
		if s.Pix[i] == 0xFF && s.Pix[i+1] == 0xFF && s.Pix[i+2] == 0xFF {
			white = true
			break
		}
	}
	if !white {
		t.Error("no glyph pixels rendered")
	}
}

func TestManagerNotify(t *testing.T) {
	m := newManager(t)
	var got []Type
	m.SetNotify(func(t Type) { got = append(got, t) })

	m.SetText(Debug, "hidden") // disabled, no notification
	m.SetEnabled(Debug, true)
	m.SetEnabled(Debug, true) // unchanged
	m.SetText(Debug, "shown")
	m.SetEnabled(StatusUpdate, true)
	m.SetEnabled(Debug, false)

	want := []Type{Debug, Debug, StatusUpdate, Debug}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestManagerClearText(t *testing.T) {
	m := newManager(t)
	m.SetEnabled(StatusUpdate, true)
	m.SetText(StatusUpdate, "x")
	m.SetText(StatusUpdate, "")
	if m.UpdatedSurface(StatusUpdate) != nil {
		t.Error("empty text produced a surface")
	}
}

func TestManagerOutOfRange(t *testing.T) {
	m := newManager(t)
	if m.IsEnabled(Count) || m.IsEnabled(-1) {
		t.Error("IsEnabled() = true for an invalid type")
	}
	if m.UpdatedSurface(Count) != nil {
		t.Error("UpdatedSurface() != nil for an invalid type")
	}
}

func TestFormatStats(t *testing.T) {
	m := newManager(t, WithLanguage(language.English))
	got := m.FormatStats(Stats{
		Codec:         video.HEVCMain,
		Width:         1920,
		Height:        1080,
		ReceivedFPS:   59.94,
		DecodedFPS:    59.9,
		RenderedFPS:   60,
		Frames:        12345,
		DroppedFrames: 123,
		DecodeTime:    1500 * time.Microsecond,
		RenderTime:    250 * time.Microsecond,
	})
	for _, want := range []string{
		"1920x1080 59.94 FPS (codec: HEVCMain)",
		"Frames: 12,345, dropped: 123 (1.00%)",
		"Average decoding time: 1.50 ms",
		"Average rendering time: 0.25 ms",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatStats() = %q, missing %q", got, want)
		}
	}
	if n := strings.Count(got, "\n"); n != 5 {
		t.Errorf("FormatStats() has %d line breaks, want 5", n)
	}
}

func TestFormatStatsNoFrames(t *testing.T) {
	m := newManager(t)
	got := m.FormatStats(Stats{})
	if !strings.Contains(got, "dropped: 0 (0.00%)") {
		t.Errorf("FormatStats(zero) = %q, want 0%% drops", got)
	}
}

func TestManagerIsEnabledDuringRasterization(t *testing.T) {
	m := newManager(t, WithFontSize(48))
	m.SetEnabled(Debug, true)

	// Hold the face so the next SetText stalls inside rasterization.
	m.faceMu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.SetText(Debug, strings.Repeat("Rendering frame rate: 59.94 FPS\n", 200))
	}()

	enabled := make(chan bool, 1)
	go func() { enabled <- m.IsEnabled(Debug) }()
	select {
	case got := <-enabled:
		if !got {
			t.Error("IsEnabled(Debug) = false, want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("IsEnabled() blocked on a text update")
	}

	surface := make(chan *Surface, 1)
	go func() { surface <- m.UpdatedSurface(Debug) }()
	select {
	case <-surface:
	case <-time.After(2 * time.Second):
		t.Fatal("UpdatedSurface() blocked on a text update")
	}

	m.faceMu.Unlock()
	<-done
	if m.UpdatedSurface(Debug) == nil {
		t.Error("UpdatedSurface() = nil after the update finished")
	}
}

func TestManagerStaleRenderDropped(t *testing.T) {
	m := newManager(t)
	m.SetEnabled(Debug, true)

	m.faceMu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.SetText(Debug, "old")
	}()
	// Wait until the first update has taken its generation.
	for m.Text(Debug) != "old" {
		time.Sleep(time.Millisecond)
	}
	m.SetEnabled(Debug, false)
	m.faceMu.Unlock()
	<-done

	if s := m.UpdatedSurface(Debug); s != nil {
		t.Error("superseded rasterization published a surface")
	}
}
