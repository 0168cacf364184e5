// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/videorender/driver"
)

func newTestDevice(t *testing.T, opts ...Option) (*Driver, *Device) {
	t.Helper()
	drv := New(opts...)
	a, err := drv.Open(driver.Window{Provider: gpucontext.NullWindowProvider{W: 64, H: 32}})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	dev, err := a.CreateDevice(&driver.PresentParameters{
		Windowed:        true,
		Width:           64,
		Height:          32,
		BackBufferCount: 1,
		SwapEffect:      driver.SwapEffectDiscard,
	})
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	return drv, dev.(*Device)
}

func TestDriverRegistered(t *testing.T) {
	if !driver.IsRegistered(driver.NameSoft) {
		t.Fatalf("soft driver not registered")
	}
	if d := driver.Get(driver.NameSoft); d == nil || d.Name() != driver.NameSoft {
		t.Errorf("Get(%q) = %v", driver.NameSoft, d)
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	drv := New()
	a, _ := drv.Open(driver.Window{})
	tests := []struct {
		name string
		p    driver.PresentParameters
	}{
		{"zero size", driver.PresentParameters{Windowed: true, BackBufferCount: 1}},
		{"no buffers", driver.PresentParameters{Windowed: true, Width: 8, Height: 8}},
		{"flipex one buffer", driver.PresentParameters{Windowed: true, Width: 8, Height: 8, BackBufferCount: 1, SwapEffect: driver.SwapEffectFlipEx}},
		{"flipex fullscreen", driver.PresentParameters{Width: 8, Height: 8, BackBufferCount: 2, SwapEffect: driver.SwapEffectFlipEx}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.CreateDevice(&tt.p); !errors.Is(err, driver.ErrInvalidCall) {
				t.Errorf("CreateDevice() error = %v, want ErrInvalidCall", err)
			}
		})
	}
}

func TestClearPresentSnapshot(t *testing.T) {
	_, dev := newTestDevice(t)
	if err := dev.Clear(gputypes.ColorRed); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := dev.Present(0); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	got := dev.Snapshot().RGBAAt(10, 10)
	if got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("Snapshot pixel = %v, want opaque red", got)
	}
	if dev.Presents() != 1 {
		t.Errorf("Presents() = %d, want 1", dev.Presents())
	}
}

func TestSceneOrdering(t *testing.T) {
	_, dev := newTestDevice(t)
	if err := dev.EndScene(); !errors.Is(err, driver.ErrInvalidCall) {
		t.Errorf("EndScene() outside scene error = %v, want ErrInvalidCall", err)
	}
	if err := dev.BeginScene(); err != nil {
		t.Fatalf("BeginScene() error = %v", err)
	}
	if err := dev.Present(0); !errors.Is(err, driver.ErrInvalidCall) {
		t.Errorf("Present() inside scene error = %v, want ErrInvalidCall", err)
	}
	if err := dev.EndScene(); err != nil {
		t.Errorf("EndScene() error = %v", err)
	}
}

func TestInjectCountsDown(t *testing.T) {
	drv, dev := newTestDevice(t)
	drv.Inject(OpPresent, driver.ErrWasStillDrawing, 2)
	for i := 0; i < 2; i++ {
		if err := dev.Present(driver.PresentDoNotWait); !errors.Is(err, driver.ErrWasStillDrawing) {
			t.Fatalf("Present() #%d error = %v, want ErrWasStillDrawing", i, err)
		}
	}
	if err := dev.Present(driver.PresentDoNotWait); err != nil {
		t.Errorf("Present() after faults error = %v", err)
	}
	if got := drv.Faults().Calls(OpPresent); got != 3 {
		t.Errorf("Calls(present) = %d, want 3", got)
	}
}

func TestStretchRectFromNV12(t *testing.T) {
	drv, dev := newTestDevice(t)
	svc, err := dev.DecoderService()
	if err != nil {
		t.Fatalf("DecoderService() error = %v", err)
	}
	surfs, err := svc.CreateSurfaces(16, 16, 1, driver.FormatNV12)
	if err != nil {
		t.Fatalf("CreateSurfaces() error = %v", err)
	}
	src := surfs[0].(*Surface)
	src.Fill(image.NewUniform(color.RGBA{R: 200, G: 40, B: 40, A: 255}))

	back, _ := dev.BackBuffer()
	if err := dev.StretchRect(src, image.Rect(0, 0, 16, 16), back, image.Rect(0, 0, 64, 32), gputypes.FilterModeNearest); err != nil {
		t.Fatalf("StretchRect() error = %v", err)
	}
	got := back.(*Surface).Image().RGBAAt(32, 16)
	if absDiff(got.R, 200) > 3 || absDiff(got.G, 40) > 3 || absDiff(got.B, 40) > 3 {
		t.Errorf("StretchRect pixel = %v, want about (200,40,40)", got)
	}
	if drv.Faults().Calls(OpStretchRect) != 1 {
		t.Errorf("Calls(stretch-rect) = %d, want 1", drv.Faults().Calls(OpStretchRect))
	}
}

func TestDrawQuadBlends(t *testing.T) {
	_, dev := newTestDevice(t)
	tex, _ := dev.CreateTexture(4, 4, driver.FormatBGRA8)
	lr, err := tex.Lock()
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			copy(lr.Pix[y*lr.Pitch+x*4:], []byte{255, 0, 0, 255}) // opaque blue
		}
	}
	_ = tex.Unlock()

	vb, _ := dev.CreateVertexBuffer(4 * driver.VertexSize)
	buf, _ := vb.Lock()
	driver.PutVertices(buf, []driver.Vertex{
		{X: 0, Y: 0, RHW: 1},
		{X: 4, Y: 0, RHW: 1, U: 1},
		{X: 0, Y: 4, RHW: 1, V: 1},
		{X: 4, Y: 4, RHW: 1, U: 1, V: 1},
	})
	_ = vb.Unlock()

	blend := gputypes.BlendStateAlpha()
	_ = dev.SetRenderState(&driver.RenderState{Blend: &blend})
	_ = dev.SetTexture(0, tex)
	_ = dev.SetStreamSource(vb, driver.VertexSize)
	_ = dev.Clear(gputypes.ColorBlack)
	_ = dev.BeginScene()
	if err := dev.DrawPrimitive(gputypes.PrimitiveTopologyTriangleStrip, 0, 2); err != nil {
		t.Fatalf("DrawPrimitive() error = %v", err)
	}
	_ = dev.EndScene()
	_ = dev.Present(0)

	snap := dev.Snapshot()
	if got := snap.RGBAAt(1, 1); got.B != 255 || got.R != 0 {
		t.Errorf("pixel inside quad = %v, want blue", got)
	}
	if got := snap.RGBAAt(10, 10); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel outside quad = %v, want black", got)
	}
}

func TestDrawReleasedTexture(t *testing.T) {
	_, dev := newTestDevice(t)
	tex, _ := dev.CreateTexture(2, 2, driver.FormatBGRA8)
	vb, _ := dev.CreateVertexBuffer(4 * driver.VertexSize)
	_ = dev.SetTexture(0, tex)
	_ = dev.SetStreamSource(vb, driver.VertexSize)
	tex.Release()
	_ = dev.BeginScene()
	if err := dev.DrawPrimitive(gputypes.PrimitiveTopologyTriangleStrip, 0, 2); !errors.Is(err, driver.ErrInvalidCall) {
		t.Errorf("DrawPrimitive() with released texture error = %v, want ErrInvalidCall", err)
	}
}

func TestProcessorBltUsesMatrix(t *testing.T) {
	_, dev := newTestDevice(t)
	dsvc, _ := dev.DecoderService()
	surfs, _ := dsvc.CreateSurfaces(16, 16, 1, driver.FormatP010)
	src := surfs[0].(*Surface)
	src.Fill(image.NewUniform(color.RGBA{R: 128, G: 128, B: 128, A: 255}))

	psvc, err := dev.ProcessorService()
	if err != nil {
		t.Fatalf("ProcessorService() error = %v", err)
	}
	proc, err := psvc.CreateProcessor(driver.ProgressiveDevice, &driver.VideoDesc{}, driver.FormatBGRA8)
	if err != nil {
		t.Fatalf("CreateProcessor() error = %v", err)
	}
	back, _ := dev.BackBuffer()
	err = proc.Blt(back, &driver.BltParams{}, []driver.VideoSample{{
		Surface: src,
		SrcRect: image.Rect(0, 0, 16, 16),
		DstRect: image.Rect(0, 0, 64, 32),
		Format:  driver.SampleFormat{Matrix: driver.TransferMatrixBT709, NominalRange: driver.NominalRange0_255},
	}})
	if err != nil {
		t.Fatalf("Blt() error = %v", err)
	}
	// Gray has no chroma, so any matrix must reproduce it.
	got := back.(*Surface).Image().RGBAAt(20, 10)
	if absDiff(got.R, 128) > 3 || absDiff(got.G, 128) > 3 || absDiff(got.B, 128) > 3 {
		t.Errorf("Blt pixel = %v, want about gray 128", got)
	}
	if proc.(*Processor).Blts() != 1 {
		t.Errorf("Blts() = %d, want 1", proc.(*Processor).Blts())
	}
}

func TestProbeDRM(t *testing.T) {
	root := t.TempDir()
	writeCard := func(name, vendor, device string) {
		dir := filepath.Join(root, name, "device")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		_ = os.WriteFile(filepath.Join(dir, "vendor"), []byte(vendor+"\n"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "device"), []byte(device+"\n"), 0o644)
	}
	writeCard("card0", "0x8086", "0x1912")
	writeCard("card1", "0x10de", "0x1b80")
	writeCard("card0-DP-1", "0xffff", "0xffff")

	got, err := ProbeDRM(root)
	if err != nil {
		t.Fatalf("ProbeDRM() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ProbeDRM() found %d cards, want 2", len(got))
	}
	if got[0].VendorID != 0x8086 || got[0].DeviceID != 0x1912 || got[0].Vendor != "Intel" {
		t.Errorf("card0 = %+v", got[0])
	}
	if got[1].VendorID != 0x10DE || got[1].Ordinal != 1 {
		t.Errorf("card1 = %+v", got[1])
	}

	drv := New(WithProbedAdapter(root))
	a, _ := drv.Open(driver.Window{})
	if a.Info().DeviceID != 0x1912 {
		t.Errorf("WithProbedAdapter DeviceID = %#x, want 0x1912", a.Info().DeviceID)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
