// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surfacepool

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/videorender/driver"
)

type fakeSurface struct {
	id       int
	released atomic.Bool
}

func (s *fakeSurface) Width() int            { return 64 }
func (s *fakeSurface) Height() int           { return 64 }
func (s *fakeSurface) Format() driver.Format { return driver.FormatNV12 }
func (s *fakeSurface) Release()              { s.released.Store(true) }

func newSurfaces(n int) ([]driver.Surface, []*fakeSurface) {
	out := make([]driver.Surface, n)
	raw := make([]*fakeSurface, n)
	for i := range out {
		raw[i] = &fakeSurface{id: i}
		out[i] = raw[i]
	}
	return out, raw
}

func TestAcquireExhaustion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	surfaces, raw := newSurfaces(4)
	p := New(surfaces, logger)

	for i := 0; i < 4; i++ {
		ref, err := p.Acquire()
		if err != nil {
			t.Fatalf("Acquire() #%d error = %v", i, err)
		}
		s, ok := ref.Surface()
		if !ok {
			t.Fatalf("Acquire() #%d ref does not resolve", i)
		}
		if s.(*fakeSurface) != raw[i] {
			t.Errorf("Acquire() #%d = slot %d, want %d", i, s.(*fakeSurface).id, i)
		}
	}
	if _, err := p.Acquire(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Acquire() #5 error = %v, want ErrPoolExhausted", err)
	}
	if _, err := p.Acquire(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Acquire() #6 error = %v, want ErrPoolExhausted", err)
	}

	if got := strings.Count(buf.String(), "high-water mark"); got != 4 {
		t.Errorf("high-water mark notices = %d, want 4", got)
	}
	if p.Len() != 4 || p.Cap() != 4 {
		t.Errorf("Len(), Cap() = %d, %d, want 4, 4", p.Len(), p.Cap())
	}
}

func TestAcquireConcurrent(t *testing.T) {
	const n = 64
	surfaces, _ := newSurfaces(n)
	p := New(surfaces, nil)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		seen  = make(map[int]int)
		fails atomic.Int32
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				ref, err := p.Acquire()
				if err != nil {
					fails.Add(1)
					continue
				}
				mu.Lock()
				seen[ref.Slot()]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("distinct slots = %d, want %d", len(seen), n)
	}
	for slot, count := range seen {
		if count != 1 {
			t.Errorf("slot %d handed out %d times, want 1", slot, count)
		}
	}
	if got := int(fails.Load()); got != 8*n-n {
		t.Errorf("exhausted acquires = %d, want %d", got, 8*n-n)
	}
}

func TestCloseInvalidatesRefs(t *testing.T) {
	surfaces, raw := newSurfaces(2)
	p := New(surfaces, nil)

	ref, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !ref.Valid() {
		t.Fatal("Valid() = false before Close")
	}

	p.Close()
	p.Close()

	if _, ok := ref.Surface(); ok {
		t.Error("Surface() resolved after Close")
	}
	for i, s := range raw {
		if !s.released.Load() {
			t.Errorf("surface %d not released", i)
		}
	}
	if _, err := p.Acquire(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolExhausted", err)
	}
}

func TestZeroRef(t *testing.T) {
	var r Ref
	if r.Valid() {
		t.Error("zero Ref is valid")
	}
	if s, ok := r.Surface(); ok || s != nil {
		t.Errorf("zero Ref Surface() = %v, %v, want nil, false", s, ok)
	}
}
