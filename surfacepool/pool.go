// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surfacepool hands decode-target surfaces to the decode framework.
//
// The pool is a fixed arena filled once at negotiation time. Acquire walks
// a cursor over it and never reuses a slot: the decoder was created bound to
// exactly these surfaces and the decode framework recycles frames itself,
// so the renderer only has to lend each surface out once.
//
// Slots are lent as a [Ref], a (slot, generation) pair. Closing the pool
// retires its generation, after which every outstanding Ref resolves to
// nothing instead of to a released surface.
package surfacepool

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/videorender/driver"
)

// ErrPoolExhausted is returned by Acquire once every slot has been handed out.
var ErrPoolExhausted = errors.New("surfacepool: decode surfaces exhausted")

// Pool is a fixed-capacity arena of decode-target surfaces.
// Acquire may be called from any goroutine.
type Pool struct {
	surfaces []driver.Surface
	logger   *slog.Logger

	cursor atomic.Int64
	gen    atomic.Uint64

	closeOnce sync.Once
}

// New creates a pool over surfaces. The pool takes ownership and releases
// them on Close. A nil logger discards output.
func New(surfaces []driver.Surface, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Pool{
		surfaces: surfaces,
		logger:   logger,
	}
	p.gen.Store(1)
	return p
}

// Acquire returns the next unused slot. Once all slots are handed out it
// returns ErrPoolExhausted for every call, which the decode framework
// treats as a failure to get a frame buffer.
func (p *Pool) Acquire() (Ref, error) {
	n := int64(len(p.surfaces))
	for {
		gen := p.gen.Load()
		if gen == 0 {
			return Ref{}, ErrPoolExhausted
		}
		cur := p.cursor.Load()
		if cur >= n {
			return Ref{}, ErrPoolExhausted
		}
		if p.cursor.CompareAndSwap(cur, cur+1) {
			p.logger.Info("decoder surface high-water mark", "index", cur, "capacity", n)
			return Ref{pool: p, slot: int(cur), gen: gen}, nil
		}
	}
}

// Len returns the number of slots handed out so far.
func (p *Pool) Len() int {
	return int(min(p.cursor.Load(), int64(len(p.surfaces))))
}

// Cap returns the number of slots.
func (p *Pool) Cap() int { return len(p.surfaces) }

// Surfaces returns the surfaces in slot order. The slice is shared and
// must not be modified.
func (p *Pool) Surfaces() []driver.Surface { return p.surfaces }

// Close releases every surface and invalidates all outstanding refs.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		// Generation 0 marks a closed pool; live refs never carry it.
		p.gen.Store(0)
		for _, s := range p.surfaces {
			if s != nil {
				s.Release()
			}
		}
	})
}

// Ref is a borrowed slot. The zero Ref resolves to nothing.
type Ref struct {
	pool *Pool
	slot int
	gen  uint64
}

// Slot returns the slot index.
func (r Ref) Slot() int { return r.slot }

// Valid reports whether the ref still resolves to a surface.
func (r Ref) Valid() bool {
	return r.pool != nil && r.gen != 0 && r.pool.gen.Load() == r.gen
}

// Surface resolves the ref. ok is false when the pool has been closed
// since the ref was acquired.
func (r Ref) Surface() (s driver.Surface, ok bool) {
	if !r.Valid() {
		return nil, false
	}
	return r.pool.surfaces[r.slot], true
}
