// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import "sync"

// Op names a driver operation for fault injection and call counting.
type Op string

// Operations.
const (
	OpOpen               Op = "open"
	OpDisplayMode        Op = "display-mode"
	OpCaps               Op = "caps"
	OpCreateDevice       Op = "create-device"
	OpScheduling         Op = "scheduling"
	OpFrameLatency       Op = "frame-latency"
	OpBackBuffer         Op = "back-buffer"
	OpClear              Op = "clear"
	OpBeginScene         Op = "begin-scene"
	OpEndScene           Op = "end-scene"
	OpPresent            Op = "present"
	OpStretchRect        Op = "stretch-rect"
	OpCreateTexture      Op = "create-texture"
	OpCreateVertexBuffer Op = "create-vertex-buffer"
	OpLock               Op = "lock"
	OpRenderState        Op = "render-state"
	OpDraw               Op = "draw"
	OpDecoderService     Op = "decoder-service"
	OpProcessorService   Op = "processor-service"
	OpDecoderProfiles    Op = "decoder-profiles"
	OpDecoderConfigs     Op = "decoder-configs"
	OpCreateSurfaces     Op = "create-surfaces"
	OpCreateDecoder      Op = "create-decoder"
	OpProcessorCaps      Op = "processor-caps"
	OpProcAmpRange       Op = "proc-amp-range"
	OpCreateProcessor    Op = "create-processor"
	OpBlt                Op = "blt"
)

type fault struct {
	err       error
	remaining int
}

// Faults holds injected failures and per-operation call counts.
type Faults struct {
	mu      sync.Mutex
	pending map[Op]*fault
	calls   map[Op]int
}

func newFaults() *Faults {
	return &Faults{
		pending: make(map[Op]*fault),
		calls:   make(map[Op]int),
	}
}

func (f *Faults) inject(op Op, err error, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil || times == 0 {
		delete(f.pending, op)
		return
	}
	f.pending[op] = &fault{err: err, remaining: times}
}

// hit records a call of op and returns its injected error, if any.
func (f *Faults) hit(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	ft, ok := f.pending[op]
	if !ok {
		return nil
	}
	if ft.remaining > 0 {
		ft.remaining--
		if ft.remaining == 0 {
			delete(f.pending, op)
		}
	}
	return ft.err
}

// Calls returns how many times op was invoked.
func (f *Faults) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Clear removes every injected fault. Call counts are kept.
func (f *Faults) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.pending)
}
