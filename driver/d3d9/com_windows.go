// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d9

import (
	"syscall"
	"unsafe"

	"github.com/gogpu/videorender/driver"
)

// vtblRelease is the IUnknown::Release slot.
const vtblRelease = 2

// vtblMax bounds the vtable slots any wrapped interface uses.
const vtblMax = 160

// object is the memory layout of every COM interface: a pointer to its
// vtable. Interface pointers are held as *object.
type object struct {
	vtbl *[vtblMax]uintptr
}

// call invokes vtable slot i with o as the receiver. Arguments may be
// converted pointers; they are moved to the heap and kept alive for the
// duration of the call.
//
//go:uintptrescapes
func (o *object) call(i int, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(o.vtbl[i], append([]uintptr{uintptr(unsafe.Pointer(o))}, args...)...)
	return r
}

// hr invokes slot i and checks the HRESULT.
//
//go:uintptrescapes
func (o *object) hr(i int, args ...uintptr) error {
	return check(o.call(i, args...))
}

func (o *object) release() {
	if o != nil {
		o.call(vtblRelease)
	}
}

// Interface IDs.
var (
	iidDirectXVideoDecoderService   = driver.GUID{Data1: 0xfc51a551, Data2: 0xd5e7, Data3: 0x11d9, Data4: [8]byte{0xaf, 0x55, 0x00, 0x05, 0x4e, 0x43, 0xff, 0x02}}
	iidDirectXVideoProcessorService = driver.GUID{Data1: 0xfc51a552, Data2: 0xd5e7, Data3: 0x11d9, Data4: [8]byte{0xaf, 0x55, 0x00, 0x05, 0x4e, 0x43, 0xff, 0x02}}
)

func boolArg(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

// rect is a Win32 RECT.
type rect struct {
	Left, Top, Right, Bottom int32
}
