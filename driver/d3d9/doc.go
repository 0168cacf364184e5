// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package d3d9 implements the driver contract on Direct3D 9Ex and DXVA2.
//
// The package talks to d3d9.dll, dxva2.dll and dwmapi.dll through COM
// vtables with no cgo. Importing it on Windows registers the "d3d9"
// driver, which [driver.Best] prefers over the CPU fallback:
//
//	import _ "github.com/gogpu/videorender/driver/d3d9"
//
//	drv, err := driver.Lookup("")
//
// On other platforms the package only provides the format and state
// translation tables.
package d3d9
