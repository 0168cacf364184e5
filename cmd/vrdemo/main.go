// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command vrdemo runs the video render pipeline headless on the soft
// driver. A synthetic decoder feeds moving color bars through the decode
// surface pool, the renderer draws them with status and statistics
// overlays, and the last presented frame is written as a PNG.
//
// Usage:
//
//	vrdemo --codec hevc --width 1280 --height 720 --frames 120 --out frame.png
//
// Every flag can also be set in a YAML config file (--config) or through
// VIDEORENDER_DEMO_* environment variables.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
