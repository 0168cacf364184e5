// Package videorender presents hardware-decoded video frames for a
// game-streaming client.
//
// # Overview
//
// A [Renderer] binds a GPU video decoder to a fixed pool of decode
// surfaces, converts each decoded frame to RGB with the GPU video
// processor (or a raw copy on GPUs where the processor misbehaves), draws
// overlay layers on top and presents the result with a vsync policy
// derived from the window and compositor state.
//
// # Quick Start
//
//	drv, err := driver.Lookup("") // best registered driver
//	r := videorender.New(drv, videorender.WithLogger(logger))
//	defer r.Close()
//
//	err = r.Initialize(videorender.Params{
//	    Format: video.HEVCMain,
//	    Width:  1920,
//	    Height: 1080,
//	    Window: driver.Window{Handle: hwnd, Provider: win},
//	    VSync:  true,
//	})
//
//	// Decode goroutine
//	ref, err := r.GetBuffer()
//
//	// Render goroutine
//	err = r.RenderFrame(&videorender.Frame{Surface: ref, Color: md})
//
// # GPU Policy
//
// Known-buggy hardware paths are disabled per vendor, device and driver
// version by the tables in package policy. Set the environment variables
// DXVA2_DISABLE_VIDPROC_BLACKLIST=1 or DXVA2_DISABLE_DECODER_BLACKLIST=1,
// or use [WithOverrides], to bypass them.
//
// # Failure Model
//
// Initialize errors are synchronous and wrap one of the exported
// sentinels. Per-frame device failures drop the frame and post
// [EventRenderTargetsReset] on [Renderer.Events]; the owner is expected
// to recreate the renderer. No automatic device recovery is attempted.
//
// # Drivers
//
// Drivers register with package driver. The Windows build registers
// "d3d9" (Direct3D 9Ex with DXVA2). Every build registers "soft", a CPU
// implementation used for tests and headless runs.
package videorender

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = ""
)
