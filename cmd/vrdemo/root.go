// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gogpu/videorender"
	"github.com/gogpu/videorender/internal/config"
)

// flagKeys maps config keys to command-line flags.
var flagKeys = map[string]string{
	config.KeyCodec:    "codec",
	config.KeyWidth:    "width",
	config.KeyHeight:   "height",
	config.KeyFrames:   "frames",
	config.KeyVSync:    "vsync",
	config.KeyVendor:   "vendor",
	config.KeyDevice:   "device",
	config.KeyOut:      "out",
	config.KeyProbe:    "probe",
	config.KeyLogLevel: "log-level",
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "vrdemo",
		Short:         "Run the video render pipeline headless",
		Long:          `Decode synthetic frames into the surface pool, render them with overlays on the soft driver and save the last frame as a PNG.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       fmt.Sprintf("%s (videorender %s)", version, videorender.Version),
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := config.NewLoader()
			if err != nil {
				return err
			}
			if err := loader.BindFlags(cmd.Flags(), flagKeys); err != nil {
				return err
			}
			cfg, err := loader.Load(configFile)
			if err != nil {
				return err
			}
			level, err := cfg.LogLevel()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.String("codec", "h264", "codec to negotiate: h264, hevc or hevc10")
	f.Int("width", 1280, "video width")
	f.Int("height", 720, "video height")
	f.Int("frames", 60, "number of frames to render")
	f.Bool("vsync", false, "present with vsync")
	f.Uint32("vendor", 0, "PCI vendor id to simulate (0 keeps the software adapter)")
	f.Uint32("device", 0, "PCI device id to simulate")
	f.String("out", "frame.png", "PNG file for the last presented frame")
	f.String("probe", "", "DRM sysfs root to take the adapter identity from (e.g. /sys/class/drm)")
	f.String("log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newAdapterCmd())

	return rootCmd
}
