// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/gogpu/videorender/policy"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Overrides(); got != (policy.Overrides{}) {
		t.Errorf("Overrides() = %+v, want none", got)
	}
	if cfg.Demo.Codec != "h264" || cfg.Demo.Width != 1280 || cfg.Demo.Height != 720 {
		t.Errorf("Demo = %+v, want h264 1280x720", cfg.Demo)
	}
	if l, err := cfg.LogLevel(); err != nil || l != slog.LevelInfo {
		t.Errorf("LogLevel() = %v, %v, want INFO", l, err)
	}
}

func TestBlacklistEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want policy.Overrides
	}{
		{
			name: "legacy processor",
			env:  map[string]string{"DXVA2_DISABLE_VIDPROC_BLACKLIST": "1"},
			want: policy.Overrides{DisableProcessorBlacklist: true},
		},
		{
			name: "legacy decoder",
			env:  map[string]string{"DXVA2_DISABLE_DECODER_BLACKLIST": "1"},
			want: policy.Overrides{DisableDecoderBlacklist: true},
		},
		{
			name: "prefixed",
			env: map[string]string{
				"VIDEORENDER_DIAGNOSTICS_DISABLE_VIDPROC_BLACKLIST": "true",
				"VIDEORENDER_DIAGNOSTICS_DISABLE_DECODER_BLACKLIST": "true",
			},
			want: policy.Overrides{DisableProcessorBlacklist: true, DisableDecoderBlacklist: true},
		},
		{
			name: "zero",
			env:  map[string]string{"DXVA2_DISABLE_DECODER_BLACKLIST": "0"},
			want: policy.Overrides{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := cfg.Overrides(); got != tt.want {
				t.Errorf("Overrides() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videorender.yaml")
	data := "log:\n  level: debug\ndemo:\n  codec: hevc10\n  width: 1920\n  vendor: 0x10de\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIDEORENDER_DEMO_WIDTH", "3840")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Demo.Codec != "hevc10" {
		t.Errorf("Codec = %q, want hevc10", cfg.Demo.Codec)
	}
	if cfg.Demo.Width != 3840 {
		t.Errorf("Width = %d, want environment value 3840", cfg.Demo.Width)
	}
	if cfg.Demo.Vendor != 0x10DE {
		t.Errorf("Vendor = %#x, want 0x10de", cfg.Demo.Vendor)
	}
	if l, _ := cfg.LogLevel(); l != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want DEBUG", l)
	}
}

func TestConfigFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("frames", 60, "")
	fs.String("out", "frame.png", "")
	if err := fs.Parse([]string{"--frames=5"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIDEORENDER_DEMO_OUT", "env.png")

	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if err := l.BindFlags(fs, map[string]string{KeyFrames: "frames", KeyOut: "out"}); err != nil {
		t.Fatalf("BindFlags() error = %v", err)
	}
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Demo.Frames != 5 {
		t.Errorf("Frames = %d, want flag value 5", cfg.Demo.Frames)
	}
	if cfg.Demo.Out != "env.png" {
		t.Errorf("Out = %q, want environment value over unset flag", cfg.Demo.Out)
	}

	if err := l.BindFlags(fs, map[string]string{KeyVSync: "vsync"}); err == nil {
		t.Error("BindFlags(unknown flag) error = nil")
	}
}

func TestLogLevelInvalid(t *testing.T) {
	cfg := &Config{Log: Log{Level: "loud"}}
	if _, err := cfg.LogLevel(); err == nil {
		t.Error("LogLevel(loud) error = nil")
	}
}
