// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads renderer settings from defaults, an optional config
// file, the environment and command-line flags, in increasing precedence.
//
// Settings use the VIDEORENDER_ environment prefix with dots replaced by
// underscores (VIDEORENDER_LOG_LEVEL sets log.level). The blacklist
// bypass toggles are also read from their historical names,
// DXVA2_DISABLE_VIDPROC_BLACKLIST and DXVA2_DISABLE_DECODER_BLACKLIST.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gogpu/videorender/policy"
)

// EnvPrefix is the prefix of every setting's environment variable.
const EnvPrefix = "VIDEORENDER"

// Keys.
const (
	KeyDisableProcessorBlacklist = "diagnostics.disable_vidproc_blacklist"
	KeyDisableDecoderBlacklist   = "diagnostics.disable_decoder_blacklist"
	KeyLogLevel                  = "log.level"

	KeyCodec  = "demo.codec"
	KeyWidth  = "demo.width"
	KeyHeight = "demo.height"
	KeyFrames = "demo.frames"
	KeyVSync  = "demo.vsync"
	KeyVendor = "demo.vendor"
	KeyDevice = "demo.device"
	KeyOut    = "demo.out"
	KeyProbe  = "demo.probe"
)

// legacyEnv maps keys to environment variables read in addition to the
// prefixed name.
var legacyEnv = map[string]string{
	KeyDisableProcessorBlacklist: "DXVA2_DISABLE_VIDPROC_BLACKLIST",
	KeyDisableDecoderBlacklist:   "DXVA2_DISABLE_DECODER_BLACKLIST",
}

// Config is the resolved configuration.
type Config struct {
	Diagnostics Diagnostics `mapstructure:"diagnostics"`
	Log         Log         `mapstructure:"log"`
	Demo        Demo        `mapstructure:"demo"`
}

// Diagnostics holds troubleshooting switches.
type Diagnostics struct {
	DisableVidprocBlacklist bool `mapstructure:"disable_vidproc_blacklist"`
	DisableDecoderBlacklist bool `mapstructure:"disable_decoder_blacklist"`
}

// Log configures logging.
type Log struct {
	Level string `mapstructure:"level"`
}

// Demo holds the settings of the headless demo.
type Demo struct {
	Codec  string `mapstructure:"codec"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Frames int    `mapstructure:"frames"`
	VSync  bool   `mapstructure:"vsync"`
	Vendor uint32 `mapstructure:"vendor"`
	Device uint32 `mapstructure:"device"`
	Out    string `mapstructure:"out"`

	// Probe is a DRM sysfs root to take the adapter identity from.
	// Empty keeps the built-in software adapter.
	Probe string `mapstructure:"probe"`
}

// Overrides returns the policy overrides selected by the diagnostics
// switches.
func (c *Config) Overrides() policy.Overrides {
	return policy.Overrides{
		DisableProcessorBlacklist: c.Diagnostics.DisableVidprocBlacklist,
		DisableDecoderBlacklist:   c.Diagnostics.DisableDecoderBlacklist,
	}
}

// LogLevel parses Log.Level. An empty level is Info.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// Loader resolves a Config.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings.
func NewLoader() (*Loader, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BindEnv with explicit names replaces the automatic one, so list both.
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", legacy, err)
		}
	}

	v.SetDefault(KeyDisableProcessorBlacklist, false)
	v.SetDefault(KeyDisableDecoderBlacklist, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyCodec, "h264")
	v.SetDefault(KeyWidth, 1280)
	v.SetDefault(KeyHeight, 720)
	v.SetDefault(KeyFrames, 60)
	v.SetDefault(KeyVSync, false)
	v.SetDefault(KeyVendor, 0)
	v.SetDefault(KeyDevice, 0)
	v.SetDefault(KeyOut, "frame.png")
	v.SetDefault(KeyProbe, "")

	return &Loader{v: v}, nil
}

// BindFlags makes flags override every other source. Each entry maps a
// key to a flag name. Flags that were not set on the command line keep
// the lower-precedence value.
func (l *Loader) BindFlags(fs *pflag.FlagSet, flags map[string]string) error {
	for key, name := range flags {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("config: no flag %q for %s", name, key)
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load resolves the configuration. A non-empty file must exist; its format
// is taken from the extension.
func (l *Loader) Load(file string) (*Config, error) {
	if file != "" {
		l.v.SetConfigFile(file)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Load resolves the configuration from defaults, file and environment.
func Load(file string) (*Config, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	return l.Load(file)
}
