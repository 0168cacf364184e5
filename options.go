// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package videorender

import (
	"log/slog"

	"github.com/gogpu/videorender/overlay"
	"github.com/gogpu/videorender/policy"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r := videorender.New(drv,
//	    videorender.WithLogger(logger),
//	    videorender.WithOverrides(cfg.Overrides()),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	logger  *slog.Logger
	policy  policy.Policy
	source  overlay.Source
	onReset func()
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		logger: nil, // Will be set to Logger() if nil
		source: nil, // No overlays if nil
	}
}

// WithLogger sets the logger for one renderer and its components,
// overriding the package logger set with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithOverrides bypasses the GPU blacklists. Intended for troubleshooting
// a specific machine; every bypass is logged at warn level.
func WithOverrides(ov policy.Overrides) Option {
	return func(o *options) {
		o.policy.Overrides = ov
	}
}

// WithPolicy replaces the capability policy, including its rule tables.
func WithPolicy(p policy.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithOverlaySource sets the provider of overlay content. Without one no
// overlays are drawn.
func WithOverlaySource(src overlay.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithResetHandler registers fn to run, in addition to the Events
// channel, whenever the render targets must be rebuilt. fn runs on the
// render goroutine and must not call back into the renderer.
func WithResetHandler(fn func()) Option {
	return func(o *options) {
		o.onReset = fn
	}
}
