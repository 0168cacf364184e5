// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/spf13/cobra"

	"github.com/gogpu/videorender/driver"
	_ "github.com/gogpu/videorender/driver/d3d9"
	"github.com/gogpu/videorender/internal/config"
	"github.com/gogpu/videorender/policy"
	"github.com/gogpu/videorender/video"
)

func newAdapterCmd() *cobra.Command {
	var (
		configFile string
		name       string
	)
	cmd := &cobra.Command{
		Use:   "adapter",
		Short: "Show the adapter a driver opens and the GPU policy decisions for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			drv, err := driver.Lookup(name)
			if err != nil {
				return fmt.Errorf("driver %q (available: %s): %w", name, strings.Join(driver.Available(), ", "), err)
			}
			return describeAdapter(cmd.OutOrStdout(), drv, policy.Policy{Overrides: cfg.Overrides()})
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	cmd.Flags().StringVar(&name, "driver", "", "driver name, empty for the best available")
	return cmd
}

// describeAdapter prints the identity of the adapter drv opens and what
// the policy decides for it.
func describeAdapter(w io.Writer, drv driver.Driver, p policy.Policy) error {
	a, err := drv.Open(driver.Window{Provider: gpucontext.NullWindowProvider{W: 1, H: 1, SF: 1}})
	if err != nil {
		return fmt.Errorf("open adapter: %w", err)
	}
	defer a.Release()

	info := a.Info()
	pa := policy.FromInfo(info)
	fmt.Fprintf(w, "driver:     %s\n", drv.Name())
	fmt.Fprintf(w, "adapter:    %s (%s)\n", info.Name, pa)
	fmt.Fprintf(w, "type:       %v\n", adapterType(info.DeviceType))
	fmt.Fprintf(w, "version:    %v\n", info.DriverVersion)
	fmt.Fprintf(w, "composited: %v\n", a.CompositionEnabled())

	d := p.AvoidProcessor(pa)
	fmt.Fprintf(w, "processor:  %s\n", decision(d, "avoided", "used"))
	for _, codec := range []video.Format{video.H264, video.HEVCMain, video.HEVCMain10} {
		d := p.DisableCodec(pa, codec)
		fmt.Fprintf(w, "%-11s %s\n", codec.String()+":", decision(d, "disabled", "enabled"))
	}
	return nil
}

func decision(d policy.Decision, yes, no string) string {
	s := no
	if d.Result {
		s = yes
	}
	if d.Rule != "" {
		s += " by " + d.Rule
	}
	if d.Warning != "" {
		s += " (" + d.Warning + ")"
	}
	return s
}
