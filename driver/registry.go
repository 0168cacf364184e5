// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "github.com/gogpu/gpucontext"

// Driver names known to the registry.
const (
	NameD3D9 = "d3d9"
	NameSoft = "soft"
)

// Factory creates a driver instance.
type Factory func() Driver

// drivers holds registered drivers. Hardware drivers win over the CPU
// fallback.
var drivers = gpucontext.NewRegistry[Driver](
	gpucontext.WithPriority(NameD3D9, NameSoft),
)

// Register registers a driver factory with the given name.
// This is typically called from init() functions in driver packages.
// If a driver with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	drivers.Register(name, factory)
}

// Unregister removes a driver from the registry.
// This is useful for testing.
func Unregister(name string) {
	drivers.Unregister(name)
}

// Available returns the registered driver names.
func Available() []string {
	return drivers.Available()
}

// IsRegistered reports whether a driver with the given name is registered.
func IsRegistered(name string) bool {
	return drivers.Has(name)
}

// Get returns a driver instance by name, or nil if none is registered.
func Get(name string) Driver {
	return drivers.Get(name)
}

// Best returns the highest-priority registered driver, or nil.
// Priority order: d3d9 > soft.
func Best() Driver {
	return drivers.Best()
}

// Lookup returns the named driver, or the best available one when name
// is empty.
func Lookup(name string) (Driver, error) {
	var d Driver
	if name == "" {
		d = Best()
	} else {
		d = Get(name)
	}
	if d == nil {
		return nil, ErrDriverNotAvailable
	}
	return d, nil
}
