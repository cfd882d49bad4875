// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import "github.com/galvanized/opticslab/ray"

// config.go gathers the settings that would otherwise live in
// process-wide mutable globals (max rays per source, max bounces,
// minimum intensity, fast white-light mode) into an explicit
// TraceConfig passed into TraceEngine.Trace and copied into
// each new ray at construction. A TraceConfig is built with
// NewTraceConfig and its functional options.

// TraceConfig carries every setting a trace frame or a newly
// constructed ray needs, replacing ad-hoc global state.
type TraceConfig struct {
	MaxRaysPerSource   uint32
	MaxBounces         uint32
	MinIntensity       float64
	FastWhiteLightMode bool

	// SimClock is a monotonically advancing simulation time (seconds)
	// fed to time-varying components (AcoustoOpticModulator,
	// ElectroOpticModulator, VariableAttenuator, OpticalChopper) so a
	// headless multi-frame trace can exercise their modulation
	// deterministically without a wall-clock dependency.
	SimClock float64
}

// configDefaults holds reasonable values so a trace runs even if the
// caller overrides nothing.
var configDefaults = TraceConfig{
	MaxRaysPerSource:   50,
	MaxBounces:         20,
	MinIntensity:       0.01,
	FastWhiteLightMode: true,
	SimClock:           0,
}

// Attr is a functional option for NewTraceConfig.
type Attr func(*TraceConfig)

// NewTraceConfig builds a TraceConfig from configDefaults overridden by
// the given attrs, e.g.:
//
//	cfg := optics.NewTraceConfig(
//	    optics.MaxBounces(10),
//	    optics.MinIntensity(0.02),
//	)
func NewTraceConfig(attrs ...Attr) TraceConfig {
	cfg := configDefaults
	for _, a := range attrs {
		a(&cfg)
	}
	return cfg
}

// MaxRaysPerSource caps the number of rays a single fan, line, point or
// LED source may emit in one frame, and a white-light source when
// FastWhiteLightMode is off.
func MaxRaysPerSource(n uint32) Attr { return func(c *TraceConfig) { c.MaxRaysPerSource = n } }

// MaxBounces caps the number of interactions a single ray may undergo
// before being force-terminated.
func MaxBounces(n uint32) Attr { return func(c *TraceConfig) { c.MaxBounces = n } }

// MinIntensity sets the floor below which a ray is terminated.
func MinIntensity(v float64) Attr { return func(c *TraceConfig) { c.MinIntensity = v } }

// FastWhiteLightMode toggles whether WhiteLightSource emits five
// coincident rays at representative wavelengths (true) or a spectral
// fan of rayCount rays spread over 380-780 nm (false).
func FastWhiteLightMode(on bool) Attr { return func(c *TraceConfig) { c.FastWhiteLightMode = on } }

// SimClock sets the simulation time fed to time-varying components.
func SimClock(t float64) Attr { return func(c *TraceConfig) { c.SimClock = t } }

// Limits returns the ray.Limits this config would stamp onto a newly
// constructed ray.
func (c TraceConfig) Limits() ray.Limits {
	return ray.Limits{MinIntensityThreshold: c.MinIntensity, MaxBounces: c.MaxBounces}
}
