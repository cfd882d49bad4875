// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

// glass.go loads a catalog of named optical glasses from an embedded
// YAML file via yaml.Unmarshal, the same way an embedded reference-data
// catalog gets turned into typed entries elsewhere in this stack.
// DielectricBlock can be constructed ByGlassName instead of with raw
// dispersion coefficients; Prism takes raw coefficients only.

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed glasscat.yaml
var glassCatalogYAML []byte

// Glass is one entry in the optical glass catalog: the Sellmeier-style
// dispersion coefficients for n(lambda) = N0 + B/lambda^2 (lambda in
// micrometers) and a bulk absorption coefficient in 1/mm.
type Glass struct {
	Name       string  `yaml:"name"`
	N0         float64 `yaml:"n0"`
	B          float64 `yaml:"b"`
	Absorption float64 `yaml:"absorption"`
}

type glassCatalogFile struct {
	Glasses []Glass `yaml:"glasses"`
}

var (
	glassCatalog map[string]Glass
	glassNames   []string
)

func init() {
	var file glassCatalogFile
	if err := yaml.Unmarshal(glassCatalogYAML, &file); err != nil {
		panic(fmt.Errorf("optics: embedded glass catalog failed to parse: %w", err))
	}
	glassCatalog = make(map[string]Glass, len(file.Glasses))
	glassNames = make([]string, 0, len(file.Glasses))
	for _, g := range file.Glasses {
		glassCatalog[g.Name] = g
		glassNames = append(glassNames, g.Name)
	}
}

// GlassByName returns the catalog entry for name and whether it exists.
func GlassByName(name string) (Glass, bool) {
	g, ok := glassCatalog[name]
	return g, ok
}

// GlassNames returns every catalog entry name, in catalog order.
func GlassNames() []string {
	out := make([]string, len(glassNames))
	copy(out, glassNames)
	return out
}

// refractiveIndex returns n(wavelengthNm) for the given dispersion
// coefficients, n(λ) = n0 + B/λ², with λ expressed in micrometers
// to match conventional Sellmeier-style coefficients.
func refractiveIndex(n0, b, wavelengthNm float64) float64 {
	lambdaUm := wavelengthNm / 1000.0
	return n0 + b/(lambdaUm*lambdaUm)
}
