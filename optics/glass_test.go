// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"
	"testing"

	"github.com/galvanized/opticslab/vec"
)

func TestGlassCatalogLoads(t *testing.T) {
	names := GlassNames()
	if len(names) == 0 {
		t.Fatal("embedded glass catalog is empty")
	}
	g, ok := GlassByName("N-BK7")
	if !ok {
		t.Fatal("expected N-BK7 in the catalog")
	}
	if g.N0 < 1.4 || g.N0 > 1.6 {
		t.Errorf("got N-BK7 n0=%v, want a crown-glass index near 1.5", g.N0)
	}
}

func TestGlassByNameUnknown(t *testing.T) {
	if _, ok := GlassByName("Unobtainium"); ok {
		t.Error("expected ok=false for a glass not in the catalog")
	}
}

func TestRefractiveIndexDispersion(t *testing.T) {
	g, _ := GlassByName("SF11")
	blue := refractiveIndex(g.N0, g.B, 450)
	red := refractiveIndex(g.N0, g.B, 700)
	if blue <= red {
		t.Errorf("normal dispersion requires n(450)=%v > n(700)=%v", blue, red)
	}
}

func TestNewDielectricBlockByGlassName(t *testing.T) {
	blk, ok := NewDielectricBlockByGlassName("block-1", vec.New(0, 0), 0, 100, 100, "Fused Silica")
	if !ok {
		t.Fatal("expected Fused Silica to construct")
	}
	g, _ := GlassByName("Fused Silica")
	if blk.n0 != g.N0 || blk.b != g.B || blk.absorption != g.Absorption {
		t.Errorf("got n0=%v b=%v absorption=%v, want catalog values %+v", blk.n0, blk.b, blk.absorption, g)
	}
	if _, ok := NewDielectricBlockByGlassName("block-2", vec.New(0, 0), 0, 100, 100, "Unobtainium"); ok {
		t.Error("expected ok=false for an unknown glass name")
	}
}

func TestDielectricBlockGlassNameSetPropertyUpdatesCoefficients(t *testing.T) {
	blk := NewDielectricBlock("block-1", vec.New(0, 0), 0, 100, 100, 1.5, 0, 0)
	if err := blk.SetProperty("glassName", "SF11"); err != nil {
		t.Fatal(err)
	}
	g, _ := GlassByName("SF11")
	if math.Abs(blk.n0-g.N0) > 1e-12 {
		t.Errorf("got n0=%v after glassName set, want %v", blk.n0, g.N0)
	}
	if err := blk.SetProperty("glassName", "Unobtainium"); err == nil {
		t.Error("expected an error setting an unknown glass name")
	}
	if blk.n0 != g.N0 {
		t.Errorf("a rejected glassName set must not clobber coefficients, got n0=%v", blk.n0)
	}
}
