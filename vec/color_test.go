// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package vec

import "testing"

func TestWavelengthToRGBOutOfRange(t *testing.T) {
	c := WavelengthToRGB(300)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("out of range wavelength got %v want black", c)
	}
	c = WavelengthToRGB(800)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("out of range wavelength got %v want black", c)
	}
}

func TestWavelengthToRGBGreen(t *testing.T) {
	c := WavelengthToRGB(510)
	if c.G == 0 {
		t.Errorf("510nm should have a strong green channel, got %v", c)
	}
}

func TestHexToRGBA6Digit(t *testing.T) {
	c := HexToRGBA("#ff8800", 1)
	if c.R != 0xff || c.G != 0x88 || c.B != 0x00 {
		t.Errorf("got %v want (ff,88,00)", c)
	}
}

func TestHexToRGBA3Digit(t *testing.T) {
	c := HexToRGBA("f80", 1)
	if c.R != 0xff || c.G != 0x88 || c.B != 0x00 {
		t.Errorf("got %v want (ff,88,00)", c)
	}
}

func TestHexToRGBAInvalid(t *testing.T) {
	c := HexToRGBA("notacolor", 0.5)
	if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 0.5 {
		t.Errorf("invalid hex got %v want black with alpha 0.5", c)
	}
}

func TestLerpScalar(t *testing.T) {
	if v := Lerp(0, 10, 0.5); v != 5 {
		t.Errorf("got %v want 5", v)
	}
}

func TestDim(t *testing.T) {
	c := RGBA{R: 200, G: 100, B: 50, A: 1}
	d := c.Dim(0.5)
	if d.R != 100 || d.G != 50 || d.B != 25 {
		t.Errorf("got %v want half-intensity", d)
	}
}
