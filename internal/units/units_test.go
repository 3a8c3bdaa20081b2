package units

import (
	"math"
	"testing"
)

func TestNormalizeRejectsNonPositive(t *testing.T) {
	for _, in := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		area, unit := Normalize(in)
		if area != nil || unit != nil {
			t.Errorf("Normalize(%v) = (%v, %v), want (nil, nil)", in, area, unit)
		}
	}
}

func TestNormalizeOneMarla(t *testing.T) {
	area, unit := Normalize(SqftPerMarla / SqftPerSqm)
	if area == nil || unit == nil {
		t.Fatal("Normalize returned nil for one marla")
	}
	if *area != 1 || *unit != "marla" {
		t.Errorf("got (%v, %q), want (1, marla)", *area, *unit)
	}
}

func TestNormalizeKanalPreferredOverMarla(t *testing.T) {
	// 2 kanal = 40 marla: both round cleanly, kanal must win.
	area, unit := Normalize(2 * MarlaPerKanal * SqftPerMarla / SqftPerSqm)
	if area == nil || unit == nil {
		t.Fatal("Normalize returned nil for two kanal")
	}
	if *area != 2 || *unit != "kanal" {
		t.Errorf("got (%v, %q), want (2, kanal)", *area, *unit)
	}
}

func TestNormalizeWholeSqft(t *testing.T) {
	// 1237 sqft is 5.498 marla and 0.27 kanal, neither rounds cleanly.
	area, unit := Normalize(1237 / SqftPerSqm)
	if area == nil || unit == nil {
		t.Fatal("Normalize returned nil for 1237 sqft")
	}
	if *area != 1237 || *unit != "sqft" {
		t.Errorf("got (%v, %q), want (1237, sqft)", *area, *unit)
	}
}

func TestNormalizeSqmFallback(t *testing.T) {
	// 114.97 sqm = 1237.53 sqft = 5.500 marla: far from every clean
	// kanal/marla/sqft boundary, so the raw value is reported.
	area, unit := Normalize(114.97)
	if area == nil || unit == nil {
		t.Fatal("Normalize returned nil for 114.97 sqm")
	}
	if *unit != "sqm" {
		t.Fatalf("got unit %q, want sqm", *unit)
	}
	if *area != 114.97 {
		t.Errorf("got area %v, want 114.97", *area)
	}
}
