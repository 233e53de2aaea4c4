package gridsample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromCodes(t *testing.T) {
	tests := []struct {
		name                   string
		align, interp, padding int64
		want                   Config
	}{
		{"defaults", 0, 0, 0, Config{Mode: Bilinear, Padding: Zeros}},
		{"nearest border aligned", 1, 1, 1, Config{Mode: Nearest, Padding: Border, AlignCorners: true}},
		{"reflection", 0, 0, 2, Config{Mode: Bilinear, Padding: Reflection}},
		{"nonzero align is true", 7, 0, 0, Config{Mode: Bilinear, Padding: Zeros, AlignCorners: true}},
		{"unknown interpolation falls back", 0, 2, 1, Config{Mode: Bilinear, Padding: Border}},
		{"unknown padding falls back", 0, 1, 9, Config{Mode: Nearest, Padding: Zeros}},
		{"negative codes fall back", 0, -1, -1, Config{Mode: Bilinear, Padding: Zeros}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFromCodes(tt.align, tt.interp, tt.padding))
		})
	}
}

func TestModeFromString(t *testing.T) {
	assert.Equal(t, Bilinear, InterpolationModeFromString("bilinear"))
	assert.Equal(t, Bilinear, InterpolationModeFromString("linear"))
	assert.Equal(t, Nearest, InterpolationModeFromString("NEAREST"))
	assert.Equal(t, Bilinear, InterpolationModeFromString("bicubic"))

	assert.Equal(t, Zeros, PaddingModeFromString("zeros"))
	assert.Equal(t, Border, PaddingModeFromString("border"))
	assert.Equal(t, Reflection, PaddingModeFromString("Reflection"))
	assert.Equal(t, Zeros, PaddingModeFromString("wrap"))
}

func TestModeStrings(t *testing.T) {
	assert.Equal(t, "bilinear", Bilinear.String())
	assert.Equal(t, "nearest", Nearest.String())
	assert.Equal(t, "InterpolationMode(5)", InterpolationMode(5).String())
	assert.Equal(t, "reflection", Reflection.String())
	assert.Equal(t, "PaddingMode(-1)", PaddingMode(-1).String())
	assert.Equal(t, "mode=nearest padding=border align_corners=true",
		Config{Mode: Nearest, Padding: Border, AlignCorners: true}.String())
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, ConfigFromCodes(0, 0, 0), DefaultConfig())
}
