package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("1234"))
	assert.Equal(t, "****6789", MaskSecret("123456789"))
	assert.Equal(t, "UTR-****4321", MaskSecret("UTR-987654321"))
	assert.Equal(t, "NEFT_****", MaskSecret("NEFT_12"))
}

func TestMaskFields(t *testing.T) {
	masked := MaskFields(map[string]any{
		"reference": "UTR-987654321",
		"amount":    "1180.00",
		"nested":    map[string]any{"Reference": "CHQ-000123456"},
		"list":      []any{"a"},
		" ":         "dropped",
	}, "reference")

	assert.Equal(t, "UTR-****4321", masked["reference"])
	assert.Equal(t, "1180.00", masked["amount"])
	assert.Equal(t, map[string]any{"Reference": "CHQ-****3456"}, masked["nested"])
	assert.Equal(t, []any{"a"}, masked["list"])
	assert.NotContains(t, masked, " ")

	assert.Nil(t, MaskFields(nil, "reference"))
}
