package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScanCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB12CD34", true},
		{"ab12cd34", true},
		{"123456789012", true},
		{"12345678901A", false},
		{"AB12CD3", false},
		{"AB12-D34", false},
		{"", false},
		{"ÅB12CD34", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidScanCode(tt.code))
		})
	}
}

func TestNormalizeScanCode(t *testing.T) {
	assert.Equal(t, "ab12CD34", NormalizeScanCode("  ab12CD34\r\n"))
}
