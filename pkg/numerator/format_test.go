package numerator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "INV-0007", Format("INV", 4, 7))
	assert.Equal(t, "PO-012", Format("PO", 3, 12))
	assert.Equal(t, "INV-12345", Format("INV", 4, 12345))
	assert.Equal(t, "C001", FormatCompact("C", 3, 1))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"INV-0042", 42},
		{"PAY-1", 1},
		{"INV-00A1", -1},
		{"INV", -1},
		{"INV-", -1},
		{"INV-2024-0001", -1},
		{"", -1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseCompact(t *testing.T) {
	assert.Equal(t, int64(12), ParseCompact("W012", "W"))
	assert.Equal(t, int64(-1), ParseCompact("C012", "W"))
	assert.Equal(t, int64(-1), ParseCompact("W1x", "W"))
}
