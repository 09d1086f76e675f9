package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"120", "120", 0},
		{"9", "10", -1},
		{"15.2", "15.10", -1},
		{"15.2", "15", 1},
		{"16.0", "16", 0},
		{"4.4.3.4", "4.4.3", 1},
		{"TP", "130", 1},
		{"all", "1", -1},
		{"beta", "1", -1},
		{"v12", "12", 0},
		{"latest", "130", 1},
		{"Stable", "TP", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			got := ParseVersion(tt.a).Compare(ParseVersion(tt.b))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, -tt.want, ParseVersion(tt.b).Compare(ParseVersion(tt.a)))
		})
	}
}

func TestParseVersionRange(t *testing.T) {
	t.Run("should split numeric ranges", func(t *testing.T) {
		r := ParseVersionRange("15.2-15.3")
		assert.Equal(t, "15.2", r.Since.String())
		assert.Equal(t, "15.3", r.Until.String())
		assert.True(t, r.Contains(ParseVersion("15.2")))
		assert.True(t, r.Contains(ParseVersion("15.3")))
		assert.False(t, r.Contains(ParseVersion("15.4")))
	})

	t.Run("should keep single tokens", func(t *testing.T) {
		r := ParseVersionRange("TP")
		assert.Equal(t, "TP", r.Since.String())
		assert.True(t, r.Contains(ParseVersion("tp")))
	})

	t.Run("should not split non-numeric dashes", func(t *testing.T) {
		r := ParseVersionRange("preview-1")
		assert.Equal(t, r.Since, r.Until)
	})
}
