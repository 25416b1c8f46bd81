package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		skip, limit int
		want        Window
	}{
		{"defaults when limit missing", 0, 0, Window{Skip: 0, Limit: 100}},
		{"keeps valid values", 20, 10, Window{Skip: 20, Limit: 10}},
		{"caps limit", 0, 5000, Window{Skip: 0, Limit: 500}},
		{"negative skip becomes zero", -3, 10, Window{Skip: 0, Limit: 10}},
		{"negative limit uses default", 5, -1, Window{Skip: 5, Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.skip, tt.limit, 100, 500))
		})
	}
}

func TestNormalize_NoMaximum(t *testing.T) {
	assert.Equal(t, Window{Skip: 0, Limit: 5000}, Normalize(0, 5000, 100, 0))
}
