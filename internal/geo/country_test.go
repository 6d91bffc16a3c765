package geo

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantAlpha2 string
		wantAlpha3 string
	}{
		{"full name", "United States", "US", "USA"},
		{"alpha-2", "US", "US", "USA"},
		{"alpha-3", "USA", "US", "USA"},
		{"lowercase", "germany", "DE", "DEU"},
		{"surrounding space", "  France  ", "FR", "FRA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc, err := NormalizeCountry(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlpha2, cc.Alpha2)
			assert.Equal(t, tt.wantAlpha3, cc.Alpha3)
			assert.NotEmpty(t, cc.Name)
		})
	}
}

func TestNormalizeCountryEmpty(t *testing.T) {
	cc, err := NormalizeCountry("")
	require.NoError(t, err)
	assert.Empty(t, cc.Alpha2)
	assert.Empty(t, cc.Alpha3)
}

func TestNormalizeCountryUnknown(t *testing.T) {
	_, err := NormalizeCountry("Westeros")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidInput))
}
