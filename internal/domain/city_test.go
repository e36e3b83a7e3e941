package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCity(t *testing.T) {
	cities := []City{
		{ID: 1, Title: "Москва"},
		{ID: 2, Title: "Москва-1"},
	}

	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{name: "exact match wins over substring", query: "москва", want: 1},
		{name: "case and whitespace ignored", query: "  МОСКВА ", want: 1},
		{name: "substring match", query: "осква-1", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, ok := MatchCity(tt.query, cities)
			require.True(t, ok)
			assert.Equal(t, tt.want, city.ID)
		})
	}
}

func TestMatchCityFirstFallback(t *testing.T) {
	cities := []City{
		{ID: 10, Title: "Санкт-Петербург"},
		{ID: 11, Title: "Петергоф"},
	}

	// Nothing matches exactly or by substring: the first record wins
	city, ok := MatchCity("новгород", cities)
	require.True(t, ok)
	assert.Equal(t, int64(10), city.ID)
}

func TestMatchCityEmpty(t *testing.T) {
	_, ok := MatchCity("москва", nil)
	assert.False(t, ok)
}
