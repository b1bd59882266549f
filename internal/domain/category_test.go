package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.winapps.babytracker/internal/domain"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Category
		wantErr bool
	}{
		{"", domain.CategoryOther, false},
		{"  ", domain.CategoryOther, false},
		{"first", domain.CategoryFirst, false},
		{" travel ", domain.CategoryTravel, false},
		{"general", "", true},
		{"all", "", true},
	}
	for _, tt := range tests {
		got, err := domain.ParseCategory(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFilter(t *testing.T) {
	got, err := domain.ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, got)

	got, err = domain.ParseFilter("holiday")
	require.NoError(t, err)
	assert.Equal(t, "holiday", got)

	_, err = domain.ParseFilter("sports")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryLabels(t *testing.T) {
	assert.Len(t, domain.Categories(), 7)
	assert.Equal(t, "第一次", domain.CategoryFirst.Label())
	assert.Equal(t, "🎄", domain.CategoryHoliday.Emoji())
	assert.Equal(t, "其他", domain.Category("legacy").Label())
	assert.Equal(t, "📝", domain.Category("legacy").Emoji())
	assert.Equal(t, "全部", domain.FilterLabel(domain.FilterAll))
	assert.Equal(t, "健康", domain.FilterLabel("health"))
}
