package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
)

func TestStandardStrategy_EstimateFare(t *testing.T) {
	strategy := NewStandardStrategy()

	tests := []struct {
		name     string
		input    domain.FareInput
		expected float64
		wantErr  bool
	}{
		{
			name:     "City Trip",
			input:    domain.FareInput{DistanceKm: 10, DurationMin: 20},
			expected: 240,
		},
		{
			name:     "Short Hop",
			input:    domain.FareInput{DistanceKm: 1.2, DurationMin: 5},
			expected: 78,
		},
		{
			name:     "Zero Distance Keeps Base Fare",
			input:    domain.FareInput{DistanceKm: 0, DurationMin: 0},
			expected: 50,
		},
		{
			name:    "Negative Distance",
			input:   domain.FareInput{DistanceKm: -3, DurationMin: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := strategy.EstimateFare(context.Background(), tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
