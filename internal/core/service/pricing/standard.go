package pricing

import (
	"context"
	"errors"
	"math"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
)

const (
	BaseFare      = 50.0
	RatePerKm     = 15.0
	RatePerMinute = 2.0
)

type StandardStrategy struct{}

func NewStandardStrategy() *StandardStrategy {
	return &StandardStrategy{}
}

func (s *StandardStrategy) EstimateFare(ctx context.Context, input domain.FareInput) (float64, error) {
	if input.DistanceKm < 0 || input.DurationMin < 0 {
		return 0, errors.New("distance and duration must be non-negative")
	}

	total := BaseFare + input.DistanceKm*RatePerKm + input.DurationMin*RatePerMinute

	// Round to whole currency units, never below the base fare.
	total = math.Round(total)
	if total < BaseFare {
		total = BaseFare
	}

	return total, nil
}
