package domain

import "context"

// FareInput is the route snapshot a rider's client obtained from its
// routing lookup. The fare is computed once from it at booking creation
// and stored immutably on the record.
type FareInput struct {
	DistanceKm  float64
	DurationMin float64
}

type FareEstimator interface {
	EstimateFare(ctx context.Context, input FareInput) (float64, error)
}
