package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxi", Name: "bookings_created_total", Help: "Total bookings created"})
	DispatchAssigned = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxi", Name: "dispatch_assigned_total", Help: "Bookings provisionally assigned to a driver"})
	DispatchNoDriver = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxi", Name: "dispatch_no_driver_total", Help: "Dispatch attempts that found no eligible driver"})
	DispatchRejected = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxi", Name: "dispatch_rejected_total", Help: "Offers rejected by drivers"})
	OffersExpired    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxi", Name: "dispatch_offers_expired_total", Help: "Provisional offers released by the hold timeout"})

	DriversOnline = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "taxi", Name: "drivers_online", Help: "Drivers with a live connection"})
)
