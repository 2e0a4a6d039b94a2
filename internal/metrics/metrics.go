package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParcelsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parceldesk_parcels_created_total",
		Help: "Total number of parcels successfully created.",
	})

	ParcelsImportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parceldesk_parcels_imported_total",
		Help: "Total number of parcels persisted through file import.",
	})

	ImportRowErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parceldesk_import_row_errors_total",
		Help: "Total number of import rows rejected by validation.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parceldesk_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	ParcelsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parceldesk_parcels_tracked",
		Help: "Current number of parcels counted by the stats cache.",
	})
)
