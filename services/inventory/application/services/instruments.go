package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ghuser/nurseryinventory/services/inventory"

type instruments struct {
	tracer         trace.Tracer
	recomputes     metric.Int64Counter
	failures       metric.Int64Counter
	cascadeRecords metric.Int64Counter
}

// newInstruments registers against the global providers; they delegate to
// whatever telemetry.Setup installs, or no-op when it never runs.
func newInstruments() instruments {
	meter := otel.Meter(instrumentationName)
	recomputes, _ := meter.Int64Counter("inventory.recompute.total",
		metric.WithDescription("Statistics recomputations attempted, by level."))
	failures, _ := meter.Int64Counter("inventory.recompute.failures",
		metric.WithDescription("Best-effort reconciliations that failed and were handed to repair."))
	cascadeRecords, _ := meter.Int64Counter("inventory.cascade_delete.records",
		metric.WithDescription("Records removed by cascading deletes."))
	return instruments{
		tracer:         otel.Tracer(instrumentationName),
		recomputes:     recomputes,
		failures:       failures,
		cascadeRecords: cascadeRecords,
	}
}
