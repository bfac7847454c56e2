package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/trajrec/trajrec/internal/dispatcher"

// meter returns the stream instrumentation meter from the global provider;
// without a configured SDK every instrument it hands out is a no-op.
func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
