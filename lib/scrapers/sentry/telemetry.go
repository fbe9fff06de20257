package sentry

import (
	"sentry-itest/lib/restyutil"
	"sentry-itest/lib/telemetry"
)

var tracer = telemetry.Tracer("sentry-itest.lib.scrapers.sentry")
var httpTracer = telemetry.Tracer("sentry-itest.lib.scrapers.sentry.http")

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput dumps every request/response pair of clients
// created afterwards to `out` when debug logging is enabled.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
