package metrics

var _Reporters []Reporter

// Reporter defines the interface for metric reporting implementations.
// Different reporters can be used to send metrics to various backends
// such as Prometheus, a remote-write endpoint, StatsD, etc.
type Reporter interface {
	Report(r Record)
}

// SetMetricsReporters sets the global list of metric reporters.
// All metrics will be reported to these reporters when updated.
func SetMetricsReporters(reports []Reporter) {
	_Reporters = reports
}
