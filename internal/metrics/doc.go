// Package metrics records site build metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs nil checks. The CLI swaps in a
// PrometheusRecorder when a textfile is configured or the preview server
// exposes /metrics.
package metrics
