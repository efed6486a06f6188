// Package metrics provides the observability hooks of the site pipeline.
//
// The Recorder interface decouples pipeline code from any specific metrics
// backend. PrometheusRecorder is the production implementation, registered
// on a private registry and exposed on the admin server's /metrics endpoint.
// NoopRecorder keeps components usable in tests and in deployments that do
// not scrape metrics.
package metrics
