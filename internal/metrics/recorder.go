package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// Stage names used across recorders.
const (
	StageGenerate  = "generate"
	StageBootstrap = "bootstrap"
	StageInject    = "inject"
	StagePublish   = "publish"
)

// Recorder defines observability hooks for the site pipeline. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe on
// the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveAssetFetch(kind string, d time.Duration, success bool)
	AddPlaceholdersResolved(kind string, n int)
	IncPublishOutcome(mode string, success bool)
	SetFetchConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)    {}
func (NoopRecorder) IncStageResult(string, ResultLabel)            {}
func (NoopRecorder) ObserveAssetFetch(string, time.Duration, bool) {}
func (NoopRecorder) AddPlaceholdersResolved(string, int)           {}
func (NoopRecorder) IncPublishOutcome(string, bool)                {}
func (NoopRecorder) SetFetchConcurrency(int)                       {}
