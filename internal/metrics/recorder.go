package metrics

import "time"

// BuildOutcome labels the final state of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Tag regions as used for the injected tags gauge.
const (
	RegionHead    = "head"
	RegionBodyEnd = "body_end"
)

// Recorder defines observability hooks for site builds.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	AddPagesRendered(n int)
	SetInjectedTags(region string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) AddPagesRendered(int)               {}
func (NoopRecorder) SetInjectedTags(string, int)        {}
