// Package metrics provides build observability behind a Recorder interface.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection costs nothing unless a real recorder
// (Prometheus) is swapped in by the daemon.
package metrics

import "time"

// Recorder records conversion pipeline metrics.
type Recorder interface {
	IncPagesRendered(version string)
	IncPageFailures(version string)
	ObserveBuildDuration(version string, d time.Duration, success bool)
	IncBuildResult(success bool)
}

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

func (NoopRecorder) IncPagesRendered(string)                          {}
func (NoopRecorder) IncPageFailures(string)                           {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncBuildResult(bool)                              {}
