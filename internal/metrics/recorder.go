// Package metrics records provider fetches and page views. The Prometheus
// implementation backs the /metrics endpoint; NoopRecorder is the default.
package metrics

import "time"

// ResultLabel enumerates query outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

type Recorder interface {
	ObserveProviderQuery(provider, query string, d time.Duration, result ResultLabel)
	ObserveSnapshot(d time.Duration, missingFields int)
	IncPageView(route string)
}

type NoopRecorder struct{}

func (NoopRecorder) ObserveProviderQuery(string, string, time.Duration, ResultLabel) {}
func (NoopRecorder) ObserveSnapshot(time.Duration, int)                              {}
func (NoopRecorder) IncPageView(string)                                              {}
