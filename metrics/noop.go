package metrics

import "time"

// NoopRecorder discards every observation. Tests and components built
// without a recorder use it.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string) {}

func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
