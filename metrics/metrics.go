// Package metrics instruments payment gating and payouts. The Recorder
// interface keeps prometheus out of business-logic signatures; tests
// use the noop.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
