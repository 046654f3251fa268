package domain

import "time"

// DisturbRecorder observes the disturbance engine. Implemented by the
// Prometheus adapter; NopRecorder is used when metrics are not wired.
type DisturbRecorder interface {
	Fired(member int)
	Scrambled(elementID string, runes int)
	Restored(elementID string)
	Scheduled(delay time.Duration)
}

type NopRecorder struct{}

func (NopRecorder) Fired(int)               {}
func (NopRecorder) Scrambled(string, int)   {}
func (NopRecorder) Restored(string)         {}
func (NopRecorder) Scheduled(time.Duration) {}
