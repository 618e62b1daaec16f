package application

import (
	"context"
	"time"

	"insteon-alert/internal/domain"
)

// HubCaller sends one command to one device through a hub.
type HubCaller interface {
	Call(ctx context.Context, endpoint domain.HubEndpoint, device domain.DeviceID, cmd1, cmd2 byte) (int, error)
}

// DeviceLookup resolves a human-friendly name to a raw address string.
type DeviceLookup interface {
	FindAddressByName(name string) (string, bool)
}

// Sleeper pauses between calls. It must return early with ctx.Err() once
// ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type MetricsRecorder interface {
	ObserveCall(success bool, d time.Duration)
	IncDevicesDispatched()
	IncValidationFailures()
	SetLastRun(t time.Time)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveCall(bool, time.Duration) {}
func (NoopMetrics) IncDevicesDispatched()           {}
func (NoopMetrics) IncValidationFailures()          {}
func (NoopMetrics) SetLastRun(time.Time)            {}
