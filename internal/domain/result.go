package domain

import (
	"fmt"
	"time"
)

// DispatchResult is the outcome of a single call to the hub.
type DispatchResult struct {
	Device     DeviceID
	Attempt    uint
	Success    bool
	HTTPStatus int
	Err        error
}

// RunSummary aggregates the results of one alert run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Command   string        `json:"command"`
	Devices   []DeviceID    `json:"devices"`
	Attempts  int           `json:"attempts"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
}

func (s *RunSummary) Add(r DispatchResult) {
	s.Attempts++
	if r.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

func (s RunSummary) String() string {
	return fmt.Sprintf("Insteon %s sent to %d device(s): %d/%d calls succeeded",
		s.Command, len(s.Devices), s.Succeeded, s.Attempts)
}
