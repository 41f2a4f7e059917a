package status

import (
	"time"

	"scribe/internal/pipeline"
)

// State represents the lifecycle of a job's persisted status.
type State string

const (
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateError      State = "error"
	StateStopped    State = "stopped"

	// StateCorrupt is never persisted; Read reports it when a status file
	// exists but cannot be decoded.
	StateCorrupt State = "corrupt"
)

// Terminal reports whether the state is a clean terminal state. Once a job
// reaches one, only an explicit re-run may overwrite its record.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateStopped
}

// Record is the persisted status of one job. Timestamps are numeric unix
// seconds to keep the wire shape stable for external pollers.
type Record struct {
	State       State                      `json:"status"`
	Progress    float64                    `json:"progress"`
	Step        string                     `json:"step,omitempty"`
	StepInfo    *pipeline.StepProgressInfo `json:"step_info,omitempty"`
	Warnings    []string                   `json:"warnings,omitempty"`
	Error       string                     `json:"error,omitempty"`
	LastUpdated float64                    `json:"last_updated"`
	StartTime   float64                    `json:"start_time,omitempty"`
}

// Now returns the current time as unix seconds with sub-second precision.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func knownState(s State) bool {
	switch s {
	case StateProcessing, StateComplete, StateError, StateStopped:
		return true
	default:
		return false
	}
}
