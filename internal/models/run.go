package models

import (
	"fmt"
	"time"
)

// RunState is the lifecycle state of a pipeline run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
	RunTimedOut  RunState = "timed-out"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == RunSucceeded || s == RunFailed || s == RunTimedOut
}

// ErrorKind classifies a failed operation.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindTransport
	KindServer
	KindTimeout
	KindFormat
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// RunError describes why a run did not succeed.
type RunError struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Detail  string    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// PipelineRun is a snapshot of one request lifecycle.
type PipelineRun struct {
	ID         string         `json:"id" yaml:"id"`
	State      RunState       `json:"state" yaml:"state"`
	StartedAt  time.Time      `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty"`
	Result     string         `json:"result,omitempty" yaml:"result,omitempty"`
	Stats      map[string]any `json:"stats,omitempty" yaml:"stats,omitempty"`
	RowCount   *int           `json:"rowCount,omitempty" yaml:"rowCount,omitempty"`
	Steps      []string       `json:"steps,omitempty" yaml:"steps,omitempty"`
	Error      *RunError      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration is the wall time of a finished run, or zero while it is running.
func (r PipelineRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	for c := KindValidation; c <= KindFormat; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}
