package domain

import (
	"errors"
	"fmt"
)

// Stage enumerates pipeline milestones of a newsletter run.
type Stage string

const (
	StageInit         Stage = "init"
	StageConfigLoaded Stage = "config_loaded"
	StageFetched      Stage = "fetched"
	StageFormatted    Stage = "formatted"
	StageSummarized   Stage = "summarized"
	StageRendered     Stage = "rendered"
	StageSent         Stage = "sent"
	StageFailed       Stage = "failed"
)

// FailureReason names the terminal failure state of a run.
type FailureReason string

const (
	ReasonNoCredentials FailureReason = "no_credentials"
	ReasonNoStories     FailureReason = "no_stories"
	ReasonRender        FailureReason = "render_error"
	ReasonDispatch      FailureReason = "dispatch_error"
)

var (
	ErrNoCredentials = errors.New("resend api key is not configured")
	ErrNoStories     = errors.New("no stories fetched from any source")
)

// RunError is a fatal pipeline failure.
type RunError struct {
	Reason FailureReason
	Err    error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Fail builds a RunError for the given reason.
func Fail(reason FailureReason, err error) *RunError {
	return &RunError{Reason: reason, Err: err}
}

// ReasonOf extracts the failure reason from err, or "" if err is not a RunError.
func ReasonOf(err error) FailureReason {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Reason
	}
	return ""
}

// RunReport summarizes a completed (or failed) run.
type RunReport struct {
	Stage   Stage
	Fetched int
	Stories int
	EmailID string
	Files   []string
}
