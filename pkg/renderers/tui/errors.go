package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoPipeline is returned when a session runs without a pipeline.
	ErrNoPipeline = errors.New("tui: pipeline is nil")
)
