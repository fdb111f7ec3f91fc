package tui

import "errors"

// ErrMissingRepairService is returned when the repair service is not provided.
var ErrMissingRepairService = errors.New("tui: repair service is required")

// ErrUnexpectedModel is returned when the program exits with a foreign model.
var ErrUnexpectedModel = errors.New("tui: unexpected final model")
