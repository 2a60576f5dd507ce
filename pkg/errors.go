package tpcsim

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotStarted     = errors.New("no run in progress")
	ErrRunInProgress     = errors.New("run already in progress")
	ErrNoEventInProgress = errors.New("no event in progress")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrWriteEvent represents an error appending an event to the output table.
type ErrWriteEvent struct {
	EventID int
	Err     error
}

func (e *ErrWriteEvent) Error() string {
	return fmt.Sprintf("error writing event %d: %v", e.EventID, e.Err)
}

func (e *ErrWriteEvent) Unwrap() error {
	return e.Err
}

// ErrPmtIndexOutOfRange is raised when a photon hit refers to a PMT outside
// the configured arrays. It means the detector construction and the array
// layout disagree.
type ErrPmtIndexOutOfRange struct {
	EventID int
	PmtNb   int
	NbPmts  int
}

func (e *ErrPmtIndexOutOfRange) Error() string {
	return fmt.Sprintf("event %d: photon hit on PMT %d, layout has %d PMTs", e.EventID, e.PmtNb, e.NbPmts)
}

// ErrInvalidLayout represents an array layout that cannot size the PMT array.
type ErrInvalidLayout struct {
	Array string
	Count int
}

func (e *ErrInvalidLayout) Error() string {
	return fmt.Sprintf("invalid number of PMTs in %s array: %d", e.Array, e.Count)
}
