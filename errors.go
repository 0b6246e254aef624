package fsrs45

import "errors"

// Sentinel errors for the fsrs45 package.
// Use errors.Is to check: errors.Is(err, fsrs45.ErrInvalidGrade)
var (
	ErrInvalidGrade   = errors.New("fsrs45: invalid grade")
	ErrPartialState   = errors.New("fsrs45: partially populated review state")
	ErrInvalidState   = errors.New("fsrs45: review state out of range")
	ErrCardIDMismatch = errors.New("fsrs45: card ID mismatch in review log")
)
