package store

import "errors"

var (
	// ErrNotFound is returned when a card does not exist.
	ErrNotFound = errors.New("store: card not found")

	// ErrAlreadyExists is returned when adding a card whose ID is taken.
	ErrAlreadyExists = errors.New("store: card already exists")

	// ErrInvalidCard is returned when a new card fails validation.
	ErrInvalidCard = errors.New("store: invalid card")

	// ErrStoreClosed is returned by every method after Close.
	ErrStoreClosed = errors.New("store: closed")

	// ErrUnsupportedVersion is returned when importing an export whose
	// version or model is not understood.
	ErrUnsupportedVersion = errors.New("store: unsupported export version")

	// ErrIncompleteHistory is returned by Reschedule when a card holds fewer
	// review logs than its state's review count, as after an import without
	// logs. The stored state is left unchanged.
	ErrIncompleteHistory = errors.New("store: review history incomplete")
)
