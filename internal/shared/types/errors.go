package types

import "errors"

var (
	// ErrEmptyID is returned by mutators given an empty item id.
	ErrEmptyID = errors.New("item id is required")
	// ErrUnsupported is returned when an action does not apply to an item variant.
	ErrUnsupported = errors.New("action not supported for item")
	// ErrNoTarget is returned when an item lacks the target an action needs.
	ErrNoTarget = errors.New("item has no target for action")
	// ErrNotFound is returned when an id does not resolve to a catalog item.
	ErrNotFound = errors.New("item not found")
)
