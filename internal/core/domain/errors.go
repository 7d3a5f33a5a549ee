package domain

import "errors"

// Sentinel errors shared across services and adapters.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the caller supplied invalid data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source/connector type.
	ErrUnsupportedType = errors.New("unsupported source type")

	// ErrConnectorClosed indicates an operation on a closed connector.
	ErrConnectorClosed = errors.New("connector is closed")

	// ErrAuthRequired indicates the connector could not obtain credentials.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected by the provider.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrNotImplemented indicates the connector does not support the operation.
	ErrNotImplemented = errors.New("not implemented")

	// ErrCursorExpired indicates a sync cursor is no longer usable and
	// the source needs a full resync.
	ErrCursorExpired = errors.New("sync cursor expired")
)
