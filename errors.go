package dgtagcache

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for cache operations.
var (
	// ErrKeyNotFound is returned when a cache key is not found.
	ErrKeyNotFound = fmt.Errorf("cache: key not found")

	// ErrInvalidValue is returned when a cache value is invalid.
	ErrInvalidValue = fmt.Errorf("cache: invalid value")

	// ErrDriverNotFound is returned when a cache driver is not found.
	ErrDriverNotFound = fmt.Errorf("cache: driver not found")

	// ErrStoreNotFound is returned when a cache store is not found.
	ErrStoreNotFound = fmt.Errorf("cache: store not found")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached at all (connection refused, circuit open, etc).
	ErrStoreUnavailable = fmt.Errorf("cache: store unavailable")

	// ErrUnsupportedCommand is returned when the connected server rejects a
	// command the driver issued, most commonly because it predates Redis
	// 8.0's hash-field-TTL commands (HSETEX/HEXPIRE/HGETEX).
	ErrUnsupportedCommand = fmt.Errorf("cache: server does not support the required command")

	// ErrClusterCrossSlot is returned when a multi-key operation addresses
	// keys that do not hash to the same cluster slot.
	ErrClusterCrossSlot = fmt.Errorf("cache: keys span multiple cluster slots")

	// ErrUnsupportedOperation is returned by mode "any" (union) tagged
	// stores for operations that require scoping reads by tag set
	// (Get/GetMultiple/Has/Missing/Forget), since union mode only ever
	// tracks tags as write/flush metadata (§4.5).
	ErrUnsupportedOperation = fmt.Errorf("cache: operation not supported in this tagging mode")

	// ErrSerialization is returned when a value cannot be encoded or a
	// stored payload cannot be decoded back into the expected shape.
	ErrSerialization = fmt.Errorf("cache: serialization error")

	// ErrMemoryPressure is raised by the doctor/benchmark harness, never by
	// the core driver paths, when resident memory crosses the configured
	// budget mid-scenario.
	ErrMemoryPressure = fmt.Errorf("cache: memory pressure budget exceeded")
)

// ErrInvalidConfig returns a configuration error with a formatted message.
func ErrInvalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("cache: invalid config: "+format, args...)
}

// ErrDriverError returns a driver error with a formatted message.
func ErrDriverError(driver string, err error) error {
	return fmt.Errorf("cache: driver '%s' error: %w", driver, err)
}

// WrapSerialization wraps an underlying codec error with ErrSerialization so
// callers can match it with errors.Is regardless of which serializer produced it.
func WrapSerialization(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrSerialization, err)
}

// unknownCommandMarkers are substrings Redis servers use across versions to
// report that a command isn't recognized. Used to turn a raw RESP error
// from an older server into ErrUnsupportedCommand instead of a bare opaque
// error, so callers can branch on it with errors.Is.
var unknownCommandMarkers = []string{
	"unknown command",
	"ERR unknown",
	"command not found",
}

// IsUnsupportedCommand reports whether err looks like a server rejecting an
// unrecognized command (e.g. HSETEX against a pre-8.0 Redis).
func IsUnsupportedCommand(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupportedCommand) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range unknownCommandMarkers {
		if strings.Contains(msg, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
