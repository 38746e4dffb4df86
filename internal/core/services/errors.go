package services

import (
	"errors"
	"fmt"
)

// ErrObjectStoreNotConfigured is returned by entry points that need object storage.
var ErrObjectStoreNotConfigured = errors.New("object store not configured")

// classify makes sure err matches sentinel, wrapping it when the adapter
// did not already do so.
func classify(err, sentinel error) error {
	if err == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
