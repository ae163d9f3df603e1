// Package store provides the durable client-side key/value state the
// channels persist across restarts (notification lists, bearer token).
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Store is a small durable key/value facade. Values are opaque bytes;
// callers own the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Well-known keys shared between the channels and the session.
const (
	KeyNotifications       = "notifications"
	KeySilentNotifications = "silentNotifications"
	KeyToken               = "token"
)
