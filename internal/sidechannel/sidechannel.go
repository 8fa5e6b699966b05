// Package sidechannel provides the durable key-value storage the console
// session survives restarts through.
package sidechannel

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("sidechannel: key not found")

// Store is a string-keyed store that outlives the process.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// Write sets and removes keys as one batch; readers never observe a
	// partially applied batch.
	Write(ctx context.Context, set map[string]string, remove ...string) error
	Remove(ctx context.Context, keys ...string) error
}

// Keys names the entries that make up a persisted session.
type Keys struct {
	Token      string
	User       string
	RememberMe string
}

// DefaultKeys returns the standard key names under prefix.
func DefaultKeys(prefix string) Keys {
	return Keys{
		Token:      prefix + "session_token",
		User:       prefix + "session_user",
		RememberMe: prefix + "remember_me",
	}
}

// All lists every key in k.
func (k Keys) All() []string {
	return []string{k.Token, k.User, k.RememberMe}
}
