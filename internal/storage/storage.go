// Package storage provides the key-value persistence backend used to carry
// a session across process restarts.
package storage

import "context"

// Storage is the persistence collaborator of the session store. Get returns
// (nil, nil) when the key is absent; implementations report I/O failures as
// *Error so callers can distinguish "missing" from "broken".
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Error wraps a backend failure with the operation and key that caused it.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return "storage: " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
