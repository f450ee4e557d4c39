// Package blob stores proof images behind a small key/value interface.
package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// OpError records which backend operation failed on which key.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string { return "blob " + e.Op + " " + e.Key + ": " + e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }
