// Package kv is the persistence collaborator: a key-value store of opaque
// string blobs. Missing keys are reported through the found flag, never as
// an error.
package kv

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("kv: store closed")

type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Apply runs all ops atomically: either every op is visible afterwards
	// or none is.
	Apply(ctx context.Context, ops ...Op) error
	Close() error
}

// Op is one write inside an Apply batch.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

func Put(key, value string) Op {
	return Op{Key: key, Value: value}
}

func Remove(key string) Op {
	return Op{Key: key, Delete: true}
}
