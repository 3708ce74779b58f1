// Package cache is the key-value persistence boundary. The app treats it the
// way a browser app treats localStorage: a handful of independently keyed
// entries, written best-effort.
package cache

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type PutCondition int

const (
	PutAlways PutCondition = iota
	PutIfNoneMatch
)

type PutOptions struct {
	Condition PutCondition
}

func Unconditional() PutOptions {
	return PutOptions{Condition: PutAlways}
}

func IfNoneMatch() PutOptions {
	return PutOptions{Condition: PutIfNoneMatch}
}

type Cache interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key, value string, opts PutOptions) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string, delimiter string) ([]string, error)
}
