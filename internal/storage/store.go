// Package storage is the key-value persistence behind canvases: one
// working-state entry plus any number of bookmark entries per canvas, each a
// JSON snapshot stored under a string key.
package storage

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("key not found")

// Entry is one stored key and its value.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a flat key-value store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or overwrites key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every entry whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Backend is a Store that owns a connection.
type Backend interface {
	Store
	Close() error
}

// Prefixed scopes a store to keys under ns. Keys passed in and returned are
// relative to ns.
func Prefixed(s Store, ns string) Store {
	if ns == "" {
		return s
	}
	return &prefixed{inner: s, ns: ns}
}

type prefixed struct {
	inner Store
	ns    string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.ns+key)
}

func (p *prefixed) Put(ctx context.Context, key string, value []byte) error {
	return p.inner.Put(ctx, p.ns+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.ns+key)
}

func (p *prefixed) List(ctx context.Context, prefix string) ([]Entry, error) {
	entries, err := p.inner.List(ctx, p.ns+prefix)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Key = strings.TrimPrefix(entries[i].Key, p.ns)
	}
	return entries, nil
}
