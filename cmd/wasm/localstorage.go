//go:build js && wasm

package main

import (
	"context"
	"sort"
	"strings"
	"syscall/js"

	"github.com/Draichi/canvas-ui/internal/storage"
)

// localStorage is a storage.Store over window.localStorage. Values are
// stored as strings; snapshots are JSON so nothing is lost.
type localStorage struct {
	ls js.Value
}

func newLocalStorage() *localStorage {
	return &localStorage{ls: js.Global().Get("localStorage")}
}

func (s *localStorage) Get(_ context.Context, key string) ([]byte, error) {
	v := s.ls.Call("getItem", key)
	if v.IsNull() {
		return nil, storage.ErrNotFound
	}
	return []byte(v.String()), nil
}

func (s *localStorage) Put(_ context.Context, key string, value []byte) error {
	s.ls.Call("setItem", key, string(value))
	return nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	s.ls.Call("removeItem", key)
	return nil
}

func (s *localStorage) List(_ context.Context, prefix string) ([]storage.Entry, error) {
	var entries []storage.Entry
	n := s.ls.Get("length").Int()
	for i := 0; i < n; i++ {
		key := s.ls.Call("key", i).String()
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entries = append(entries, storage.Entry{Key: key, Value: []byte(s.ls.Call("getItem", key).String())})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
