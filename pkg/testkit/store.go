package testkit

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

// ErrStoreDown is what a failing FlakyStore returns.
var ErrStoreDown = errors.New("testkit: store unavailable")

// FlakyStore wraps a memory store and fails reads or writes on demand.
type FlakyStore struct {
	storage.Store

	mu        sync.Mutex
	failGet   bool
	failWrite bool
}

func NewFlakyStore() *FlakyStore {
	return &FlakyStore{Store: storage.NewMemory()}
}

// FailReads toggles Get failures.
func (f *FlakyStore) FailReads(on bool) {
	f.mu.Lock()
	f.failGet = on
	f.mu.Unlock()
}

// FailWrites toggles Set and Remove failures.
func (f *FlakyStore) FailWrites(on bool) {
	f.mu.Lock()
	f.failWrite = on
	f.mu.Unlock()
}

func (f *FlakyStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, ErrStoreDown
	}
	return f.Store.Get(key)
}

func (f *FlakyStore) Set(key string, value []byte) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return ErrStoreDown
	}
	return f.Store.Set(key, value)
}

func (f *FlakyStore) Remove(key string) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return ErrStoreDown
	}
	return f.Store.Remove(key)
}
