package storage

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/bookstore/config"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
)

// Open builds the store named by driver using the config package for its
// settings. Unknown names are rejected. The returned store is instrumented.
func Open(driver string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "memory":
		s = NewMemory()
	case "local", "":
		driver = "local"
		s = NewLocal(config.StateDir())
	case "redis":
		s, err = NewRedis(config.RedisAddr(), config.RedisPassword())
	case "sql":
		s, err = NewSQL(config.DatabaseDriver(), config.DatabaseDSN())
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (supported: memory, local, redis, sql)", driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(driver, s), nil
}

// Instrument records per-operation latency for s under the driver label.
func Instrument(driver string, s Store) Store {
	return &instrumented{driver: driver, inner: s}
}

type instrumented struct {
	driver string
	inner  Store
}

func (i *instrumented) Get(key string) ([]byte, error) {
	defer metrics.ObserveStorage(i.driver, "get", time.Now())
	return i.inner.Get(key)
}

func (i *instrumented) Set(key string, value []byte) error {
	defer metrics.ObserveStorage(i.driver, "set", time.Now())
	return i.inner.Set(key, value)
}

func (i *instrumented) Remove(key string) error {
	defer metrics.ObserveStorage(i.driver, "remove", time.Now())
	return i.inner.Remove(key)
}
