package storage

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed namespaces every key of inner with prefix. The storefront gives
// each visitor its own "visitor:<id>:" view of the shared store.
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(key string) ([]byte, error) { return p.inner.Get(p.prefix + key) }

func (p *prefixed) Set(key string, value []byte) error { return p.inner.Set(p.prefix+key, value) }

func (p *prefixed) Remove(key string) error { return p.inner.Remove(p.prefix + key) }
