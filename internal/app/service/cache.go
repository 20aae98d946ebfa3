package service

// CatalogCache stores serialized read results. Implementations must treat a
// miss as (false, nil).
type CatalogCache interface {
	GetJSON(key string, dest interface{}) (bool, error)
	SetJSON(key string, value interface{}) error
	Invalidate() error
}

type noopCache struct{}

func (noopCache) GetJSON(string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetJSON(string, interface{}) error         { return nil }
func (noopCache) Invalidate() error                         { return nil }

func cacheOrNoop(cache CatalogCache) CatalogCache {
	if cache == nil {
		return noopCache{}
	}
	return cache
}
