package history

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps the last city for the life of the process.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore returns an empty MemoryStore. Entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) LastCity(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := s.c.Get(Key)
	if !ok {
		return "", false, nil
	}
	city, ok := v.(string)
	return city, ok, nil
}

func (s *MemoryStore) SaveLastCity(ctx context.Context, city string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	city, err := cleanCity(city)
	if err != nil {
		return err
	}
	s.c.Set(Key, city, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) ClearLastCity(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.c.Delete(Key)
	return nil
}
