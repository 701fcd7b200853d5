package advicecache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/food-waste-predictor/internal/domain/advisor"
)

// ValkeyCache persists AI replies in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "advice"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get implements advisor.Cache.
func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.key(key)).Build()
	value, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Save implements advisor.Cache. Sub-second TTLs are rounded up to one second.
func (c *ValkeyCache) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := c.client.B().Set().Key(c.key(key)).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// Close releases the underlying connection pool.
func (c *ValkeyCache) Close() {
	c.client.Close()
}

func (c *ValkeyCache) key(key string) string {
	return c.prefix + ":" + key
}

var _ advisor.Cache = (*ValkeyCache)(nil)
