package cache

import (
	"context"
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
)

// MetadataSource fetches item metadata from the network.
type MetadataSource interface {
	ItemDetails(ctx context.Context, itemID string) (model.ItemInfo, error)
}

// CachedMetadata serves item metadata from the on-disk cache while fresh and
// falls back to Source otherwise. A failed refresh returns stale data when
// any exists.
type CachedMetadata struct {
	Source MetadataSource
	TTL    time.Duration
	Now    func() time.Time
}

// ItemDetails implements MetadataSource.
func (c CachedMetadata) ItemDetails(ctx context.Context, itemID string) (model.ItemInfo, error) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = ItemCacheTTL
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	cached, cachedAt, cacheErr := ReadItemCache(itemID)
	if cacheErr == nil && now().Sub(cachedAt) < ttl {
		return cached, nil
	}

	info, err := c.Source.ItemDetails(ctx, itemID)
	if err != nil {
		if cacheErr == nil {
			return cached, nil
		}
		return model.ItemInfo{}, err
	}
	_ = WriteItemCache(itemID, info)
	return info, nil
}
