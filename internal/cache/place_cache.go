package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"placechat/internal/placesearch"
)

const (
	searchKeyPrefix = "places:search:"
	placeKeyPrefix  = "places:external:"
)

// PlaceCache stores external place search results in Redis.
type PlaceCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ placesearch.Cache = (*PlaceCache)(nil)

// NewPlaceCache constructs a PlaceCache whose entries expire after ttl.
func NewPlaceCache(client *redis.Client, ttl time.Duration) *PlaceCache {
	return &PlaceCache{client: client, ttl: ttl}
}

func (c *PlaceCache) GetSearch(ctx context.Context, key string) (placesearch.Result, bool, error) {
	var result placesearch.Result
	ok, err := c.get(ctx, searchKeyPrefix+key, &result)
	return result, ok, err
}

func (c *PlaceCache) SetSearch(ctx context.Context, key string, result placesearch.Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKeyPrefix+key, body, c.ttl).Err()
}

func (c *PlaceCache) GetPlace(ctx context.Context, externalID string) (placesearch.Place, bool, error) {
	var place placesearch.Place
	ok, err := c.get(ctx, placeKeyPrefix+externalID, &place)
	return place, ok, err
}

// SetPlaces caches each place under its external id in one round trip.
// The per-search distance is dropped since it depends on the caller's position.
func (c *PlaceCache) SetPlaces(ctx context.Context, places []placesearch.Place) error {
	if len(places) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, p := range places {
		p.Distance = nil
		body, err := json.Marshal(p)
		if err != nil {
			return err
		}
		pipe.Set(ctx, placeKeyPrefix+p.ID, body, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *PlaceCache) get(ctx context.Context, key string, dst any) (bool, error) {
	body, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, err
	}
	return true, nil
}
