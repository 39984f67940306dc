package placesearch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"placechat/internal/config"
	"placechat/internal/observability"
)

// Cache stores search pages and the individual places they returned.
type Cache interface {
	GetSearch(ctx context.Context, key string) (Result, bool, error)
	SetSearch(ctx context.Context, key string, result Result) error
	GetPlace(ctx context.Context, externalID string) (Place, bool, error)
	SetPlaces(ctx context.Context, places []Place) error
}

// Service fronts a Provider with a result cache.
type Service struct {
	provider Provider
	cache    Cache
}

// NewService constructs a Service. cache may be nil.
func NewService(provider Provider, cache Cache) *Service {
	return &Service{provider: provider, cache: cache}
}

// NewProvider picks the provider named in the configuration, defaulting to Kakao.
func NewProvider(cfg config.Config) Provider {
	switch cfg.PlaceSearchProvider {
	case "naver":
		return NewNaver(cfg.NaverBaseURL, cfg.NaverClientID, cfg.NaverClientSecret)
	case "kakao", "":
	default:
		log.Printf("unknown place search provider %q, using kakao", cfg.PlaceSearchProvider)
	}
	return NewKakao(cfg.KakaoBaseURL, cfg.KakaoRestAPIKey)
}

// Search serves from cache when possible and caches fresh provider results.
// Cache failures are logged and never fail the search.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	key := s.cacheKey(q)
	if s.cache != nil {
		cached, ok, err := s.cache.GetSearch(ctx, key)
		if err != nil {
			log.Printf("place search cache read failed: key=%s err=%v", key, err)
		} else if ok {
			observability.IncPlaceSearch(s.provider.Name(), "cache_hit")
			return cached, nil
		}
	}

	result, err := s.provider.Search(ctx, q)
	if err != nil {
		observability.IncPlaceSearch(s.provider.Name(), searchOutcome(err))
		return Result{}, err
	}
	observability.IncPlaceSearch(s.provider.Name(), "ok")

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, key, result); err != nil {
			log.Printf("place search cache write failed: key=%s err=%v", key, err)
		}
		if err := s.cache.SetPlaces(ctx, result.Places); err != nil {
			log.Printf("place cache write failed: err=%v", err)
		}
	}
	return result, nil
}

// Lookup returns a place previously returned by a search.
func (s *Service) Lookup(ctx context.Context, externalID string) (Place, error) {
	if s.cache == nil {
		return Place{}, ErrPlaceNotCached
	}
	place, ok, err := s.cache.GetPlace(ctx, externalID)
	if err != nil {
		return Place{}, err
	}
	if !ok {
		return Place{}, ErrPlaceNotCached
	}
	return place, nil
}

func (s *Service) cacheKey(q Query) string {
	return fmt.Sprintf("%s:%s:%s:%.3f:%.3f:%d:%d",
		s.provider.Name(), q.Query, q.Category, round3(q.Latitude), round3(q.Longitude), q.Page, q.Display)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func searchOutcome(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}
