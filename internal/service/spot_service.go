package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"travel-planner/internal/domain"
	"travel-planner/internal/overpass"
)

const (
	MsgUpstreamFailed  = "failed to fetch data from Overpass API"
	MsgUpstreamTimeout = "Overpass API request timed out"

	maxSearchQueryRunes = 100
)

// SpotService consulta Overpass, normaliza los elementos y cachea los resultados.
type SpotService struct {
	logger   *zap.Logger
	client   overpass.Client
	cache    SpotCache
	cacheTTL time.Duration
	group    singleflight.Group
}

func NewSpotService(logger *zap.Logger, client overpass.Client, cache SpotCache, cacheTTL time.Duration) *SpotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemorySpotCache()
	}
	return &SpotService{
		logger:   logger,
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// CategoryResult acompaña los spots con la categoría resuelta.
type CategoryResult struct {
	Category domain.SpotCategory
	Spots    []domain.Spot
}

// Curated devuelve la selección de atracciones de Kansai.
func (s *SpotService) Curated(ctx context.Context) ([]domain.Spot, error) {
	return s.fetch(ctx, "curated", overpass.CuratedQuery(), normalizeOptions{
		strict:      true,
		noiseInTags: true,
		classify:    classifyCurated,
	})
}

// SearchByName busca por nombre en Osaka, Kyoto y Nara.
func (s *SpotService) SearchByName(ctx context.Context, query string) ([]domain.Spot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("query is required")
	}
	if utf8.RuneCountInString(query) > maxSearchQueryRunes {
		return nil, validationError("query is too long")
	}
	return s.fetch(ctx, "search:"+strings.ToLower(query), overpass.NameSearchQuery(query), normalizeOptions{
		classify: classifySearch,
	})
}

func (s *SpotService) SearchByCategory(ctx context.Context, key string) (CategoryResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return CategoryResult{}, validationError("category is required")
	}
	category, ok := findSpotCategory(key)
	if !ok {
		return CategoryResult{}, validationError("invalid category")
	}
	spots, err := s.fetch(ctx, "category:"+category.Key, overpass.CategoryQuery(category.selectors), normalizeOptions{
		strict:    true,
		fixedType: category.Label,
	})
	if err != nil {
		return CategoryResult{}, err
	}
	return CategoryResult{Category: category.SpotCategory, Spots: spots}, nil
}

// fetch comparte una sola llamada a Overpass entre peticiones idénticas concurrentes.
func (s *SpotService) fetch(ctx context.Context, key, ql string, opts normalizeOptions) ([]domain.Spot, error) {
	if spots, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("spot cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return spots, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		// La llamada compartida no depende de la cancelación del primer solicitante.
		callCtx := context.WithoutCancel(ctx)
		resp, err := s.client.Query(callCtx, ql)
		if err != nil {
			return nil, err
		}
		spots := normalizeElements(resp.Elements, opts)
		if err := s.cache.Set(callCtx, key, spots, s.cacheTTL); err != nil {
			s.logger.Warn("spot cache write failed", zap.String("key", key), zap.Error(err))
		}
		return spots, nil
	})

	select {
	case <-ctx.Done():
		return nil, upstreamError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("overpass query failed", zap.String("key", key), zap.Error(res.Err))
			return nil, upstreamError(res.Err)
		}
		spots := res.Val.([]domain.Spot)
		s.logger.Info("spots fetched",
			zap.String("key", key),
			zap.Int("count", len(spots)),
			zap.Bool("shared", res.Shared),
		)
		return spots, nil
	}
}

func upstreamError(err error) error {
	if errors.Is(err, overpass.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Message: MsgUpstreamTimeout, Err: err}
	}
	return &Error{Kind: ErrUpstream, Message: MsgUpstreamFailed, Err: err}
}
