package main

import (
	"context"
	"fmt"
	"time"

	"travel-planner/internal/domain"
	"travel-planner/internal/service"
)

// Scenario es una consulta contra Overpass con un mínimo de resultados esperado.
type Scenario struct {
	Name     string
	MinSpots int
	Run      func(ctx context.Context, svc *service.SpotService) ([]domain.Spot, error)
}

type checkResult struct {
	Scenario string
	Count    int
	Elapsed  time.Duration
	Err      error
	Sample   []string
}

func (r checkResult) Passed(minSpots int) bool {
	return r.Err == nil && r.Count >= minSpots
}

func defaultScenarios(categories []string, search string) []Scenario {
	scenarios := []Scenario{
		{
			Name:     "curated",
			MinSpots: 1,
			Run: func(ctx context.Context, svc *service.SpotService) ([]domain.Spot, error) {
				return svc.Curated(ctx)
			},
		},
	}
	if search != "" {
		scenarios = append(scenarios, Scenario{
			Name:     "search:" + search,
			MinSpots: 1,
			Run: func(ctx context.Context, svc *service.SpotService) ([]domain.Spot, error) {
				return svc.SearchByName(ctx, search)
			},
		})
	}
	for _, key := range categories {
		scenarios = append(scenarios, Scenario{
			Name:     "category:" + key,
			MinSpots: 1,
			Run: func(ctx context.Context, svc *service.SpotService) ([]domain.Spot, error) {
				res, err := svc.SearchByCategory(ctx, key)
				return res.Spots, err
			},
		})
	}
	return scenarios
}

func runScenario(ctx context.Context, svc *service.SpotService, sc Scenario, sampleSize int) checkResult {
	start := time.Now()
	spots, err := sc.Run(ctx, svc)
	res := checkResult{Scenario: sc.Name, Count: len(spots), Elapsed: time.Since(start), Err: err}
	for i := 0; i < len(spots) && i < sampleSize; i++ {
		res.Sample = append(res.Sample, fmt.Sprintf("%s (%s)", spots[i].Name, spots[i].Type))
	}
	return res
}
