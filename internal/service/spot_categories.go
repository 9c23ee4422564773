package service

import (
	"travel-planner/internal/domain"
	"travel-planner/internal/overpass"
)

type spotCategory struct {
	domain.SpotCategory
	selectors []overpass.Selector
}

var spotCategories = []spotCategory{
	{domain.SpotCategory{Key: "castle", Label: "城"}, []overpass.Selector{overpass.NodesWays(`["historic"="castle"]`)}},
	{domain.SpotCategory{Key: "buddhist", Label: "寺院"}, []overpass.Selector{overpass.Nodes(`["amenity"="place_of_worship"]["religion"="buddhist"]["wikidata"]`)}},
	{domain.SpotCategory{Key: "shinto", Label: "神社"}, []overpass.Selector{overpass.Nodes(`["amenity"="place_of_worship"]["religion"="shinto"]["wikidata"]`)}},
	{domain.SpotCategory{Key: "museum", Label: "博物館"}, []overpass.Selector{overpass.NodesWays(`["tourism"="museum"]`)}},
	{domain.SpotCategory{Key: "gallery", Label: "美術館"}, []overpass.Selector{overpass.Nodes(`["tourism"="gallery"]`)}},
	{domain.SpotCategory{Key: "theme_park", Label: "テーマパーク"}, []overpass.Selector{overpass.NodesWays(`["tourism"="theme_park"]`)}},
	{domain.SpotCategory{Key: "heritage", Label: "世界遺産"}, []overpass.Selector{overpass.AllKinds(`["heritage"="1"]`)}},
	{domain.SpotCategory{Key: "park", Label: "公園"}, []overpass.Selector{overpass.Nodes(`["leisure"="park"]`)}},
	{domain.SpotCategory{Key: "theatre", Label: "劇場"}, []overpass.Selector{overpass.Nodes(`["amenity"="theatre"]`)}},
	{domain.SpotCategory{Key: "restaurant", Label: "飲食店"}, []overpass.Selector{overpass.Nodes(`["amenity"~"restaurant|cafe|fast_food|food_court|bar|pub"]`)}},
	{domain.SpotCategory{Key: "library", Label: "図書館"}, []overpass.Selector{overpass.Nodes(`["amenity"="library"]`)}},
	{domain.SpotCategory{Key: "cinema", Label: "映画館"}, []overpass.Selector{overpass.Nodes(`["amenity"="cinema"]`)}},
	{domain.SpotCategory{Key: "water_park", Label: "ウォーターパーク"}, []overpass.Selector{overpass.Nodes(`["leisure"="water_park"]`)}},
	{domain.SpotCategory{Key: "zoo", Label: "動物園"}, []overpass.Selector{overpass.Nodes(`["tourism"="zoo"]`)}},
	{domain.SpotCategory{Key: "aquarium", Label: "水族館"}, []overpass.Selector{overpass.Nodes(`["tourism"="aquarium"]`)}},
	{domain.SpotCategory{Key: "viewpoint", Label: "展望台"}, []overpass.Selector{overpass.Nodes(`["tourism"="viewpoint"]`)}},
}

func findSpotCategory(key string) (spotCategory, bool) {
	for _, c := range spotCategories {
		if c.Key == key {
			return c, true
		}
	}
	return spotCategory{}, false
}

// SpotCategories lista las categorías admitidas por SearchByCategory.
func SpotCategories() []domain.SpotCategory {
	out := make([]domain.SpotCategory, 0, len(spotCategories))
	for _, c := range spotCategories {
		out = append(out, c.SpotCategory)
	}
	return out
}
