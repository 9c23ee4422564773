package service

import (
	"strings"
	"unicode/utf8"

	"travel-planner/internal/domain"
	"travel-planner/internal/overpass"
)

const (
	maxSpotNameRunes = 20
	unnamedSpot      = "名称不明"
	otherSpotType    = "その他"
)

// noiseKeywords marcan instalaciones auxiliares (aseos, parkings, taquillas...) que no son destinos.
var noiseKeywords = []string{
	"詰所", "案内", "地図", "乗り場", "駐車場", "トイレ",
	"入口", "出口", "受付", "売店", "ゲート", "記念碑",
}

var foodAmenities = map[string]bool{
	"restaurant": true, "cafe": true, "fast_food": true,
	"food_court": true, "bar": true, "pub": true,
}

type normalizeOptions struct {
	// strict descarta elementos sin nombre, con nombres largos o de instalaciones auxiliares.
	strict bool
	// noiseInTags amplía el filtro de ruido a los valores de todos los tags.
	noiseInTags bool
	// fixedType sustituye la clasificación por la etiqueta de la categoría buscada.
	fixedType string
	classify  func(tags map[string]string) string
}

// normalizeElements convierte la respuesta de Overpass en spots únicos por id, conservando el orden.
func normalizeElements(elements []overpass.Element, opts normalizeOptions) []domain.Spot {
	classify := opts.classify
	if classify == nil {
		classify = classifyCurated
	}
	seen := make(map[int64]struct{}, len(elements))
	spots := make([]domain.Spot, 0, len(elements))
	for _, el := range elements {
		if len(el.Tags) == 0 {
			continue
		}
		tags := el.Tags
		name := spotName(tags, opts.strict)
		if opts.strict {
			if name == "" || name == unnamedSpot {
				continue
			}
			if utf8.RuneCountInString(name) > maxSpotNameRunes {
				continue
			}
			if containsNoise(name) {
				continue
			}
			if opts.noiseInTags && tagsContainNoise(tags) {
				continue
			}
		}
		lat, lon, ok := el.Coordinates()
		if !ok || lat == 0 || lon == 0 {
			continue
		}
		if _, dup := seen[el.ID]; dup {
			continue
		}
		seen[el.ID] = struct{}{}

		spotType := opts.fixedType
		if spotType == "" {
			spotType = classify(tags)
		}
		spots = append(spots, domain.Spot{
			ID:           el.ID,
			Name:         name,
			Lat:          lat,
			Lon:          lon,
			Type:         spotType,
			Address:      spotAddress(tags),
			Description:  tags["description"],
			Website:      firstTag(tags, "website", "contact:website", "url", "official_website"),
			OpeningHours: tags["opening_hours"],
			Phone:        tags["phone"],
			Email:        tags["contact:email"],
			Facebook:     tags["contact:facebook"],
			Instagram:    tags["contact:instagram"],
		})
	}
	return spots
}

func spotName(tags map[string]string, strict bool) string {
	if strict {
		return firstTag(tags, "name:ja", "name", "name:en")
	}
	if name := firstTag(tags, "name:ja", "name"); name != "" {
		return name
	}
	return unnamedSpot
}

func spotAddress(tags map[string]string) string {
	if full := strings.TrimSpace(tags["addr:full"]); full != "" {
		return full
	}
	parts := make([]string, 0, 3)
	for _, key := range []string{"addr:city", "addr:street", "addr:postcode"} {
		if v := strings.TrimSpace(tags[key]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(tags[key]); v != "" {
			return v
		}
	}
	return ""
}

func containsNoise(s string) bool {
	for _, kw := range noiseKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func tagsContainNoise(tags map[string]string) bool {
	for _, v := range tags {
		if containsNoise(v) {
			return true
		}
	}
	return false
}

// classifyCurated sigue la prioridad de la consulta curada: el primer tag que coincide gana.
func classifyCurated(tags map[string]string) string {
	switch {
	case tags["historic"] == "castle":
		return "城"
	case tags["religion"] == "buddhist":
		return "寺院"
	case tags["religion"] == "shinto":
		return "神社"
	case tags["tourism"] == "museum":
		return "博物館"
	case tags["tourism"] == "gallery":
		return "美術館"
	case tags["tourism"] == "theme_park":
		return "テーマパーク"
	case tags["heritage"] == "1":
		return "世界遺産"
	case tags["leisure"] == "park":
		return "公園"
	case tags["amenity"] == "theatre":
		return "劇場"
	case foodAmenities[tags["amenity"]]:
		return "飲食店"
	case tags["amenity"] == "library":
		return "図書館"
	case tags["amenity"] == "cinema":
		return "映画館"
	case tags["leisure"] == "water_park":
		return "ウォーターパーク"
	case tags["tourism"] == "zoo":
		return "動物園"
	case tags["tourism"] == "aquarium":
		return "水族館"
	case tags["tourism"] == "viewpoint":
		return "展望台"
	}
	return otherSpotType
}

// classifySearch cubre también atracciones genéricas y lugares de culto sin religión.
func classifySearch(tags map[string]string) string {
	switch {
	case tags["historic"] == "castle":
		return "城"
	case tags["religion"] == "buddhist":
		return "寺院"
	case tags["religion"] == "shinto":
		return "神社"
	case tags["tourism"] == "museum":
		return "博物館"
	case tags["tourism"] == "aquarium":
		return "水族館"
	case tags["tourism"] == "theme_park":
		return "テーマパーク"
	case tags["tourism"] == "attraction":
		return "観光地"
	case tags["tourism"] == "viewpoint":
		return "展望台"
	case tags["tourism"] == "zoo":
		return "動物園"
	case tags["leisure"] == "water_park":
		return "ウォーターパーク"
	case tags["leisure"] == "park":
		return "公園"
	case tags["amenity"] == "place_of_worship":
		return "寺社"
	case tags["amenity"] == "theatre":
		return "劇場"
	case tags["amenity"] == "library":
		return "図書館"
	case tags["amenity"] == "cinema":
		return "映画館"
	case foodAmenities[tags["amenity"]]:
		return "飲食店"
	}
	return otherSpotType
}
