package overpass

import (
	"fmt"
	"strings"
)

// BBox es un rectángulo (sur, oeste, norte, este) en el orden que espera Overpass.
type BBox struct {
	South, West, North, East float64
}

func (b BBox) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", b.South, b.West, b.North, b.East)
}

var (
	// Kansai cubre las consultas curadas y por categoría.
	Kansai = BBox{33.5, 134.5, 35.8, 136.8}

	Osaka = BBox{34.4, 135.2, 34.9, 135.8}
	Kyoto = BBox{34.8, 135.5, 35.3, 136.0}
	Nara  = BBox{34.4, 135.6, 34.9, 136.1}
)

// Selector es un filtro de tags aplicado a ciertos tipos de elemento.
type Selector struct {
	Kinds  []string
	Filter string
}

// Nodes aplica el filtro solo a nodos.
func Nodes(filter string) Selector {
	return Selector{Kinds: []string{"node"}, Filter: filter}
}

func NodesWays(filter string) Selector {
	return Selector{Kinds: []string{"node", "way"}, Filter: filter}
}

func AllKinds(filter string) Selector {
	return Selector{Kinds: []string{"node", "way", "relation"}, Filter: filter}
}

// Build compone una consulta union con salida JSON y límite de resultados.
func Build(timeoutSeconds, limit int, selectors []Selector, boxes ...BBox) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSeconds)
	for _, box := range boxes {
		for _, sel := range selectors {
			for _, kind := range sel.Kinds {
				fmt.Fprintf(&b, "  %s%s%s;\n", kind, sel.Filter, box)
			}
		}
	}
	// out center añade el centro a ways y relations.
	fmt.Fprintf(&b, ");\nout body center %d;\n", limit)
	return b.String()
}

// CuratedSelectors son las atracciones que se muestran por defecto.
func CuratedSelectors() []Selector {
	return []Selector{
		NodesWays(`["historic"="castle"]`),
		Nodes(`["amenity"="place_of_worship"]["religion"="buddhist"]["wikidata"]`),
		Nodes(`["amenity"="place_of_worship"]["religion"="shinto"]["wikidata"]`),
		NodesWays(`["tourism"="museum"]`),
		Nodes(`["tourism"="gallery"]`),
		NodesWays(`["tourism"="theme_park"]`),
		AllKinds(`["heritage"="1"]`),
		Nodes(`["leisure"="park"]["operator"~"国"]`),
		Nodes(`["amenity"="theatre"]`),
		Nodes(`["amenity"~"restaurant|cafe|fast_food|food_court|bar|pub"]`),
		Nodes(`["amenity"="library"]`),
		Nodes(`["amenity"="cinema"]`),
		Nodes(`["leisure"="water_park"]`),
		Nodes(`["tourism"="zoo"]`),
		Nodes(`["tourism"="aquarium"]`),
		Nodes(`["tourism"="viewpoint"]`),
	}
}

func CuratedQuery() string {
	return Build(25, 150, CuratedSelectors(), Kansai)
}

// NameSearchQuery busca por nombre sin distinguir mayúsculas en Osaka, Kyoto y Nara.
func NameSearchQuery(keyword string) string {
	sel := NodesWays(fmt.Sprintf(`["name"~"%s",i]`, EscapeRegex(keyword)))
	return Build(30, 100, []Selector{sel}, Osaka, Kyoto, Nara)
}

func CategoryQuery(selectors []Selector) string {
	return Build(30, 100, selectors, Kansai)
}

const regexMeta = `\.+*?()|[]{}^$`

// EscapeRegex escapa el texto para usarlo como literal dentro de un filtro ~"...".
// Primero se escapa para la expresión regular y luego para el string de Overpass QL.
func EscapeRegex(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\\\`)
		case strings.ContainsRune(regexMeta, r):
			b.WriteString(`\\`)
			b.WriteRune(r)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
