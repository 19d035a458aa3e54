package metrics

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RouteKind is the coarse category of a learning route.
type RouteKind int

const (
	// NoRoute covers empty routes and the platform's "not title" sentinel.
	NoRoute RouteKind = iota
	// OtherRoute is any named route outside the AI adoption program.
	OtherRoute
	// AIRoute is one of the six canonical AI adoption level routes.
	AIRoute
)

func (k RouteKind) String() string {
	switch k {
	case AIRoute:
		return "ai_route"
	case OtherRoute:
		return "other_route"
	default:
		return "no_route"
	}
}

// NoRouteLabel names the bucket for activity outside any route.
const NoRouteLabel = "Sin ruta"

// noTitleSentinel is what the learning platform exports for courses taken
// outside a route.
const noTitleSentinel = "not title"

// AIRoutes are the canonical AI adoption routes, indexed by level - 1.
var AIRoutes = [...]string{
	"Nivel 1 Adopción IA Usuario Explorador Herramientas IA",
	"Nivel 2 Adopción IA Usuario Básico Herramientas IA",
	"Nivel 3 Adopción IA Usuario Competente Herramientas IA",
	"Nivel 4 Adopción IA Usuario Avanzado Herramientas IA",
	"Nivel 5 Adopción IA Desarrollador de Soluciones IA",
	"Nivel 6 Adopción IA Líder de Transformación IA",
}

// aiRouteLevels maps normalized canonical route names to their level.
var aiRouteLevels = func() map[string]int {
	m := make(map[string]int, len(AIRoutes))
	for i, name := range AIRoutes {
		m[NormalizeRoute(name)] = i + 1
	}
	return m
}()

// RouteCategory is the classification of one route string.
type RouteCategory struct {
	Kind  RouteKind
	Level int    // 1–6 for AIRoute, 0 otherwise
	Name  string // canonical name, trimmed route text, or NoRouteLabel
}

// NormalizeRoute collapses runs of whitespace, lowercases and trims.
func NormalizeRoute(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return cases.Lower(language.Spanish).String(collapsed)
}

// HasRoute reports whether the route text names an actual route.
func HasRoute(route string) bool {
	n := NormalizeRoute(route)
	return n != "" && n != noTitleSentinel
}

// ClassifyRoute is the single place route text is turned into a category.
func ClassifyRoute(route string) RouteCategory {
	n := NormalizeRoute(route)
	if n == "" || n == noTitleSentinel {
		return RouteCategory{Kind: NoRoute, Name: NoRouteLabel}
	}
	if level, ok := aiRouteLevels[n]; ok {
		return RouteCategory{Kind: AIRoute, Level: level, Name: AIRoutes[level-1]}
	}
	return RouteCategory{Kind: OtherRoute, Name: strings.TrimSpace(route)}
}

// NoLevelLabel names the bucket for profiles whose route has no level.
const NoLevelLabel = "Sin Nivel"

var levelPattern = regexp.MustCompile(`(?i)nivel\s*(\d+)`)

// ParseLevel extracts the "Nivel N" level (1–6) from a profile route.
// It returns 0 when the route has no recognizable level.
func ParseLevel(route string) int {
	m := levelPattern.FindStringSubmatch(route)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > len(AIRoutes) {
		return 0
	}
	return n
}

// LevelLabel returns the display label for a profile route's level.
func LevelLabel(route string) string {
	if n := ParseLevel(route); n > 0 {
		return "Nivel " + strconv.Itoa(n)
	}
	return NoLevelLabel
}
