// Package sport maps source device sport labels onto the five canonical
// training categories.
package sport

import (
	"strings"

	"github.com/stridewell/server/pkg/types"
)

// sourceSports is the fixed lookup for the labels the supported device
// exports are known to emit.
var sourceSports = map[string]types.Sport{
	"running":             types.SportRun,
	"treadmill_running":   types.SportRun,
	"cycling":             types.SportBike,
	"indoor_cycling":      types.SportBike,
	"lap_swimming":        types.SportSwim,
	"open_water_swimming": types.SportSwim,
	"strength_training":   types.SportStrength,
	"yoga":                types.SportMobility,
	"stretching":          types.SportMobility,
}

// Map converts a source sport label to its canonical category. Total: any
// input maps to one of the five categories. Unknown labels that match no
// substring heuristic land on strength, the least wrong default for gym-style
// sessions.
func Map(label string) types.Sport {
	normalized := strings.ToLower(strings.TrimSpace(label))

	if s, ok := sourceSports[normalized]; ok {
		return s
	}

	switch {
	case strings.Contains(normalized, "run"), strings.Contains(normalized, "walk"):
		return types.SportRun
	case strings.Contains(normalized, "bike"), strings.Contains(normalized, "cycl"):
		return types.SportBike
	case strings.Contains(normalized, "swim"):
		return types.SportSwim
	case strings.Contains(normalized, "strength"), strings.Contains(normalized, "weight"):
		return types.SportStrength
	}

	return types.SportStrength
}
