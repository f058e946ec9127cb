package engine

import "github.com/vatskrypt/DataMimic/internal/schema"

// AutoModel picks a model type from the column mix: mostly numeric data
// suits a copula, mostly categorical suits copulagan, mixed data gets
// ctgan.
func AutoModel(an *schema.Analysis) string {
	numeric := 0
	for _, p := range an.Profiles {
		if p.Kind == schema.KindNumeric {
			numeric++
		}
	}
	total := len(an.Profiles)
	if total == 0 {
		return "copula"
	}

	numRatio := float64(numeric) / float64(total)
	catRatio := float64(total-numeric) / float64(total)
	switch {
	case numRatio >= 0.6:
		return "copula"
	case catRatio >= 0.6:
		return "copulagan"
	default:
		return "ctgan"
	}
}
