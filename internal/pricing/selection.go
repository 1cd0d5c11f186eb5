package pricing

import (
	"strings"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// noSelectionAliases are spellings of "nothing picked" seen from clients and
// in older cart records. All of them normalize to the empty string unless
// the product really offers a variant with that label.
var noSelectionAliases = map[string]struct{}{
	"":         {},
	"standard": {},
	"none":     {},
	"regular":  {},
	"null":     {},
}

// NormalizeWeight canonicalizes a weight label of p.
func NormalizeWeight(p models.Product, label string) string {
	return normalizeAgainst(Classify(p.Variants).WeightVariants, label)
}

// NormalizeFlavor canonicalizes a flavor label of p.
func NormalizeFlavor(p models.Product, label string) string {
	return normalizeAgainst(Classify(p.Variants).FlavorVariants, label)
}

// NormalizeKey canonicalizes both selections of a cart key for p.
func NormalizeKey(p models.Product, k models.CartKey) models.CartKey {
	return models.CartKey{
		ProductID: k.ProductID,
		Weight:    NormalizeWeight(p, k.Weight),
		Flavor:    NormalizeFlavor(p, k.Flavor),
	}
}

// normalizeAgainst trims label. An alias spelling is kept when one of
// variants carries it as a real label, otherwise it becomes "".
func normalizeAgainst(variants []models.Variant, label string) string {
	trimmed := strings.TrimSpace(label)
	if _, alias := noSelectionAliases[strings.ToLower(trimmed)]; !alias || trimmed == "" {
		return trimmed
	}
	for _, v := range variants {
		if l := strings.TrimSpace(v.Label); strings.EqualFold(l, trimmed) {
			return l
		}
	}
	return ""
}
