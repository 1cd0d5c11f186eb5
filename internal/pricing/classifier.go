// Package pricing classifies cake variants and composes the unit price of a
// (weight, flavor) selection. Every place that needs a cake price goes
// through ComposePrice.
package pricing

import (
	"strings"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// weightTokens mark a variant label as a weight option.
var weightTokens = []string{"kg", "gm", "lb", "pound"}

// Classification splits a variant list by role.
type Classification struct {
	WeightVariants []models.Variant `json:"weightVariants"`
	FlavorVariants []models.Variant `json:"flavorVariants"`
}

// IsWeightLabel reports whether label names a weight option.
func IsWeightLabel(label string) bool {
	l := strings.ToLower(label)
	for _, tok := range weightTokens {
		if strings.Contains(l, tok) {
			return true
		}
	}
	return false
}

// Classify partitions variants into weight and flavor variants, preserving order.
func Classify(variants []models.Variant) Classification {
	c := Classification{
		WeightVariants: []models.Variant{},
		FlavorVariants: []models.Variant{},
	}
	for _, v := range variants {
		if IsWeightLabel(v.Label) {
			c.WeightVariants = append(c.WeightVariants, v)
		} else {
			c.FlavorVariants = append(c.FlavorVariants, v)
		}
	}
	return c
}
