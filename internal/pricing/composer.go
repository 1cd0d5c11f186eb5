package pricing

import (
	"math"
	"strings"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// Price is a composed price pair.
type Price struct {
	OriginalPrice   float64 `json:"originalPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
}

// Quote is a normalized selection together with its composed price.
type Quote struct {
	SelectedWeight string `json:"selectedWeight"`
	SelectedFlavor string `json:"selectedFlavor"`
	Price          Price  `json:"price"`
}

// UnitPrice is the amount charged per unit for the quoted selection.
func (q Quote) UnitPrice() float64 {
	return q.Price.DiscountedPrice
}

// findVariant returns the first variant whose trimmed label equals label.
// The empty label never resolves.
func findVariant(variants []models.Variant, label string) *models.Variant {
	if label == "" {
		return nil
	}
	for i := range variants {
		if strings.TrimSpace(variants[i].Label) == label {
			return &variants[i]
		}
	}
	return nil
}

// ComposePrice combines the base price of the selected weight with the
// surcharge of the selected flavor. The weight label only resolves among
// weight variants and the flavor label only among flavor variants. A weight
// that does not resolve falls back to the product's legacy top-level price;
// anything else that does not resolve contributes zero.
func ComposePrice(p models.Product, weightLabel, flavorLabel string) Price {
	c := Classify(p.Variants)
	weightLabel = normalizeAgainst(c.WeightVariants, weightLabel)
	flavorLabel = normalizeAgainst(c.FlavorVariants, flavorLabel)

	var out Price
	if w := findVariant(c.WeightVariants, weightLabel); w != nil && w.Price != nil {
		out.OriginalPrice = w.Price.OriginalPrice
		out.DiscountedPrice = w.Price.DiscountedPrice
	} else if p.Price != nil {
		out.OriginalPrice = p.Price.OriginalPrice
		out.DiscountedPrice = p.Price.DiscountedPrice
	}

	if f := findVariant(c.FlavorVariants, flavorLabel); f != nil && f.Price != nil {
		out.OriginalPrice += f.Price.OriginalPrice
		out.DiscountedPrice += f.Price.DiscountedPrice
	}

	out.OriginalPrice = math.Max(out.OriginalPrice, 0)
	out.DiscountedPrice = math.Max(out.DiscountedPrice, 0)
	return out
}

// DefaultSelection picks the first weight variant and the cheapest flavor
// variant (by discounted price, earliest wins ties). Missing kinds yield "".
func DefaultSelection(p models.Product) (weight, flavor string) {
	c := Classify(p.Variants)
	if len(c.WeightVariants) > 0 {
		weight = strings.TrimSpace(c.WeightVariants[0].Label)
	}

	best := -1
	bestPrice := math.Inf(1)
	for i, v := range c.FlavorVariants {
		price := 0.0
		if v.Price != nil {
			price = v.Price.DiscountedPrice
		}
		if price < bestPrice {
			best, bestPrice = i, price
		}
	}
	if best >= 0 {
		flavor = strings.TrimSpace(c.FlavorVariants[best].Label)
	}
	return weight, flavor
}

// QuoteFor prices a selection after normalizing it against p.
func QuoteFor(p models.Product, weight, flavor string) Quote {
	weight = NormalizeWeight(p, weight)
	flavor = NormalizeFlavor(p, flavor)
	return Quote{
		SelectedWeight: weight,
		SelectedFlavor: flavor,
		Price:          ComposePrice(p, weight, flavor),
	}
}

// DefaultQuote prices the default selection of p.
func DefaultQuote(p models.Product) Quote {
	w, f := DefaultSelection(p)
	return QuoteFor(p, w, f)
}
