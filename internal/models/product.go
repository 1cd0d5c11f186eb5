package models

import "encoding/json"

// VariantPrice is the price pair attached to a variant or to a legacy product.
type VariantPrice struct {
	OriginalPrice   float64 `json:"originalPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
}

// Variant is a free-text labelled option of a cake. Whether it is a weight
// or a flavor is inferred from the label, never declared.
type Variant struct {
	Label string        `json:"label"`
	Price *VariantPrice `json:"price,omitempty"`
}

// Product represents a cake as served by the bakery API.
type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Image       string        `json:"image"`
	Discount    float64       `json:"discount"`
	Price       *VariantPrice `json:"price,omitempty"` // legacy products without variants
	Variants    []Variant     `json:"variants"`
}

// UnmarshalJSON accepts the product id either as "id" or as "_id".
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product(raw.alias)
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	return nil
}

// CakeInput is the admin payload for creating or updating a cake upstream.
type CakeInput struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Category    string        `json:"category" binding:"required"`
	Image       string        `json:"image"`
	Discount    float64       `json:"discount" binding:"gte=0,lte=100"`
	Price       *VariantPrice `json:"price,omitempty"`
	Variants    []Variant     `json:"variants" binding:"dive"`
}
