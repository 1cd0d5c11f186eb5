package models

// CartKey identifies a cart line. Empty Weight/Flavor mean "no selection".
type CartKey struct {
	ProductID string `json:"productId" binding:"required"`
	Weight    string `json:"selectedWeight"`
	Flavor    string `json:"selectedFlavor"`
}

// CartLineItem is a single cart line. Product is a snapshot taken when the
// line was created, not a live reference to the catalog.
type CartLineItem struct {
	ProductID      string  `json:"productId"`
	SelectedWeight string  `json:"selectedWeight"`
	SelectedFlavor string  `json:"selectedFlavor"`
	UnitPrice      float64 `json:"unitPrice"`
	Quantity       int     `json:"quantity"`
	Product        Product `json:"product"`
}

// Key returns the merge key of the line.
func (i CartLineItem) Key() CartKey {
	return CartKey{ProductID: i.ProductID, Weight: i.SelectedWeight, Flavor: i.SelectedFlavor}
}

// LineTotal is UnitPrice * Quantity.
func (i CartLineItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// CartAggregate holds totals derived from the line list.
type CartAggregate struct {
	TotalQuantity int     `json:"totalQuantity"`
	TotalAmount   float64 `json:"totalAmount"`
}
