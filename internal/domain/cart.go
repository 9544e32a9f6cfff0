package domain

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

// VariantKey identifies a cart line. Items sharing a key are merged.
type VariantKey struct {
	ProductID string
	Color     string
	Size      string
}

func (i CartItem) Key() VariantKey {
	return VariantKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

type WishlistItem struct {
	ProductID string `json:"product_id"`
}
