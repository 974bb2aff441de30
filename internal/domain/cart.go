package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultVariantID is the external spelling of "no variant selected".
const DefaultVariantID = "default"

// MaxLineQuantity is the largest quantity a single line can hold.
const MaxLineQuantity = 100

// ClampQuantity caps quantity at MaxLineQuantity.
func ClampQuantity(quantity int) int {
	return min(quantity, MaxLineQuantity)
}

// Variant is either a concrete shade or no variant at all.
type Variant struct {
	shade Shade
	set   bool
}

func NoVariant() Variant {
	return Variant{}
}

// ShadeVariant selects s. A shade without an id is no variant.
func ShadeVariant(s Shade) Variant {
	if s.ID == "" {
		return NoVariant()
	}
	return Variant{shade: s, set: true}
}

func (v Variant) Shade() (Shade, bool) {
	return v.shade, v.set
}

func (v Variant) Key() VariantKey {
	if !v.set {
		return VariantKey{}
	}
	return VariantKey{ShadeID: v.shade.ID, HasShade: true}
}

// VariantKey is the comparable identity of a Variant.
type VariantKey struct {
	ShadeID  string
	HasShade bool
}

func ShadeKey(shadeID string) VariantKey {
	return VariantKey{ShadeID: shadeID, HasShade: true}
}

// ParseVariantKey maps the external form back to a key: "" and "default" mean no variant.
func ParseVariantKey(s string) VariantKey {
	if s == "" || s == DefaultVariantID {
		return VariantKey{}
	}
	return ShadeKey(s)
}

func (k VariantKey) String() string {
	if !k.HasShade {
		return DefaultVariantID
	}
	return k.ShadeID
}

type LineKey struct {
	ProductID string
	Variant   VariantKey
}

type LineItem struct {
	Product  Product
	Variant  Variant
	Quantity int
}

func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.Product.ID, Variant: li.Variant.Key()}
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(li.Quantity).Amount
}

// Cart is an ordered list of line items with unique keys.
type Cart struct {
	Items []LineItem
}

// Find returns the index of the line with the given key, or -1.
func (c Cart) Find(key LineKey) int {
	if key.ProductID == "" {
		return -1
	}
	return slices.IndexFunc(c.Items, func(li LineItem) bool {
		return li.Key() == key
	})
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

func (c Cart) Count() int {
	var count int
	for _, li := range c.Items {
		count += li.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone copies the line slice so callers cannot mutate the original.
func (c Cart) Clone() Cart {
	return Cart{Items: slices.Clone(c.Items)}
}
