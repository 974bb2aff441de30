package domain

// Product is a sellable catalog item. Products are read-only once loaded.
type Product struct {
	ID            string
	Name          string
	Price         Money
	OriginalPrice *Money
	Image         string
	Images        []string
	Description   string
	Ingredients   []string
	Shades        []Shade
	Category      string
	IsBestSeller  bool
	IsNew         bool
	Stock         int
}

type Shade struct {
	ID    string
	Name  string
	Color string
	Image string
}

// DefaultVariant is the first declared shade, or no variant when the product has none.
func (p Product) DefaultVariant() Variant {
	if len(p.Shades) > 0 {
		return ShadeVariant(p.Shades[0])
	}
	return NoVariant()
}

func (p Product) Shade(id string) (Shade, bool) {
	for _, s := range p.Shades {
		if s.ID == id {
			return s, true
		}
	}
	return Shade{}, false
}

func (p Product) Discounted() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.Amount.GreaterThan(p.Price.Amount)
}
