package http

import (
	"time"

	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"golang.org/x/text/currency"
)

type shadeView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Image string `json:"image,omitempty"`
}

type productView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Price         string      `json:"price"`
	OriginalPrice string      `json:"original_price,omitempty"`
	Currency      string      `json:"currency"`
	Image         string      `json:"image"`
	Images        []string    `json:"images"`
	Description   string      `json:"description"`
	Ingredients   []string    `json:"ingredients"`
	Shades        []shadeView `json:"shades"`
	Category      string      `json:"category"`
	IsBestSeller  bool        `json:"is_best_seller"`
	IsNew         bool        `json:"is_new"`
	Stock         int         `json:"stock"`
}

type lineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Variant   string `json:"variant"`
	ShadeName string `json:"shade_name,omitempty"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type summaryView struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type cartView struct {
	Items    []lineView  `json:"items"`
	Count    int         `json:"count"`
	Total    string      `json:"total"`
	Currency string      `json:"currency"`
	Summary  summaryView `json:"summary"`
	Open     bool        `json:"open"`
}

type hostedCheckoutView struct {
	URL      string `json:"url"`
	Manifest string `json:"manifest"`
}

type confirmationView struct {
	OrderNumber string      `json:"order_number"`
	PlacedAt    time.Time   `json:"placed_at"`
	Email       string      `json:"email"`
	ShipTo      string      `json:"ship_to"`
	Items       []lineView  `json:"items"`
	Summary     summaryView `json:"summary"`
	CardLast4   string      `json:"card_last4"`
}

func toConfirmationView(c checkout.Confirmation, cur currency.Unit) confirmationView {
	cv := toCartView(domain.Cart{Items: c.Lines}, c.Summary, cur)
	return confirmationView{
		OrderNumber: c.OrderNumber,
		PlacedAt:    c.PlacedAt,
		Email:       c.Email,
		ShipTo:      c.ShipTo,
		Items:       cv.Items,
		Summary:     cv.Summary,
		CardLast4:   c.CardLast4,
	}
}

func toProductView(p domain.Product) productView {
	v := productView{
		ID:           p.ID,
		Name:         p.Name,
		Price:        domain.FormatAmount(p.Price.Amount, p.Price.Currency),
		Currency:     p.Price.Currency.String(),
		Image:        p.Image,
		Images:       p.Images,
		Description:  p.Description,
		Ingredients:  p.Ingredients,
		Shades:       make([]shadeView, 0, len(p.Shades)),
		Category:     p.Category,
		IsBestSeller: p.IsBestSeller,
		IsNew:        p.IsNew,
		Stock:        p.Stock,
	}
	if p.Discounted() {
		v.OriginalPrice = domain.FormatAmount(p.OriginalPrice.Amount, p.OriginalPrice.Currency)
	}
	for _, s := range p.Shades {
		v.Shades = append(v.Shades, shadeView(s))
	}
	return v
}

func toCartView(c domain.Cart, summary checkout.Summary, cur currency.Unit) cartView {
	v := cartView{
		Items:    make([]lineView, 0, len(c.Items)),
		Count:    c.Count(),
		Total:    domain.FormatAmount(c.Total(), cur),
		Currency: cur.String(),
		Summary: summaryView{
			Subtotal: domain.FormatAmount(summary.Subtotal, cur),
			Shipping: domain.FormatAmount(summary.Shipping, cur),
			Tax:      domain.FormatAmount(summary.Tax, cur),
			Total:    domain.FormatAmount(summary.Total, cur),
		},
	}

	for _, li := range c.Items {
		lv := lineView{
			ProductID: li.Product.ID,
			Name:      li.Product.Name,
			Variant:   li.Variant.Key().String(),
			Image:     li.Product.Image,
			Quantity:  li.Quantity,
			UnitPrice: domain.FormatAmount(li.Product.Price.Amount, cur),
			Subtotal:  domain.FormatAmount(li.Subtotal(), cur),
		}
		if s, ok := li.Variant.Shade(); ok {
			lv.ShadeName = s.Name
			if s.Image != "" {
				lv.Image = s.Image
			}
		}
		v.Items = append(v.Items, lv)
	}

	return v
}
