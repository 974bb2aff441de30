// Package snapshot encodes a cart into its persisted record and back.
//
// The current record is a JSON object tagged with a schema version.
// Records written before versioning (a bare JSON array of line items)
// are migrated on read; any other version is rejected.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const CurrentVersion = 1

var (
	ErrMalformed          = errors.New("malformed cart snapshot")
	ErrUnsupportedVersion = errors.New("unsupported cart snapshot version")
)

// legacyCurrency is assumed for records that predate the currency field.
var legacyCurrency = currency.USD

type record struct {
	Version int       `json:"version"`
	Items   []lineDTO `json:"items"`
}

type lineDTO struct {
	Product  productDTO `json:"product"`
	Shade    *shadeDTO  `json:"shade"`
	Quantity int        `json:"quantity"`
}

type productDTO struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	Currency      string           `json:"currency,omitempty"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image"`
	Images        []string         `json:"images"`
	Description   string           `json:"description"`
	Ingredients   []string         `json:"ingredients"`
	Shades        []shadeDTO       `json:"shades"`
	Category      string           `json:"category"`
	IsBestSeller  bool             `json:"isBestSeller"`
	IsNew         bool             `json:"isNew"`
	Stock         int              `json:"stock"`
}

type shadeDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Image string `json:"image"`
}

func Encode(cart domain.Cart) ([]byte, error) {
	rec := record{
		Version: CurrentVersion,
		Items:   make([]lineDTO, 0, len(cart.Items)),
	}

	for _, li := range cart.Items {
		line := lineDTO{
			Product:  mapProductToDTO(li.Product),
			Quantity: li.Quantity,
		}
		if s, ok := li.Variant.Shade(); ok {
			dto := mapShadeToDTO(s)
			line.Shade = &dto
		}
		rec.Items = append(rec.Items, line)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (domain.Cart, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.Cart{}, fmt.Errorf("empty record: %w", ErrMalformed)
	}

	if data[0] == '[' {
		return decodeLegacy(data)
	}

	var envelope struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w: %w", ErrMalformed, err)
	}
	if envelope.Version == nil {
		return domain.Cart{}, fmt.Errorf("version is missing: %w", ErrMalformed)
	}
	if *envelope.Version != CurrentVersion {
		return domain.Cart{}, fmt.Errorf("version[%d]: %w", *envelope.Version, ErrUnsupportedVersion)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w: %w", ErrMalformed, err)
	}

	return mapLinesToDomain(rec.Items, false)
}

// decodeLegacy reads the unversioned array form. Such records carried a
// synthetic shade with id "default" for products without shades.
func decodeLegacy(data []byte) (domain.Cart, error) {
	var lines []lineDTO
	if err := json.Unmarshal(data, &lines); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal legacy: %w: %w", ErrMalformed, err)
	}

	return mapLinesToDomain(lines, true)
}

func mapLinesToDomain(lines []lineDTO, legacy bool) (domain.Cart, error) {
	cart := domain.Cart{Items: make([]domain.LineItem, 0, len(lines))}

	for _, line := range lines {
		if line.Product.ID == "" || line.Quantity <= 0 {
			continue
		}

		product, err := mapDTOToProduct(line.Product)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("mapDTOToProduct[%s]: %w", line.Product.ID, err)
		}

		// shades without an id resolve to no variant in ShadeVariant
		variant := domain.NoVariant()
		if line.Shade != nil && !(legacy && line.Shade.ID == domain.DefaultVariantID) {
			variant = domain.ShadeVariant(mapDTOToShade(*line.Shade))
		}

		item := domain.LineItem{Product: product, Variant: variant, Quantity: domain.ClampQuantity(line.Quantity)}
		if i := cart.Find(item.Key()); i >= 0 {
			cart.Items[i].Quantity = domain.ClampQuantity(cart.Items[i].Quantity + item.Quantity)
			continue
		}
		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

func mapProductToDTO(p domain.Product) productDTO {
	dto := productDTO{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price.Amount,
		Currency:     p.Price.Currency.String(),
		Image:        p.Image,
		Images:       p.Images,
		Description:  p.Description,
		Ingredients:  p.Ingredients,
		Category:     p.Category,
		IsBestSeller: p.IsBestSeller,
		IsNew:        p.IsNew,
		Stock:        p.Stock,
	}
	if p.OriginalPrice != nil {
		amount := p.OriginalPrice.Amount
		dto.OriginalPrice = &amount
	}
	for _, s := range p.Shades {
		dto.Shades = append(dto.Shades, mapShadeToDTO(s))
	}
	return dto
}

func mapDTOToProduct(dto productDTO) (domain.Product, error) {
	cur := legacyCurrency
	if dto.Currency != "" {
		parsed, err := currency.ParseISO(dto.Currency)
		if err != nil {
			return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w: %w", dto.Currency, ErrMalformed, err)
		}
		cur = parsed
	}

	p := domain.Product{
		ID:           dto.ID,
		Name:         dto.Name,
		Price:        domain.NewMoney(dto.Price, cur),
		Image:        dto.Image,
		Images:       dto.Images,
		Description:  dto.Description,
		Ingredients:  dto.Ingredients,
		Category:     dto.Category,
		IsBestSeller: dto.IsBestSeller,
		IsNew:        dto.IsNew,
		Stock:        dto.Stock,
	}
	if dto.OriginalPrice != nil {
		original := domain.NewMoney(*dto.OriginalPrice, cur)
		p.OriginalPrice = &original
	}
	for _, s := range dto.Shades {
		p.Shades = append(p.Shades, mapDTOToShade(s))
	}
	return p, nil
}

func mapShadeToDTO(s domain.Shade) shadeDTO {
	return shadeDTO{ID: s.ID, Name: s.Name, Color: s.Color, Image: s.Image}
}

func mapDTOToShade(dto shadeDTO) domain.Shade {
	return domain.Shade{ID: dto.ID, Name: dto.Name, Color: dto.Color, Image: dto.Image}
}
