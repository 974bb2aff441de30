package shopify

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	placeholderImage = "/placeholder.jpg"
	defaultCategory  = "gloss"
	// informational only, the storefront API query carries no inventory
	defaultStock = 50
)

type productNode struct {
	ID            string `json:"id"`
	Handle        string `json:"handle"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	FeaturedImage *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	Images struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	PriceRange struct {
		MinVariantPrice struct {
			Amount string `json:"amount"`
		} `json:"minVariantPrice"`
	} `json:"priceRange"`
	Tags     []string `json:"tags"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type variantNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price struct {
		Amount string `json:"amount"`
	} `json:"price"`
}

// toProduct maps a storefront product onto the catalog shape. The product id
// becomes the numeric id of the first variant, which is what the hosted
// cart permalink expects.
func toProduct(n productNode, cur currency.Unit) (domain.Product, error) {
	price, err := decimal.NewFromString(n.PriceRange.MinVariantPrice.Amount)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price[%s] is not valid: %w", n.PriceRange.MinVariantPrice.Amount, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("price[%s] is negative", price)
	}

	id := n.Handle
	if len(n.Variants.Edges) > 0 {
		if tail := gidTail(n.Variants.Edges[0].Node.ID); tail != "" {
			id = tail
		}
	}

	images := make([]string, 0, len(n.Images.Edges))
	for _, e := range n.Images.Edges {
		if e.Node.URL != "" {
			images = append(images, e.Node.URL)
		}
	}

	mainImage := placeholderImage
	switch {
	case n.FeaturedImage != nil && n.FeaturedImage.URL != "":
		mainImage = n.FeaturedImage.URL
	case len(images) > 0:
		mainImage = images[0]
	}
	if len(images) == 0 {
		images = []string{mainImage}
	}

	return domain.Product{
		ID:           id,
		Name:         n.Title,
		Price:        domain.NewMoney(price, cur),
		Image:        mainImage,
		Images:       images,
		Description:  n.Description,
		Ingredients:  []string{},
		Shades:       []domain.Shade{},
		Category:     defaultCategory,
		IsBestSeller: slices.Contains(n.Tags, "bestseller") || slices.Contains(n.Tags, "featured"),
		IsNew:        slices.Contains(n.Tags, "new"),
		Stock:        defaultStock,
	}, nil
}

// gidTail returns "123" for "gid://shopify/ProductVariant/123".
func gidTail(gid string) string {
	i := strings.LastIndexByte(gid, '/')
	return gid[i+1:]
}
