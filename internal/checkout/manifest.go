package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
)

var ErrEmptyCart = errors.New("cart is empty")

// ManifestLine is one variantID:quantity pair of a hosted cart permalink.
type ManifestLine struct {
	VariantID string
	Quantity  int
}

type Manifest []ManifestLine

// BuildManifest lists cart lines as hosted checkout variants, in cart order.
// Product ids already are storefront variant ids, so lines that differ only
// by local shade collapse into one variant.
func BuildManifest(c domain.Cart) (Manifest, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var m Manifest
	index := make(map[string]int, len(c.Items))
	for _, li := range c.Items {
		if i, ok := index[li.Product.ID]; ok {
			m[i].Quantity += li.Quantity
			continue
		}
		index[li.Product.ID] = len(m)
		m = append(m, ManifestLine{VariantID: li.Product.ID, Quantity: li.Quantity})
	}

	return m, nil
}

// String renders "id:qty,id:qty".
func (m Manifest) String() string {
	parts := make([]string, 0, len(m))
	for _, line := range m {
		parts = append(parts, line.VariantID+":"+strconv.Itoa(line.Quantity))
	}
	return strings.Join(parts, ",")
}

// HostedURL is the cart permalink on the hosted store, always over https.
func HostedURL(storeDomain string, m Manifest) (string, error) {
	if len(m) == 0 {
		return "", ErrEmptyCart
	}

	storeDomain = strings.TrimSpace(storeDomain)
	if storeDomain == "" {
		return "", fmt.Errorf("store domain is empty")
	}
	if !strings.Contains(storeDomain, "://") {
		storeDomain = "https://" + storeDomain
	}

	u, err := url.Parse(storeDomain)
	if err != nil {
		return "", fmt.Errorf("url.Parse: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("store domain[%s] has no host", storeDomain)
	}

	u.Scheme = "https"
	u.Path = "/cart/" + m.String()
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}
