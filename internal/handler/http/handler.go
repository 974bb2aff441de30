package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

type Options struct {
	PageSize       int
	Currency       currency.Unit
	Policy         checkout.Policy
	StoreDomain    string
	HostedCheckout bool
}

// Handler serves the catalog, the cart and the checkout hand-off.
type Handler struct {
	store    *cart.Store
	catalog  port.ProductSource
	opts     Options
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(store *cart.Store, catalog port.ProductSource, opts Options, logger *slog.Logger) *Handler {
	if opts.PageSize < 1 {
		opts.PageSize = 25
	}
	if opts.Currency == (currency.Unit{}) {
		opts.Currency = currency.USD
	}

	return &Handler{
		store:    store,
		catalog:  catalog,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	ShadeID   string `json:"shade_id"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=100"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=100"`
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), h.opts.PageSize)
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "catalog unavailable",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "products could not be loaded, try again")
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}

	writeJSON(w, http.StatusOK, views)
}

// GetCart handles GET /cart.
func (h *Handler) GetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

// AddItem handles POST /cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, found, err := h.findProduct(r, req.ProductID)
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "catalog unavailable",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "product could not be loaded, try again")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "product not found")
		return
	}

	var opts []cart.AddOption
	switch variant := domain.ParseVariantKey(req.ShadeID); {
	case req.ShadeID == "":
	case !variant.HasShade:
		opts = append(opts, cart.WithoutShade())
	default:
		shade, ok := product.Shade(variant.ShadeID)
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "unknown shade for product")
			return
		}
		opts = append(opts, cart.WithShade(shade))
	}
	if req.Quantity > 0 {
		opts = append(opts, cart.WithQuantity(req.Quantity))
	}

	h.store.AddItem(r.Context(), product, opts...)

	v := h.cartView()
	if ev, ok := h.store.LastEvent(); ok && ev.Kind == cart.EventItemAdded && ev.Key.ProductID == product.ID {
		v.Open = true
	}
	writeJSON(w, http.StatusOK, v)
}

// UpdateQuantity handles PATCH /cart/items/{productID}/{variant}.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	productID := chi.URLParam(r, "productID")
	variant := domain.ParseVariantKey(chi.URLParam(r, "variant"))

	h.store.UpdateQuantity(r.Context(), productID, variant, *req.Quantity)

	writeJSON(w, http.StatusOK, h.cartView())
}

// RemoveItem handles DELETE /cart/items/{productID}/{variant}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	variant := domain.ParseVariantKey(chi.URLParam(r, "variant"))

	h.store.RemoveItem(r.Context(), productID, variant)

	writeJSON(w, http.StatusOK, h.cartView())
}

// ClearCart handles DELETE /cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())

	writeJSON(w, http.StatusOK, h.cartView())
}

// HostedCheckout handles POST /checkout/hosted.
func (h *Handler) HostedCheckout(w http.ResponseWriter, _ *http.Request) {
	if !h.opts.HostedCheckout {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "hosted checkout is disabled")
		return
	}

	m, err := checkout.BuildManifest(h.store.Cart())
	if errors.Is(err, checkout.ErrEmptyCart) {
		writeError(w, http.StatusConflict, "EMPTY_CART", "cart is empty")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
		return
	}

	u, err := checkout.HostedURL(h.opts.StoreDomain, m)
	if err != nil {
		h.logger.Error("hosted checkout url", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "CHECKOUT_UNAVAILABLE", "hosted checkout is not configured")
		return
	}

	writeJSON(w, http.StatusOK, hostedCheckoutView{URL: u, Manifest: m.String()})
}

type placeOrderRequest struct {
	Shipping checkout.ShippingInfo `json:"shipping"`
	Payment  checkout.PaymentInfo  `json:"payment"`
}

// PlaceOrder handles POST /checkout/orders by walking the checkout form in
// one request. No payment is taken.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	form, err := checkout.NewForm(h.store, h.opts.Policy)
	if err != nil {
		writeError(w, http.StatusConflict, "EMPTY_CART", "cart is empty")
		return
	}

	steps := []func() error{
		func() error { return form.SetShipping(req.Shipping) },
		form.Next,
		func() error { return form.SetPayment(req.Payment) },
		form.Next,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			h.writeCheckoutError(w, err)
			return
		}
	}

	conf, err := form.Complete(r.Context())
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	logger.FromContext(r.Context()).InfoContext(r.Context(), "order placed",
		slog.String("order_number", conf.OrderNumber),
		slog.Int("lines", len(conf.Lines)),
	)

	writeJSON(w, http.StatusCreated, toConfirmationView(conf, h.opts.Currency))
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "checkout details are invalid",
			Fields:  verr.Fields(),
		}})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusConflict, "EMPTY_CART", "cart is empty")
	default:
		h.logger.Error("checkout failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	}
}

func (h *Handler) cartView() cartView {
	c := h.store.Cart()
	return toCartView(c, h.opts.Policy.Summarize(c.Total()), h.opts.Currency)
}

func (h *Handler) findProduct(r *http.Request, id string) (domain.Product, bool, error) {
	products, err := h.catalog.ListProducts(r.Context(), h.opts.PageSize)
	if err != nil {
		return domain.Product{}, false, err
	}

	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		body := errorBody{Error: errorResponse{Code: "VALIDATION_ERROR", Message: "request validation failed"}}

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			body.Error.Fields = make(map[string]string, len(verrs))
			for _, fe := range verrs {
				body.Error.Fields[fe.Field()] = "failed on '" + fe.Tag() + "'"
			}
		}

		writeJSON(w, http.StatusBadRequest, body)
		return false
	}

	return true
}
