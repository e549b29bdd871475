package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

type HTTPHandler struct {
	catalog  *service.Catalog
	ledger   *service.Ledger
	checkout *service.CheckoutService
	orders   port.OrderReader
	policy   domain.PricingPolicy
	log      logrus.FieldLogger
}

type AddItemHTTPRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateItemHTTPRequest struct {
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}

type MessageHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CheckoutHTTPResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Total   string `json:"total"`
}

// NewHTTPHandler builds the handler. orders may be nil when no order store
// is configured; the order lookup route is then not served.
func NewHTTPHandler(catalog *service.Catalog, ledger *service.Ledger, checkout *service.CheckoutService, orders port.OrderReader, policy domain.PricingPolicy, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{
		catalog:  catalog,
		ledger:   ledger,
		checkout: checkout,
		orders:   orders,
		policy:   policy,
		log:      log,
	}
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products := h.catalog.Filter(filter)
	writeJSON(w, http.StatusOK, ProductListHTTPResponse{
		Products: toProductResponses(products),
		Count:    len(products),
	})
}

func parseFilter(r *http.Request) (domain.CatalogFilter, error) {
	q := r.URL.Query()
	f := domain.CatalogFilter{
		Category:   q.Get("category"),
		SearchText: q.Get("search"),
	}

	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("minRating must be a number")
		}
		f.MinRating = rating
	}
	for _, p := range []struct {
		name string
		dst  *decimal.Decimal
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errors.New(p.name + " must be a number")
		}
		*p.dst = d
	}
	return f, nil
}

func (h *HTTPHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	shelves := h.catalog.Featured(service.DefaultFeaturedLimit)

	resp := FeaturedHTTPResponse{Shelves: make([]ShelfHTTPResponse, 0, len(shelves))}
	for _, s := range shelves {
		resp.Shelves = append(resp.Shelves, ShelfHTTPResponse{
			Category: string(s.Category),
			Products: toProductResponses(s.Products),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.catalog.Product(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, ProductDetailHTTPResponse{
		Product: toProductResponse(p),
		Related: toProductResponses(h.catalog.Related(p, service.DefaultRelatedLimit)),
	})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse(h.ledger.Snapshot()))
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	p, err := h.catalog.Product(req.ProductID)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	snap, err := h.ledger.AddLine(p, req.Quantity, req.Size, req.Color)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"

		switch {
		case errors.Is(err, service.ErrIncompleteSelection), errors.Is(err, service.ErrInvalidSelection):
			status = http.StatusUnprocessableEntity
			message = err.Error()
		case errors.Is(err, service.ErrOutOfStock):
			status = http.StatusConflict
			message = "out of stock"
		default:
			h.log.WithError(err).Error("add to cart")
		}

		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, h.cartResponse(snap))
}

// UpdateItem sets a line's quantity. Without size and color it applies to
// the first line of the product.
func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var snap domain.Snapshot
	if req.Size != "" || req.Color != "" {
		snap = h.ledger.SetKeyQuantity(domain.LineKey{ProductID: id, Size: req.Size, Color: req.Color}, req.Quantity)
	} else {
		snap = h.ledger.SetQuantity(id, req.Quantity)
	}
	writeJSON(w, http.StatusOK, h.cartResponse(snap))
}

// RemoveItem removes one variant when size or color is given in the query,
// otherwise every line of the product.
func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	size, color := r.URL.Query().Get("size"), r.URL.Query().Get("color")

	var snap domain.Snapshot
	if size != "" || color != "" {
		snap = h.ledger.RemoveKey(domain.LineKey{ProductID: id, Size: size, Color: color})
	} else {
		snap = h.ledger.RemoveLine(id)
	}
	writeJSON(w, http.StatusOK, h.cartResponse(snap))
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse(h.ledger.Clear()))
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"

		switch {
		case errors.Is(err, service.ErrInvalidCheckout):
			status = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, service.ErrEmptyCart):
			status = http.StatusConflict
			message = "cart is empty"
		case errors.Is(err, service.ErrCheckoutClosed):
			status = http.StatusServiceUnavailable
			message = "checkout unavailable"
		default:
			h.log.WithError(err).Error("place order")
		}

		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutHTTPResponse{
		Success: true,
		OrderID: order.ID,
		Status:  string(order.Status),
		Total:   money(order.Totals.Total),
	})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.WithError(err).Error("get order")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, OrderHTTPResponse{
		OrderID:   order.ID,
		Status:    string(order.Status),
		ItemCount: order.ItemCount,
		Subtotal:  money(order.Subtotal),
		Tax:       money(order.Tax),
		Shipping:  money(order.Shipping),
		Total:     money(order.Total),
		CreatedAt: order.CreatedAt,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageHTTPResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
