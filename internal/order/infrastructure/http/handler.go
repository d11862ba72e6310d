package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/gostore/orderflow/internal/order/application"
	"github.com/gostore/orderflow/internal/order/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	idem    *IdempotencyStore
	tracer  trace.Tracer
}

// NewHandler builds the order HTTP surface. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewHandler(log *slog.Logger, service *application.Service, idem *IdempotencyStore) *Handler {
	return &Handler{
		log:     log,
		service: service,
		idem:    idem,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/customers", h.createCustomer)
	r.Post("/products", h.createProduct)
	r.With(RequireNewKey(h.log, h.idem)).Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	return r
}

type createCustomerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type customerResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type createProductReq struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

type productResp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

type createOrderReq struct {
	CustomerID string         `json:"customer_id"`
	Products   []orderLineReq `json:"products"`
}

type orderLineReq struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type orderResp struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Lines      []lineResp `json:"products"`
	TotalCents int64      `json:"total_cents"`
	CreatedAt  time.Time  `json:"created_at"`
}

type lineResp struct {
	ProductID  string `json:"product_id"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCustomer")
	defer span.End()

	var req createCustomerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c, err := h.service.RegisterCustomer(ctx, req.Name, req.Email)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerResp{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	p, err := h.service.RegisterProduct(ctx, req.Name, req.PriceCents, req.Quantity)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, productResp{
		ID: p.ID, Name: p.Name, PriceCents: p.PriceCents, Quantity: p.Quantity, CreatedAt: p.CreatedAt,
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	lines := make([]domain.OrderLineRequest, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, domain.OrderLineRequest{ProductID: p.ID, Quantity: p.Quantity})
	}

	order, err := h.service.CreateOrder(ctx, req.CustomerID, lines)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResp(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	order, err := h.service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(order))
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.ErrorContext(ctx, "request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toOrderResp(o domain.Order) orderResp {
	resp := orderResp{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		Lines:      make([]lineResp, 0, len(o.Lines)),
	}
	for _, line := range o.Lines {
		resp.Lines = append(resp.Lines, lineResp{
			ProductID:  line.ProductID,
			PriceCents: line.PriceCents,
			Quantity:   line.Quantity,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
