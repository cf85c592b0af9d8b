package transport

import (
	"net/http"

	"smartshop/internal/domain"
	"smartshop/internal/middleware"
	"smartshop/internal/repository"
	"smartshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLineRequest is one requested product in a new order
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest represents the order placement payload
type CreateOrderRequest struct {
	Lines           []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	ContactPhone    string             `json:"contact_phone" validate:"required"`
	PaymentMethod   string             `json:"payment_method" validate:"required"`
	Notes           string             `json:"notes"`
}

// AdminUpdateOrderRequest represents an admin order amendment
type AdminUpdateOrderRequest struct {
	Status    *string `json:"status,omitempty"`
	ShipperID *string `json:"shipper_id,omitempty" validate:"omitempty,uuid"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Get("/{orderID}", h.Get)
		r.Post("/{orderID}/cancel", h.Cancel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Get("/", h.List)
			r.Put("/{orderID}", h.AdminUpdate)
		})
	})
}

// Create handles order placement
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	input := service.CreateOrderInput{
		CustomerID:      userID,
		ShippingAddress: req.ShippingAddress,
		ContactPhone:    req.ContactPhone,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		input.Lines = append(input.Lines, service.OrderLineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	order, err := h.orderService.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// Cancel handles order cancellation by the owner or an admin
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requester(w, r)
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(r.Context(), orderID, userID, role)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Get handles retrieving a single order
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requester(w, r)
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), orderID, userID, role)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListMine handles listing the requesting customer's orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	orders, total, err := h.orderService.ListMine(r.Context(), userID, page, pageSize)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// List handles the admin order listing
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			handleServiceError(w, h.logger, err)
			return
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		filter.CustomerID = &customerID
	}

	orders, total, err := h.orderService.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    orders,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// AdminUpdate handles admin amendments to an order's status and shipper
func (h *OrderHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}

	var req AdminUpdateOrderRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	update := service.AdminOrderUpdate{}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			handleServiceError(w, h.logger, err)
			return
		}
		update.Status = &status
	}
	if req.ShipperID != nil {
		shipperID, err := uuid.Parse(*req.ShipperID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid shipper_id")
			return
		}
		update.ShipperID = &shipperID
	}

	order, err := h.orderService.AdminUpdate(r.Context(), orderID, update)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
