package transport

import (
	"net/http"

	"smartshop/internal/domain"
	"smartshop/internal/middleware"
	"smartshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssignShipperRequest represents the shipper assignment payload
type AssignShipperRequest struct {
	ShipperID string `json:"shipper_id" validate:"required,uuid"`
}

// UpdateDeliveryStatusRequest represents a delivery status change
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DeliveryHandler handles HTTP requests for delivery operations
type DeliveryHandler struct {
	deliveryService service.DeliveryService
	logger          *zap.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveryService service.DeliveryService, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all delivery routes
func (h *DeliveryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/deliveries", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(middleware.RequireAdmin(h.logger)).Post("/{orderID}/assign", h.AssignShipper)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireShipper(h.logger))
			r.Get("/mine", h.ListMine)
			r.Put("/{orderID}/status", h.UpdateStatus)
		})
	})
}

// AssignShipper handles handing an order to a shipper
func (h *DeliveryHandler) AssignShipper(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}

	var req AssignShipperRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	shipperID, err := uuid.Parse(req.ShipperID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid shipper_id")
		return
	}

	order, err := h.deliveryService.AssignShipper(r.Context(), orderID, shipperID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateStatus handles advancing a delivery along its status machine
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requester(w, r)
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}

	var req UpdateDeliveryStatusRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	order, err := h.deliveryService.UpdateStatus(r.Context(), orderID, status, userID, role)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListMine handles listing the orders assigned to the requesting shipper
func (h *DeliveryHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	orders, total, err := h.deliveryService.ListForShipper(r.Context(), userID, page, pageSize)
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
