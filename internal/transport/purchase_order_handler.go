package transport

import (
	"net/http"

	"smartshop/internal/middleware"
	"smartshop/internal/repository"
	"smartshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderLineRequest is one requested product in a purchase order
type PurchaseOrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	UnitCost  int64  `json:"unit_cost" validate:"gte=0"`
}

// PurchaseOrderRequest represents a submitted purchase order. Any total in
// the payload is ignored; the server computes it from the lines.
type PurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required,uuid"`
	Status     string                     `json:"status" validate:"omitempty,oneof=pending received cancelled"`
	Lines      []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseOrderHandler handles HTTP requests for purchase order operations
type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
	logger    *zap.Logger
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(poService service.PurchaseOrderService, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		poService: poService,
		logger:    logger,
	}
}

// RegisterRoutes registers all purchase order routes. The whole surface is
// admin-only.
func (h *PurchaseOrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/purchase-orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{purchaseOrderID}", h.Get)
		r.Put("/{purchaseOrderID}", h.Update)
		r.Delete("/{purchaseOrderID}", h.Delete)
	})
}

func (h *PurchaseOrderHandler) parseRequest(w http.ResponseWriter, r *http.Request) (service.PurchaseOrderInput, bool) {
	var req PurchaseOrderRequest
	if !decodeBody(w, r, h.logger, &req) {
		return service.PurchaseOrderInput{}, false
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid supplier_id")
		return service.PurchaseOrderInput{}, false
	}

	input := service.PurchaseOrderInput{
		SupplierID: supplierID,
		Status:     req.Status,
	}
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
			return service.PurchaseOrderInput{}, false
		}
		input.Lines = append(input.Lines, service.PurchaseOrderLineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
		})
	}

	return input, true
}

// Create handles recording a new purchase order
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	po, err := h.poService.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, po)
}

// Update handles replacing a purchase order's header and lines
func (h *PurchaseOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	poID, ok := urlUUID(w, r, "purchaseOrderID")
	if !ok {
		return
	}

	input, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	po, err := h.poService.Update(r.Context(), poID, input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, po)
}

// Delete handles removing a purchase order
func (h *PurchaseOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	poID, ok := urlUUID(w, r, "purchaseOrderID")
	if !ok {
		return
	}

	if err := h.poService.Delete(r.Context(), poID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "purchase order deleted"})
}

// Get handles retrieving a single purchase order
func (h *PurchaseOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	poID, ok := urlUUID(w, r, "purchaseOrderID")
	if !ok {
		return
	}

	po, err := h.poService.Get(r.Context(), poID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, po)
}

// List handles listing purchase orders
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.PurchaseOrderFilter{
		Status:   r.URL.Query().Get("status"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	if raw := r.URL.Query().Get("supplier_id"); raw != "" {
		supplierID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid supplier_id")
			return
		}
		filter.SupplierID = &supplierID
	}

	pos, total, err := h.poService.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    pos,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}
