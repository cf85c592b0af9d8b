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

// StockTransactionRequest represents a submitted ledger entry. Quantity is
// the absolute target level for adjustments, a positive magnitude otherwise.
type StockTransactionRequest struct {
	ProductID  string  `json:"product_id" validate:"required,uuid"`
	Type       string  `json:"type" validate:"required"`
	Quantity   int     `json:"quantity"`
	SupplierID *string `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	Note       string  `json:"note"`
}

// MinStockRequest represents a reorder-threshold change
type MinStockRequest struct {
	MinStock int `json:"min_stock" validate:"gte=0"`
}

// InventoryHandler handles HTTP requests for the stock ledger
type InventoryHandler struct {
	stockService service.StockService
	logger       *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService service.StockService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// RegisterRoutes registers all inventory routes. The whole surface is
// admin-only.
func (h *InventoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))

		r.Post("/transactions", h.RecordTransaction)
		r.Put("/transactions/{transactionID}", h.UpdateTransaction)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/products/{productID}/history", h.ProductHistory)
		r.Put("/products/{productID}/min-stock", h.SetMinStock)
		r.Get("/low-stock", h.LowStock)
	})
}

func (h *InventoryHandler) parseTransactionRequest(w http.ResponseWriter, r *http.Request) (service.TransactionInput, bool) {
	var req StockTransactionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return service.TransactionInput{}, false
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return service.TransactionInput{}, false
	}

	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return service.TransactionInput{}, false
	}

	input := service.TransactionInput{
		ProductID: productID,
		Type:      txType,
		Quantity:  req.Quantity,
		Note:      req.Note,
	}

	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid supplier_id")
			return service.TransactionInput{}, false
		}
		input.SupplierID = &supplierID
	}

	return input, true
}

// RecordTransaction handles recording a new stock ledger entry
func (h *InventoryHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseTransactionRequest(w, r)
	if !ok {
		return
	}

	txn, err := h.stockService.RecordTransaction(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, txn)
}

// UpdateTransaction handles correcting an existing ledger entry
func (h *InventoryHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := urlUUID(w, r, "transactionID")
	if !ok {
		return
	}

	input, ok := h.parseTransactionRequest(w, r)
	if !ok {
		return
	}

	txn, err := h.stockService.UpdateTransaction(r.Context(), transactionID, input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, txn)
}

// ListTransactions handles listing ledger entries
func (h *InventoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := repository.TransactionFilter{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	if raw := r.URL.Query().Get("product_id"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		filter.ProductID = &productID
	}

	if raw := r.URL.Query().Get("type"); raw != "" {
		txType, err := domain.ParseTransactionType(raw)
		if err != nil {
			handleServiceError(w, h.logger, err)
			return
		}
		filter.Type = &txType
	}

	transactions, total, err := h.stockService.ListTransactions(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    transactions,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// ProductHistory handles listing the full ledger for one product
func (h *InventoryHandler) ProductHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	transactions, total, err := h.stockService.ProductHistory(r.Context(), productID, page, pageSize)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    transactions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// SetMinStock handles changing a product's reorder threshold
func (h *InventoryHandler) SetMinStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	var req MinStockRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	if err := h.stockService.SetMinStock(r.Context(), productID, req.MinStock); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "min stock updated"})
}

// LowStock handles listing products at or below their reorder threshold
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.stockService.LowStock(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}
