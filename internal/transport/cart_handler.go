package transport

import (
	"net/http"

	"smartshop/internal/middleware"
	"smartshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{productID}", h.Remove)
	})
}

// List handles listing the requesting user's cart
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(w, r)
	if !ok {
		return
	}

	items, err := h.cartService.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Add handles putting a product into the cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	if err := h.cartService.Add(r.Context(), userID, productID, req.Quantity); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "added to cart"})
}

// Remove handles taking a product out of the cart
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(w, r)
	if !ok {
		return
	}
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.cartService.Remove(r.Context(), userID, productID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "removed from cart"})
}
