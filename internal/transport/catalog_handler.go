package transport

import (
	"net/http"
	"strconv"
	"strings"

	"smartshop/internal/middleware"
	"smartshop/internal/repository"
	"smartshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	BrandID     string `json:"brand_id" validate:"required,uuid"`
	ImageURL    string `json:"image_url"`
	MinStock    int    `json:"min_stock" validate:"gte=0"`
}

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	ImageURL string  `json:"image_url"`
}

// BrandRequest represents the brand create/update payload
type BrandRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// SupplierRequest represents the supplier create/update payload
type SupplierRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CatalogHandler handles HTTP requests for products, categories, brands and
// suppliers
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes. Reads are public, writes are
// admin-only.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	admin := func(r chi.Router) chi.Router {
		return r.With(authMiddleware, middleware.RequireAdmin(h.logger))
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)

		admin(r).Post("/", h.CreateProduct)
		admin(r).Put("/{productID}", h.UpdateProduct)
		admin(r).Delete("/{productID}", h.DeleteProduct)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)

		admin(r).Post("/", h.CreateCategory)
		admin(r).Put("/{categoryID}", h.UpdateCategory)
		admin(r).Delete("/{categoryID}", h.DeleteCategory)
	})

	r.Route("/api/brands", func(r chi.Router) {
		r.Get("/", h.ListBrands)

		admin(r).Post("/", h.CreateBrand)
		admin(r).Put("/{brandID}", h.UpdateBrand)
		admin(r).Delete("/{brandID}", h.DeleteBrand)
	})

	r.Route("/api/suppliers", func(r chi.Router) {
		admin(r).Get("/", h.ListSuppliers)
		admin(r).Post("/", h.CreateSupplier)
		admin(r).Put("/{supplierID}", h.UpdateSupplier)
		admin(r).Delete("/{supplierID}", h.DeleteSupplier)
	})
}

func (h *CatalogHandler) parseProductRequest(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if !decodeBody(w, r, h.logger, &req) {
		return service.ProductInput{}, false
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
		return service.ProductInput{}, false
	}
	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid brand_id")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		CategoryID:  categoryID,
		BrandID:     brandID,
		ImageURL:    req.ImageURL,
		MinStock:    req.MinStock,
	}, true
}

// ListProducts handles the public product listing with filters
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := service.ProductListFilter{
		Search:   q.Get("search"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
		SortBy:   q.Get("sort_by"),
	}

	if strings.EqualFold(q.Get("sort_order"), "asc") {
		filter.SortOrder = repository.SortOrderAsc
	} else {
		filter.SortOrder = repository.SortOrderDesc
	}

	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = &categoryID
	}

	if raw := q.Get("brand_id"); raw != "" {
		brandID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid brand_id")
			return
		}
		filter.BrandID = &brandID
	}

	if raw := q.Get("min_price"); raw != "" {
		minPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid min_price")
			return
		}
		filter.MinPrice = &minPrice
	}

	if raw := q.Get("max_price"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		filter.MaxPrice = &maxPrice
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// GetProduct handles retrieving a single product with its inventory
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles product updates
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	input, ok := h.parseProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), productID, input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles product deletion
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), productID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListCategories handles listing the category tree
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) parseCategoryRequest(w http.ResponseWriter, r *http.Request) (service.CategoryInput, bool) {
	var req CategoryRequest
	if !decodeBody(w, r, h.logger, &req) {
		return service.CategoryInput{}, false
	}

	input := service.CategoryInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid parent_id")
			return service.CategoryInput{}, false
		}
		input.ParentID = &parentID
	}

	return input, true
}

// CreateCategory handles category creation
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseCategoryRequest(w, r)
	if !ok {
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles category updates
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := urlUUID(w, r, "categoryID")
	if !ok {
		return
	}

	input, ok := h.parseCategoryRequest(w, r)
	if !ok {
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), categoryID, input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory handles category deletion
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := urlUUID(w, r, "categoryID")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), categoryID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListBrands handles listing brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalogService.ListBrands(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

// CreateBrand handles brand creation
func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req BrandRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	brand, err := h.catalogService.CreateBrand(r.Context(), req.Name, req.Description)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, brand)
}

// UpdateBrand handles brand updates
func (h *CatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	brandID, ok := urlUUID(w, r, "brandID")
	if !ok {
		return
	}

	var req BrandRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	brand, err := h.catalogService.UpdateBrand(r.Context(), brandID, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

// DeleteBrand handles brand deletion
func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	brandID, ok := urlUUID(w, r, "brandID")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteBrand(r.Context(), brandID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "brand deleted"})
}

// ListSuppliers handles listing suppliers
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.catalogService.ListSuppliers(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suppliers)
}

// CreateSupplier handles supplier creation
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	supplier, err := h.catalogService.CreateSupplier(r.Context(), req.Name, req.Phone, req.Address)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, supplier)
}

// UpdateSupplier handles supplier updates
func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := urlUUID(w, r, "supplierID")
	if !ok {
		return
	}

	var req SupplierRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	supplier, err := h.catalogService.UpdateSupplier(r.Context(), supplierID, req.Name, req.Phone, req.Address)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, supplier)
}

// DeleteSupplier handles supplier deletion
func (h *CatalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := urlUUID(w, r, "supplierID")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteSupplier(r.Context(), supplierID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "supplier deleted"})
}
