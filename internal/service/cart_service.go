package service

import (
	"context"
	"fmt"

	"smartshop/internal/domain"
	"smartshop/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for shopping cart business logic. The
// cart never reserves stock; availability is only checked at order placement.
type CartService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

// List retrieves a user's cart.
func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	return s.cartRepo.ListByUser(ctx, userID)
}

// Add puts a product in the cart, merging with an existing entry.
func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.cartRepo.Add(ctx, userID, productID, quantity)
}

// Remove takes a product out of the cart.
func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.cartRepo.Remove(ctx, userID, productID)
}
