package service

import (
	"context"
	"fmt"

	"grocery-store/internal/entity"
)

// CartService manages the per-user cart. Prices are snapshotted when an item
// is added; totals are recomputed on every mutation.
type CartService struct {
	carts    CartStore
	products ProductStore
	pricing  entity.PricingConfig
}

func NewCartService(carts CartStore, products ProductStore, pricing entity.PricingConfig) *CartService {
	return &CartService{carts: carts, products: products, pricing: pricing}
}

// GetCart returns the user's cart, creating an empty one lazily on first
// access.
func (s *CartService) GetCart(ctx context.Context, userID int) (*entity.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Int("user_id", userID).Msg("Error getting cart")
		return nil, err
	}
	if cart == nil {
		cart = &entity.Cart{UserID: userID}
		return s.carts.Save(ctx, cart)
	}
	return cart, nil
}

// AddItem puts a product in the cart, snapshotting its current price. Adding
// a product already in the cart increases its quantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID, quantity int) (*entity.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("invalid quantity %d", quantity)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: id %d", entity.ErrProductNotFound, productID)
	}
	if product.Status != entity.ProductActive {
		return nil, fmt.Errorf("%w: %s", entity.ErrProductUnavailable, product.Name)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if item := cart.Item(productID); item != nil {
		item.Quantity += quantity
	} else {
		cart.Items = append(cart.Items, entity.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	cart.RecomputeTotals(s.pricing)
	return s.carts.Save(ctx, cart)
}

// UpdateItem sets an item's quantity; zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID, quantity int) (*entity.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		cart.RemoveItem(productID)
	} else {
		item := cart.Item(productID)
		if item == nil {
			return nil, fmt.Errorf("%w: id %d not in cart", entity.ErrProductNotFound, productID)
		}
		item.Quantity = quantity
	}

	cart.RecomputeTotals(s.pricing)
	return s.carts.Save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int) (*entity.Cart, error) {
	return s.UpdateItem(ctx, userID, productID, 0)
}
