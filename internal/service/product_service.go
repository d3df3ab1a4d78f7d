package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"grocery-store/internal/entity"
)

const productCacheTTL = 1 * time.Minute

// ProductService exposes the catalog with a read-through Redis cache on
// single-product lookups. Writes invalidate the cached entry.
type ProductService struct {
	products ProductStore
	rdb      *redis.Client
}

func NewProductService(products ProductStore, rdb *redis.Client) *ProductService {
	return &ProductService{products: products, rdb: rdb}
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	if cached := s.readCache(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		logger.Error().Err(err).Int("product_id", id).Msg("Error getting product")
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: id %d", entity.ErrProductNotFound, id)
	}

	s.writeCache(ctx, product)
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return s.products.List(ctx)
}

func (s *ProductService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if product.Price < 0 {
		return nil, fmt.Errorf("negative price %.2f", product.Price)
	}
	if product.Stock < 0 {
		return nil, fmt.Errorf("negative stock %d", product.Stock)
	}
	if product.Status == "" {
		product.Status = entity.ProductActive
	}
	return s.products.Create(ctx, product)
}

func (s *ProductService) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if product.Price < 0 {
		return nil, fmt.Errorf("negative price %.2f", product.Price)
	}

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		logger.Error().Err(err).Int("product_id", product.ID).Msg("Error updating product")
		return nil, err
	}

	s.dropCache(ctx, product.ID)
	return updated, nil
}

// GetStock bypasses the cache: stock moves with every order and a stale
// value here is worse than the extra query.
func (s *ProductService) GetStock(ctx context.Context, id int) (int, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, fmt.Errorf("%w: id %d", entity.ErrProductNotFound, id)
	}
	return product.Stock, nil
}

// PreWarmCache loads the whole catalog into the cache, used at startup.
func (s *ProductService) PreWarmCache(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	products, err := s.products.List(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing products for cache warmup")
		return err
	}

	for _, product := range products {
		s.writeCache(ctx, product)
	}
	return nil
}

func (s *ProductService) readCache(ctx context.Context, id int) *entity.Product {
	if s.rdb == nil {
		return nil
	}

	raw, err := s.rdb.Get(ctx, productCacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Int("product_id", id).Msg("Error reading product cache")
		}
		return nil
	}

	var product entity.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		logger.Error().Err(err).Int("product_id", id).Msg("Error unmarshalling cached product")
		return nil
	}
	return &product
}

func (s *ProductService) writeCache(ctx context.Context, product *entity.Product) {
	if s.rdb == nil {
		return
	}

	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, productCacheKey(product.ID), raw, productCacheTTL).Err(); err != nil {
		logger.Error().Err(err).Int("product_id", product.ID).Msg("Error caching product")
	}
}

func (s *ProductService) dropCache(ctx context.Context, id int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, productCacheKey(id)).Err(); err != nil {
		logger.Error().Err(err).Int("product_id", id).Msg("Error invalidating product cache")
	}
}

func productCacheKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}
