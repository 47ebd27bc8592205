package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/cache"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
)

// ErrProductNotFound is returned by Find for an id not on the menu.
var ErrProductNotFound = errors.New("catalog: product not found")

const catalogKey = "fastbite:catalog:products"

// CatalogService reads the menu through a short-lived cache and performs the
// admin product writes, invalidating the cache after each one.
type CatalogService struct {
	api   client.Backend
	cache cache.Cache
	ttl   time.Duration
}

// NewCatalogService builds the service. A nil cache or ttl <= 0 disables caching.
func NewCatalogService(api client.Backend, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{api: api, cache: c, ttl: ttl}
}

func (s *CatalogService) caching() bool { return s.cache != nil && s.ttl > 0 }

// Products returns the full menu.
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	if s.caching() {
		var cached []models.Product
		err := s.cache.Get(ctx, catalogKey, &cached)
		if err == nil {
			metrics.CacheHit(s.cache.Driver())
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.WithCtx(ctx).Warn("catalog cache read failed", "error", err)
		}
		metrics.CacheMiss(s.cache.Driver())
	}

	products, err := s.api.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.Set(ctx, catalogKey, products, s.ttl); err != nil {
			logger.WithCtx(ctx).Warn("catalog cache write failed", "error", err)
		}
	}
	return products, nil
}

// ByCategory filters the menu. "" and "all" mean every category; an unknown
// name is treated the same way and reported back as "all".
func (s *CatalogService) ByCategory(ctx context.Context, name string) ([]models.Product, string, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, "all", err
	}
	c, ok := models.ParseCategory(name)
	if !ok {
		return products, "all", nil
	}
	return models.FilterByCategory(products, c), string(c), nil
}

// Find looks a product up by id.
func (s *CatalogService) Find(ctx context.Context, id string) (models.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// Warm reloads the menu from the backend into the cache so visitors rarely
// pay for a miss. A no-op when caching is off.
func (s *CatalogService) Warm(ctx context.Context) error {
	if !s.caching() {
		return nil
	}
	products, err := s.api.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("catalog warm: %w", err)
	}
	return s.cache.Set(ctx, catalogKey, products, s.ttl)
}

// Invalidate drops the cached menu.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog cache invalidate failed", "error", err)
	}
}

// SaveProduct creates p when it has no id, otherwise updates it. Empty image
// and category fall back to the defaults.
func (s *CatalogService) SaveProduct(ctx context.Context, token string, p models.Product) (models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if strings.TrimSpace(p.Image) == "" {
		p.Image = models.DefaultProductImage
	}
	if _, ok := models.ParseCategory(string(p.Category)); !ok {
		p.Category = models.CategoryBurger
	}

	api := s.api.WithToken(token)
	defer s.Invalidate(ctx)

	if p.ID == "" {
		return api.AddProduct(ctx, models.ProductInput{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			Image:       p.Image,
		})
	}
	if err := api.UpdateProduct(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, token, id string) error {
	defer s.Invalidate(ctx)
	return s.api.WithToken(token).DeleteProduct(ctx, id)
}
