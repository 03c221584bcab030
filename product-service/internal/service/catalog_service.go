package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/events"
	"github.com/RajDalvi08/CamousKart/product-service/internal/cache"
	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/product-service/internal/images"
	"github.com/RajDalvi08/CamousKart/product-service/internal/publisher"
	"github.com/RajDalvi08/CamousKart/product-service/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CreateProductInput is a listing submission as received from the sell form.
type CreateProductInput struct {
	Title       string `validate:"required,max=200"`
	Category    string `validate:"required"`
	Description string `validate:"max=5000"`
	Price       string `validate:"required"`
	Condition   string `validate:"required,oneof=new used"`
	Location    string `validate:"required,max=200"`
	ContactInfo string `validate:"max=200"`
	Images      []*images.Upload
}

type CatalogService struct {
	repo      repository.ProductRepository
	cache     cache.ListingCache
	images    images.Store
	publisher publisher.Publisher
	validate  *validator.Validate
	logger    *zap.Logger
	sfg       singleflight.Group
	now       func() time.Time

	// generations advance on every invalidation; a load that started under
	// an older generation must not repopulate the cache.
	genMu       sync.Mutex
	generations map[string]uint64
}

func NewCatalogService(
	repo repository.ProductRepository,
	listingCache cache.ListingCache,
	imageStore images.Store,
	pub publisher.Publisher,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		repo:      repo,
		cache:     listingCache,
		images:    imageStore,
		publisher: pub,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		now:       time.Now,

		generations: make(map[string]uint64),
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}

	category, ok := domain.CanonicalCategory(in.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil || price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	locations, err := images.SaveAll(ctx, s.images, in.Images)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Category:    category,
		Description: in.Description,
		Price:       price,
		Condition:   domain.Condition(in.Condition),
		Location:    in.Location,
		ContactInfo: in.ContactInfo,
		Images:      locations,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		s.discardImages(ctx, in.Images)
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.invalidate(domain.CategoryKey(category))
	s.publish(ctx, events.CatalogChanged{
		Type:       events.TypeProductPublished,
		ProductID:  p.ID,
		Category:   category,
		OccurredAt: now,
	})

	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.cached(ctx, cache.AllProducts, func() ([]*domain.Product, error) {
		return s.repo.GetAllProducts(ctx)
	})
}

// ProductsByCategory matches the raw path segment leniently: any casing,
// spacing or a trailing plural resolves to the same listing. Unknown
// categories yield an empty list.
func (s *CatalogService) ProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	key := domain.CategoryKey(category)
	if key == "" {
		return make([]*domain.Product, 0), nil
	}
	return s.cached(ctx, key, func() ([]*domain.Product, error) {
		return s.repo.GetProductsByCategory(ctx, key)
	})
}

func (s *CatalogService) PurgeCategory(ctx context.Context, category string) (int64, error) {
	key := domain.CategoryKey(category)
	if key == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	n, err := s.repo.DeleteCategory(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to purge category: %w", err)
	}

	s.invalidate(key)
	s.logger.Info("category purged", zap.String("category", category), zap.Int64("deleted", n))

	label, ok := domain.CanonicalCategory(category)
	if !ok {
		label = category
	}
	s.publish(ctx, events.CatalogChanged{
		Type:       events.TypeCategoryPurged,
		Category:   label,
		OccurredAt: s.now().UTC(),
	})
	return n, nil
}

func (s *CatalogService) cached(ctx context.Context, key string, load func() ([]*domain.Product, error)) ([]*domain.Product, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		gen := s.generation(key)
		products, err := s.cache.Get(ctx, key)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("listing cache get failed", zap.String("key", key), zap.Error(err))
		}

		products, err = load()
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}

		if s.generation(key) != gen {
			return products, nil
		}
		if err := s.cache.Set(ctx, key, products); err != nil {
			s.logger.Warn("listing cache set failed", zap.String("key", key), zap.Error(err))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

// discardImages removes the photos of a listing that was never stored.
func (s *CatalogService) discardImages(ctx context.Context, uploads []*images.Upload) {
	if len(uploads) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := images.DeleteAll(ctx, s.images, uploads); err != nil {
		s.logger.Warn("orphaned listing images", zap.Int("count", len(uploads)), zap.Error(err))
	}
}

func (s *CatalogService) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[key]
}

func (s *CatalogService) invalidate(categoryKey string) {
	s.genMu.Lock()
	for _, key := range []string{categoryKey, cache.AllProducts} {
		s.generations[key]++
		s.sfg.Forget(key)
	}
	s.genMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx, categoryKey, cache.AllProducts); err != nil {
		s.logger.Warn("listing cache invalidate failed", zap.String("key", categoryKey), zap.Error(err))
	}
}

// publish is best effort: the product is already stored and clients also
// refetch on their own.
func (s *CatalogService) publish(ctx context.Context, evt events.CatalogChanged) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("catalog event not published", zap.String("type", evt.Type), zap.Error(err))
	}
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe.Field())] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

var fieldNames = map[string]string{
	"Title":       "title",
	"Category":    "category",
	"Description": "description",
	"Price":       "price",
	"Condition":   "condition",
	"Location":    "location",
	"ContactInfo": "contactInfo",
}

func fieldName(f string) string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return f
}
