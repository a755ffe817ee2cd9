package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/money"
	"github.com/rl1809/shop-backoffice/internal/port"
)

var (
	ErrMissingProductName = errors.New("product name is required")
	ErrNegativePrice      = errors.New("product price cannot be negative")
)

type ProductService struct {
	repo      port.ProductRepository
	tags      port.TagCache
	tagsTTL   time.Duration
	logger    logrus.FieldLogger
	priceOpts []money.Option
	now       func() time.Time
}

func NewProductService(repo port.ProductRepository, tags port.TagCache, tagsTTL time.Duration, logger logrus.FieldLogger, priceOpts ...money.Option) *ProductService {
	return &ProductService{
		repo:      repo,
		tags:      tags,
		tagsTTL:   tagsTTL,
		logger:    logger,
		priceOpts: priceOpts,
		now:       time.Now,
	}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if products == nil {
		products = []domain.Product{}
	}
	for i := range products {
		s.decorate(&products[i])
	}
	return products, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, name string, priceCents int64, tags []string) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingProductName
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}

	now := s.now().UTC()
	product := domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		PriceCents: priceCents,
		Tags:       NormalizeTags(tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	s.invalidateTags(ctx)

	s.decorate(&product)
	return &product, nil
}

// UpdateProduct applies the non-nil fields of patch.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", productID)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrMissingProductName
		}
		product.Name = name
	}
	if patch.PriceCents != nil {
		if *patch.PriceCents < 0 {
			return nil, ErrNegativePrice
		}
		product.PriceCents = *patch.PriceCents
	}
	if patch.Tags != nil {
		product.Tags = NormalizeTags(*patch.Tags)
	}
	product.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateProduct(ctx, *product); err != nil {
		return nil, errors.Wrapf(err, "update product %s", productID)
	}
	if patch.Tags != nil {
		s.invalidateTags(ctx)
	}

	s.decorate(product)
	return product, nil
}

// ListTags serves the distinct tag set from cache, falling back to the
// database when the cache misses or is unavailable.
func (s *ProductService) ListTags(ctx context.Context) ([]string, error) {
	cached, err := s.tags.GetTags(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("tag cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	tags, err := s.repo.ListUniqueTags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list unique tags")
	}
	tags = NormalizeTags(tags)

	if err := s.tags.SetTags(ctx, tags, s.tagsTTL); err != nil {
		s.logger.WithError(err).Warn("tag cache write failed")
	}
	return tags, nil
}

func (s *ProductService) invalidateTags(ctx context.Context) {
	if err := s.tags.InvalidateTags(ctx); err != nil {
		s.logger.WithError(err).Warn("tag cache invalidation failed")
	}
}

func (s *ProductService) decorate(p *domain.Product) {
	p.PriceFormatted = money.FormatPrice(p.PriceCents, s.priceOpts...)
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// NormalizeTags trims and lower-cases tags, dropping blanks and duplicates.
// The result is sorted and never nil.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
