package app

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gaylashop/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type NewProduct struct {
	Slug          string
	Name          string
	Description   string
	Price         decimal.Decimal
	Thumbnail     *string
	VariantGroups map[string][]string
}

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)

	if name == "" || !slugPattern.MatchString(slug) || !in.Price.IsPositive() {
		return domain.Product{}, ErrInvalidInput
	}

	groups := make(map[string][]string, len(in.VariantGroups))
	for g, values := range in.VariantGroups {
		g = strings.TrimSpace(g)
		if g == "" || len(values) == 0 {
			return domain.Product{}, ErrInvalidInput
		}
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				return domain.Product{}, ErrInvalidInput
			}
			groups[g] = append(groups[g], strings.TrimSpace(v))
		}
	}

	p := domain.Product{
		Slug:          slug,
		Name:          name,
		Description:   in.Description,
		Price:         in.Price,
		Thumbnail:     in.Thumbnail,
		VariantGroups: groups,
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// Resolve finds a product by ID, falling back to its slug.
func (s *Service) Resolve(ctx context.Context, ref string) (domain.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Product{}, ErrInvalidInput
	}

	p, err := s.repo.Get(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return s.repo.GetBySlug(ctx, ref)
	}
	return p, err
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}
