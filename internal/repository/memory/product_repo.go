package memrepo

import (
	"context"
	"sort"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/utils"

	"github.com/goccy/go-json"
)

type productRepository struct {
	byID map[domain.ProductID]domain.Product
}

// NewProductRepository serves a fixed catalog.
func NewProductRepository(products []domain.Product) domain.ProductRepository {
	byID := make(map[domain.ProductID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &productRepository{byID: byID}
}

// GetProductByID returns nil, nil when the product does not exist.
func (r *productRepository) GetProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func salePrice(f float64) *float64 { return &f }

func variants(v map[string]string) domain.RawJSON {
	raw, _ := json.Marshal(v)
	return raw
}

// SeedCatalog is the sandbox catalog.
func SeedCatalog() []domain.Product {
	products := []domain.Product{
		{
			ID: "7", Name: "Silk Scarf", Price: 10,
			Image:    "/images/silk-scarf.webp",
			Colors:   []string{"red", "blue"},
			IsActive: true,
		},
		{
			ID: "42", Name: "Linen Shirt", Price: 25.5,
			Image:          "/images/linen-shirt.webp",
			MannequinImage: "/images/linen-shirt-mannequin.webp",
			Sizes:          []string{"S", "M", "L", "XL"},
			Colors:         []string{"#FFFFFF", "#000"},
			ColorVariants:  variants(map[string]string{"#FFFFFF": "/images/linen-shirt-white.webp", "#000": "/images/linen-shirt-black.webp"}),
			IsActive:       true,
		},
		{
			ID: "5", Name: "Cotton Panjabi", Price: 40, SalePrice: salePrice(32),
			Image:    "/images/cotton-panjabi.webp",
			Sizes:    []string{"M", "L"},
			IsActive: true,
		},
		{
			ID: "9", Name: "Jamdani Saree", Price: 120,
			Image:    "/images/jamdani-saree.webp",
			Colors:   []string{"maroon"},
			IsActive: true,
		},
		{
			ID: "13", Name: "Retired Kurta", Price: 30,
			IsActive: false,
		},
	}
	for i := range products {
		products[i].Slug = utils.GenerateSlug(products[i].Name)
	}
	return products
}
