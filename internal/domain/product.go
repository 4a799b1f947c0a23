package domain

import (
	"context"
	"slices"
	"strings"
)

// Product is the slice of the catalog the cart and wishlist need.
type Product struct {
	ID             ProductID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Price          float64   `json:"price"`
	SalePrice      *float64  `json:"salePrice"`
	Image          string    `json:"image"`
	MannequinImage string    `json:"mannequinImage"`
	Sizes          []string  `json:"sizes"`
	Colors         []string  `json:"colors"`
	ColorVariants  RawJSON   `json:"colorVariants"`
	IsActive       bool      `json:"isActive"`
}

// EffectivePrice is the sale price when one is set.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// HasSize reports whether size is offered. Products with no size list are one-size.
func (p *Product) HasSize(size string) bool {
	return len(p.Sizes) == 0 || slices.Contains(p.Sizes, size)
}

// HasColor reports whether color is offered. Products with no color list accept any.
func (p *Product) HasColor(color string) bool {
	return len(p.Colors) == 0 || slices.ContainsFunc(p.Colors, func(c string) bool {
		return strings.EqualFold(c, color)
	})
}

type ProductRepository interface {
	GetProductByID(ctx context.Context, id ProductID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
}
