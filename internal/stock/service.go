package stock

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"gorm.io/gorm"
)

const msgProductNotFound = "product not found"

// MaxStock is the largest value the INTEGER stock column holds.
const MaxStock = math.MaxInt32

// Service reads and adjusts product stock.
type Service interface {
	Get(ctx context.Context, productID int64) (*LevelDTO, error)
	Set(ctx context.Context, productID int64, stock int) (*MutationDTO, error)
	Add(ctx context.Context, productID int64, quantity int) (*MutationDTO, error)
	Reduce(ctx context.Context, productID int64, quantity int) (*MutationDTO, error)
}

type repository interface {
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	Mutate(ctx context.Context, id int64, fn func(p *models.Product) error) (*models.Product, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, productID int64) (*LevelDTO, error) {
	p, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return &LevelDTO{
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		Status:    enums.AvailabilityFor(p.Stock),
	}, nil
}

// Set overwrites the stock. Zero marks the product agotado; restocking from
// zero reactivates it.
func (s *service) Set(ctx context.Context, productID int64, stock int) (*MutationDTO, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if stock > MaxStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stock cannot exceed %d", MaxStock))
	}
	var previous int
	p, err := s.repo.Mutate(ctx, productID, func(p *models.Product) error {
		previous = p.Stock
		p.Stock = stock
		applyTransition(p, previous)
		return nil
	})
	if err != nil {
		return nil, mapMutateError(err)
	}
	return mutation(p, previous), nil
}

func (s *service) Add(ctx context.Context, productID int64, quantity int) (*MutationDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
	}
	var previous int
	p, err := s.repo.Mutate(ctx, productID, func(p *models.Product) error {
		previous = p.Stock
		if quantity > MaxStock-p.Stock {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stock cannot exceed %d, current stock: %d", MaxStock, p.Stock)).
				WithDetails(map[string]any{"stockActual": p.Stock, "stockMaximo": MaxStock})
		}
		p.Stock += quantity
		applyTransition(p, previous)
		return nil
	})
	if err != nil {
		return nil, mapMutateError(err)
	}
	out := mutation(p, previous)
	out.Added = &quantity
	return out, nil
}

// Reduce fails with a validation error when quantity exceeds the current stock.
func (s *service) Reduce(ctx context.Context, productID int64, quantity int) (*MutationDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
	}
	var previous int
	p, err := s.repo.Mutate(ctx, productID, func(p *models.Product) error {
		previous = p.Stock
		if p.Stock < quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("insufficient stock, current stock: %d", p.Stock)).
				WithDetails(map[string]any{"stockActual": p.Stock})
		}
		p.Stock -= quantity
		applyTransition(p, previous)
		return nil
	})
	if err != nil {
		return nil, mapMutateError(err)
	}
	out := mutation(p, previous)
	out.Reduced = &quantity
	return out, nil
}

func applyTransition(p *models.Product, previous int) {
	switch {
	case p.Stock == 0:
		p.Status = enums.ProductStatusOutOfStock
	case previous == 0 && p.Stock > 0:
		p.Status = enums.ProductStatusActive
	}
}

func mutation(p *models.Product, previous int) *MutationDTO {
	return &MutationDTO{
		ProductID: p.ID,
		Name:      p.Name,
		Previous:  previous,
		Current:   p.Stock,
		Status:    p.Status,
	}
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product stock")
}

func mapMutateError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product stock")
}
