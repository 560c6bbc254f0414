package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	msgNotFound         = "product not found"
	msgCategoryNotFound = "category not found"
)

// Service exposes product CRUD.
type Service interface {
	List(ctx context.Context, categoryID *int64) ([]ProductDTO, error)
	Get(ctx context.Context, id int64) (*ProductDTO, error)
	Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id int64) error
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, categoryID *int64) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) (bool, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

type blobRemover interface {
	Delete(name string) error
}

// ServiceParams wires the product service. Images and Logger are optional.
type ServiceParams struct {
	Repo   repository
	Images blobRemover
	Logger *logger.Logger
}

type service struct {
	repo   repository
	images blobRemover
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, images: params.Images, logg: logg}, nil
}

func (s *service) List(ctx context.Context, categoryID *int64) ([]ProductDTO, error) {
	list, err := s.repo.List(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, id int64) (*ProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(p)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	status := enums.ProductStatusActive
	if req.Status != nil {
		parsed, err := enums.ParseProductStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}

	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: trimOptional(req.Description, 500),
		Price:       deref(req.Price),
		Stock:       deref(req.Stock),
		CategoryID:  req.CategoryID,
		Image:       trimOptional(req.Image, 255),
		Status:      status,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := FromModel(p)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = trimOptional(req.Description, 500)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.Image != nil {
		p.Image = trimOptional(req.Image, 255)
	}
	if req.Status != nil {
		status, err := enums.ParseProductStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		p.Status = status
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := FromModel(p)
	return &dto, nil
}

// Delete removes the row and then its stored image, if any. A failed blob
// removal is logged and does not fail the request.
func (s *service) Delete(ctx context.Context, id int64) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}
	if p.Image != nil && *p.Image != "" && s.images != nil {
		if err := s.images.Delete(*p.Image); err != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{"product_id": id, "file_name": *p.Image})
			s.logg.Warn(ctx, "products.delete.image_cleanup_failed", err)
		}
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return p, nil
}

func (s *service) ensureCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.repo.CategoryExists(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, msgCategoryNotFound).
			WithDetails(map[string]any{"categoriaId": *id})
	}
	return nil
}

func trimOptional(v *string, max int) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if len(out) > max {
		out = out[:max]
	}
	if out == "" {
		return nil
	}
	return &out
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
