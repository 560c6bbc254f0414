package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kkarhua/fullrest-backend/pkg/db"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	msgNotFound  = "category not found"
	msgNameTaken = "category name already exists"
)

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id int64) (*CategoryDTO, error)
	Create(ctx context.Context, req CategoryRequest) (*CategoryDTO, error)
	Update(ctx context.Context, id int64, req CategoryRequest) (*CategoryDTO, error)
	Delete(ctx context.Context, id int64) error
}

type repository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Save(ctx context.Context, c *models.Category) error
	CountProducts(ctx context.Context, id int64) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*CategoryDTO, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(c)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, req CategoryRequest) (*CategoryDTO, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	c := &models.Category{Name: name}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapWriteError(err, "create category")
	}
	dto := FromModel(c)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, req CategoryRequest) (*CategoryDTO, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, c.ID); err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, mapWriteError(err, "update category")
	}
	dto := FromModel(c)
	return &dto, nil
}

// Delete refuses to remove a category that still has products.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category has associated products").
			WithDetails(map[string]any{"productos": count})
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return c, nil
}

func (s *service) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, msgNameTaken)
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
	}
}

func mapWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, "nombre") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgNameTaken)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
