package categories

import (
	"context"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByName matches the category name exactly.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("nombre = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) Save(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// CountProducts returns how many products reference the category.
func (r *Repository) CountProducts(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("categoria_id = ?", id).Count(&count).Error
	return count, err
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
