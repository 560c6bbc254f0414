package media

import (
	"context"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads and writes the imagen column of products.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SetImage stores name as the product image; nil clears it.
func (r *Repository) SetImage(ctx context.Context, id int64, name *string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("imagen", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
