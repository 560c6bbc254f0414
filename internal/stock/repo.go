package stock

import (
	"context"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

// Mutate loads the product under a row lock, lets fn change it and persists
// the stock and estado columns in the same transaction. The sqlite dialect
// drops the locking clause; its single connection serializes writers.
func (r *Repository) Mutate(ctx context.Context, id int64, fn func(p *models.Product) error) (*models.Product, error) {
	var out models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&out, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Model(&out).Select("stock", "estado", "fecha_actualizacion").Updates(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
