package shipments

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

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every shipment, or only those owned by userID when set.
func (r *Repository) List(ctx context.Context, userID *int64) ([]models.Shipment, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if userID != nil {
		q = q.Where("usuario_id = ?", *userID)
	}
	var list []models.Shipment
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) Create(ctx context.Context, s *models.Shipment) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repository) Save(ctx context.Context, s *models.Shipment) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Shipment{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// CountPurchases returns how many purchases were shipped to the address.
func (r *Repository) CountPurchases(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Purchase{}).Where("envio_id = ?", id).Count(&count).Error
	return count, err
}

func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
