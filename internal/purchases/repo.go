package purchases

import (
	"context"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns purchases newest first, narrowed to userID when set.
func (r *Repository) List(ctx context.Context, userID *int64) ([]models.Purchase, error) {
	q := r.db.WithContext(ctx).Order("fecha_compra DESC").Order("id DESC")
	if userID != nil {
		q = q.Where("usuario_id = ?", *userID)
	}
	var list []models.Purchase
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) CountByStatus(ctx context.Context, status enums.PurchaseStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Purchase{}).Where("estado = ?", status).Count(&count).Error
	return count, err
}

func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) FindShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
