package models

import (
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// Product is a catalog listing. Price is stored in whole pesos.
type Product struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string              `gorm:"column:nombre;size:100;not null"`
	Description *string             `gorm:"column:descripcion;size:500"`
	Price       int64               `gorm:"column:precio;not null"`
	Stock       int                 `gorm:"column:stock;not null"`
	CategoryID  *int64              `gorm:"column:categoria_id;index"`
	Image       *string             `gorm:"column:imagen;size:255"`
	Status      enums.ProductStatus `gorm:"column:estado;size:20;not null"`
	CreatedAt   time.Time           `gorm:"column:fecha_creacion;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:fecha_actualizacion;autoUpdateTime"`
}

func (Product) TableName() string { return "productos" }
