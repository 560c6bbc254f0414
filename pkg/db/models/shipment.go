package models

import "time"

// Shipment is a delivery address owned by a user.
type Shipment struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64     `gorm:"column:usuario_id;not null;index"`
	Street       string    `gorm:"column:calle;size:200;not null"`
	Apartment    *string   `gorm:"column:departamento;size:50"`
	Region       string    `gorm:"column:region;size:100;not null"`
	Commune      string    `gorm:"column:comuna;size:100;not null"`
	Instructions *string   `gorm:"column:indicaciones;size:500"`
	CreatedAt    time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:fecha_actualizacion;autoUpdateTime"`
}

func (Shipment) TableName() string { return "envios" }
