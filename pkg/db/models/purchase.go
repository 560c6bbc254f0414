package models

import (
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// Purchase is a receipt. Amounts are whole pesos; Details holds the
// purchased line items as JSON text.
type Purchase struct {
	ID          int64                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64                `gorm:"column:usuario_id;not null;index"`
	ShipmentID  int64                `gorm:"column:envio_id;not null;index"`
	Subtotal    int64                `gorm:"column:subtotal;not null"`
	Tax         int64                `gorm:"column:iva;not null"`
	Total       int64                `gorm:"column:total;not null"`
	Details     string               `gorm:"column:detalle_productos;type:text;not null"`
	PurchasedAt time.Time            `gorm:"column:fecha_compra;autoCreateTime"`
	Status      enums.PurchaseStatus `gorm:"column:estado;size:20;not null;index"`
}

func (Purchase) TableName() string { return "compras" }
