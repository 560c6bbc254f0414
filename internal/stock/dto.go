package stock

import "github.com/kkarhua/fullrest-backend/pkg/enums"

type LevelDTO struct {
	ProductID int64                   `json:"productoId"`
	Name      string                  `json:"nombre"`
	Stock     int                     `json:"stock"`
	Status    enums.StockAvailability `json:"estado"`
}

// MutationDTO reports a stock change. Exactly one of Added or Reduced is set
// for agregar and reducir; neither is set for actualizar.
type MutationDTO struct {
	ProductID int64               `json:"productoId"`
	Name      string              `json:"nombre"`
	Previous  int                 `json:"stockAnterior"`
	Current   int                 `json:"stockActual"`
	Added     *int                `json:"cantidadAgregada,omitempty"`
	Reduced   *int                `json:"cantidadReducida,omitempty"`
	Status    enums.ProductStatus `json:"estado"`
}

type SetStockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type AdjustStockRequest struct {
	Quantity *int `json:"cantidad" validate:"required,gt=0"`
}
