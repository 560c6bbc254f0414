package purchases

import (
	"encoding/json"
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

type PurchaseDTO struct {
	ID          int64                `json:"id"`
	UserID      int64                `json:"usuarioId"`
	ShipmentID  int64                `json:"envioId"`
	Subtotal    int64                `json:"subtotal"`
	Tax         int64                `json:"iva"`
	Total       int64                `json:"total"`
	Details     json.RawMessage      `json:"detalleProductos"`
	PurchasedAt time.Time            `json:"fechaCompra"`
	Status      enums.PurchaseStatus `json:"estado"`
}

// CreatePurchaseRequest carries the client-computed subtotal. Tax and total
// are always derived server-side.
type CreatePurchaseRequest struct {
	UserID     *int64          `json:"usuarioId"`
	ShipmentID *int64          `json:"envioId"`
	Subtotal   *int64          `json:"subtotal" validate:"required,gte=0"`
	Details    json.RawMessage `json:"detalleProductos"`
	Status     *string         `json:"estado" validate:"omitempty,oneof=completada pendiente cancelada"`
}

type StatsDTO struct {
	TotalPurchases int64     `json:"totalCompras"`
	Date           time.Time `json:"fecha"`
}

func FromModel(p *models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		ShipmentID:  p.ShipmentID,
		Subtotal:    p.Subtotal,
		Tax:         p.Tax,
		Total:       p.Total,
		Details:     detailsJSON(p.Details),
		PurchasedAt: p.PurchasedAt,
		Status:      p.Status,
	}
}

func FromModels(list []models.Purchase) []PurchaseDTO {
	out := make([]PurchaseDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

// detailsJSON returns stored detail text as raw JSON, quoting it when the
// column holds free text.
func detailsJSON(stored string) json.RawMessage {
	if stored == "" {
		return json.RawMessage("[]")
	}
	if json.Valid([]byte(stored)) {
		return json.RawMessage(stored)
	}
	quoted, _ := json.Marshal(stored)
	return quoted
}
