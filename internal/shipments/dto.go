package shipments

import (
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
)

type ShipmentDTO struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"usuarioId"`
	Street       string    `json:"calle"`
	Apartment    *string   `json:"departamento,omitempty"`
	Region       string    `json:"region"`
	Commune      string    `json:"comuna"`
	Instructions *string   `json:"indicaciones,omitempty"`
	CreatedAt    time.Time `json:"fechaCreacion"`
	UpdatedAt    time.Time `json:"fechaActualizacion"`
}

// CreateShipmentRequest targets the caller when UserID is omitted.
type CreateShipmentRequest struct {
	UserID       *int64  `json:"usuarioId" validate:"omitempty,gt=0"`
	Street       string  `json:"calle" validate:"required,min=3,max=200"`
	Apartment    *string `json:"departamento" validate:"omitempty,max=50"`
	Region       string  `json:"region" validate:"required,max=100"`
	Commune      string  `json:"comuna" validate:"required,max=100"`
	Instructions *string `json:"indicaciones" validate:"omitempty,max=500"`
}

type UpdateShipmentRequest struct {
	Street       *string `json:"calle" validate:"omitempty,min=3,max=200"`
	Apartment    *string `json:"departamento" validate:"omitempty,max=50"`
	Region       *string `json:"region" validate:"omitempty,min=1,max=100"`
	Commune      *string `json:"comuna" validate:"omitempty,min=1,max=100"`
	Instructions *string `json:"indicaciones" validate:"omitempty,max=500"`
}

type DeleteShipmentResponse struct {
	Message    string `json:"message"`
	ShipmentID int64  `json:"envioId"`
}

func FromModel(s *models.Shipment) ShipmentDTO {
	return ShipmentDTO{
		ID:           s.ID,
		UserID:       s.UserID,
		Street:       s.Street,
		Apartment:    s.Apartment,
		Region:       s.Region,
		Commune:      s.Commune,
		Instructions: s.Instructions,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func FromModels(list []models.Shipment) []ShipmentDTO {
	out := make([]ShipmentDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
