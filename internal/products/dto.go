package products

import (
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// ProductDTO is the wire shape of a catalog product.
type ProductDTO struct {
	ID          int64               `json:"id"`
	Name        string              `json:"nombre"`
	Description *string             `json:"descripcion,omitempty"`
	Price       int64               `json:"precio"`
	Stock       int                 `json:"stock"`
	CategoryID  *int64              `json:"categoriaId,omitempty"`
	Image       *string             `json:"imagen,omitempty"`
	Status      enums.ProductStatus `json:"estado"`
	CreatedAt   time.Time           `json:"fechaCreacion"`
	UpdatedAt   time.Time           `json:"fechaActualizacion"`
}

type CreateProductRequest struct {
	Name        string  `json:"nombre" validate:"required,min=3,max=100"`
	Description *string `json:"descripcion" validate:"omitempty,max=500"`
	Price       *int64  `json:"precio" validate:"required,gte=0"`
	Stock       *int    `json:"stock" validate:"required,gte=0"`
	CategoryID  *int64  `json:"categoriaId" validate:"omitempty,gt=0"`
	Image       *string `json:"imagen" validate:"omitempty,max=255"`
	Status      *string `json:"estado" validate:"omitempty,oneof=activo inactivo agotado"`
}

// UpdateProductRequest only touches the fields present in the body.
type UpdateProductRequest struct {
	Name        *string `json:"nombre" validate:"omitempty,min=3,max=100"`
	Description *string `json:"descripcion" validate:"omitempty,max=500"`
	Price       *int64  `json:"precio" validate:"omitempty,gte=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	CategoryID  *int64  `json:"categoriaId" validate:"omitempty,gt=0"`
	Image       *string `json:"imagen" validate:"omitempty,max=255"`
	Status      *string `json:"estado" validate:"omitempty,oneof=activo inactivo agotado"`
}

func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Image:       p.Image,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
