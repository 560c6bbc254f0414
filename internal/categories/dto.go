package categories

import "github.com/kkarhua/fullrest-backend/pkg/db/models"

type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// CategoryRequest is used for both create and update.
type CategoryRequest struct {
	Name string `json:"nombre" validate:"required,min=3,max=50"`
}

func FromModel(c *models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}
