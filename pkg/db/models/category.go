package models

// Category groups products in the catalog.
type Category struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:nombre;size:50;not null;uniqueIndex"`
}

func (Category) TableName() string { return "categorias" }
