package enums

import "fmt"

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "activo"
	ProductStatusInactive   ProductStatus = "inactivo"
	ProductStatusOutOfStock ProductStatus = "agotado"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
	ProductStatusOutOfStock,
}

func (s ProductStatus) String() string {
	return string(s)
}

func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// StockAvailability is the derived stock label returned by stock queries.
type StockAvailability string

const (
	StockAvailable  StockAvailability = "disponible"
	StockOutOfStock StockAvailability = "agotado"
)

// AvailabilityFor maps a quantity to its availability label.
func AvailabilityFor(qty int) StockAvailability {
	if qty > 0 {
		return StockAvailable
	}
	return StockOutOfStock
}
