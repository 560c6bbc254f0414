package enums

import "fmt"

// PurchaseStatus tracks the lifecycle of a purchase receipt.
type PurchaseStatus string

const (
	PurchaseStatusCompleted PurchaseStatus = "completada"
	PurchaseStatusPending   PurchaseStatus = "pendiente"
	PurchaseStatusCancelled PurchaseStatus = "cancelada"
)

var validPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusCompleted,
	PurchaseStatusPending,
	PurchaseStatusCancelled,
}

func (s PurchaseStatus) String() string {
	return string(s)
}

func (s PurchaseStatus) IsValid() bool {
	for _, candidate := range validPurchaseStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParsePurchaseStatus(value string) (PurchaseStatus, error) {
	for _, candidate := range validPurchaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase status %q", value)
}
