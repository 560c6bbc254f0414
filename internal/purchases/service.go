package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kkarhua/fullrest-backend/internal/authz"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	msgNotFound         = "purchase not found"
	msgUserNotFound     = "user not found"
	msgShipmentNotFound = "shipment not found"
	msgForbidden        = "you can only access your own purchases"
)

// Service records and reads purchases.
type Service interface {
	List(ctx context.Context, actor *authz.Identity) ([]PurchaseDTO, error)
	ListByUser(ctx context.Context, actor *authz.Identity, userID int64) ([]PurchaseDTO, error)
	Get(ctx context.Context, actor *authz.Identity, id int64) (*PurchaseDTO, error)
	Create(ctx context.Context, actor *authz.Identity, req CreatePurchaseRequest) (*PurchaseDTO, error)
	Stats(ctx context.Context) (*StatsDTO, error)
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*models.Purchase, error)
	List(ctx context.Context, userID *int64) ([]models.Purchase, error)
	Create(ctx context.Context, p *models.Purchase) error
	CountByStatus(ctx context.Context, status enums.PurchaseStatus) (int64, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	FindShipment(ctx context.Context, id int64) (*models.Shipment, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

func NewService(repo repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) List(ctx context.Context, actor *authz.Identity) ([]PurchaseDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	var owner *int64
	if !actor.Role.IsStaff() {
		owner = &actor.UserID
	}
	list, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list purchases")
	}
	return FromModels(list), nil
}

func (s *service) ListByUser(ctx context.Context, actor *authz.Identity, userID int64) ([]PurchaseDTO, error) {
	if !actor.CanAccessOwned(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgForbidden)
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, &userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user purchases")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, actor *authz.Identity, id int64) (*PurchaseDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load purchase")
	}
	if !actor.CanAccessOwned(p.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgForbidden)
	}
	dto := FromModel(p)
	return &dto, nil
}

// Create records a purchase against one of the user's shipments. IVA and
// total are computed from the subtotal; estado defaults to completada.
func (s *service) Create(ctx context.Context, actor *authz.Identity, req CreatePurchaseRequest) (*PurchaseDTO, error) {
	if req.UserID == nil || req.ShipmentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and shipment are required")
	}
	if req.Subtotal == nil || *req.Subtotal < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be greater than or equal to 0")
	}
	if !actor.CanAccessOwned(*req.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgForbidden)
	}
	if err := s.ensureUser(ctx, *req.UserID); err != nil {
		return nil, err
	}
	shipment, err := s.repo.FindShipment(ctx, *req.ShipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgShipmentNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
	}
	if shipment.UserID != *req.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment does not belong to the user")
	}

	status := enums.PurchaseStatusCompleted
	if req.Status != nil {
		parsed, err := enums.ParsePurchaseStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}

	tax, total := ComputeTotals(*req.Subtotal)
	details := "[]"
	if len(req.Details) > 0 && string(req.Details) != "null" {
		details = string(req.Details)
	}
	p := &models.Purchase{
		UserID:      *req.UserID,
		ShipmentID:  shipment.ID,
		Subtotal:    *req.Subtotal,
		Tax:         tax,
		Total:       total,
		Details:     details,
		PurchasedAt: s.now(),
		Status:      status,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create purchase")
	}
	dto := FromModel(p)
	return &dto, nil
}

// Stats counts completed purchases only.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	count, err := s.repo.CountByStatus(ctx, enums.PurchaseStatusCompleted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count purchases")
	}
	return &StatsDTO{TotalPurchases: count, Date: s.now()}, nil
}

func (s *service) ensureUser(ctx context.Context, userID int64) error {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
	}
	return nil
}
