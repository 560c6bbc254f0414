package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kkarhua/fullrest-backend/internal/authz"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	msgNotFound     = "shipment not found"
	msgUserNotFound = "user not found"
	msgForbidden    = "you can only access your own shipments"
	msgDeleted      = "shipment deleted"
)

// Service manages shipping addresses. Every call carries the caller so that
// customers are limited to their own records.
type Service interface {
	List(ctx context.Context, actor *authz.Identity) ([]ShipmentDTO, error)
	ListByUser(ctx context.Context, actor *authz.Identity, userID int64) ([]ShipmentDTO, error)
	Get(ctx context.Context, actor *authz.Identity, id int64) (*ShipmentDTO, error)
	Create(ctx context.Context, actor *authz.Identity, req CreateShipmentRequest) (*ShipmentDTO, error)
	Update(ctx context.Context, actor *authz.Identity, id int64, req UpdateShipmentRequest) (*ShipmentDTO, error)
	Delete(ctx context.Context, actor *authz.Identity, id int64) (*DeleteShipmentResponse, error)
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*models.Shipment, error)
	List(ctx context.Context, userID *int64) ([]models.Shipment, error)
	Create(ctx context.Context, s *models.Shipment) error
	Save(ctx context.Context, s *models.Shipment) error
	Delete(ctx context.Context, id int64) (bool, error)
	CountPurchases(ctx context.Context, id int64) (int64, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipment repository is required")
	}
	return &service{repo: repo}, nil
}

// List returns everything for staff and only the caller's shipments otherwise.
func (s *service) List(ctx context.Context, actor *authz.Identity) ([]ShipmentDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	var owner *int64
	if !actor.Role.IsStaff() {
		owner = &actor.UserID
	}
	list, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipments")
	}
	return FromModels(list), nil
}

func (s *service) ListByUser(ctx context.Context, actor *authz.Identity, userID int64) ([]ShipmentDTO, error) {
	if !actor.CanAccessOwned(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgForbidden)
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, &userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user shipments")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, actor *authz.Identity, id int64) (*ShipmentDTO, error) {
	shipment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(shipment)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, actor *authz.Identity, req CreateShipmentRequest) (*ShipmentDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID := actor.UserID
	if req.UserID != nil {
		userID = *req.UserID
	}
	if !actor.CanAccessOwned(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgForbidden)
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		UserID:       userID,
		Street:       strings.TrimSpace(req.Street),
		Apartment:    trimOptional(req.Apartment),
		Region:       strings.TrimSpace(req.Region),
		Commune:      strings.TrimSpace(req.Commune),
		Instructions: trimOptional(req.Instructions),
	}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shipment")
	}
	dto := FromModel(shipment)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor *authz.Identity, id int64, req UpdateShipmentRequest) (*ShipmentDTO, error) {
	shipment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Street != nil {
		shipment.Street = strings.TrimSpace(*req.Street)
	}
	if req.Apartment != nil {
		shipment.Apartment = trimOptional(req.Apartment)
	}
	if req.Region != nil {
		shipment.Region = strings.TrimSpace(*req.Region)
	}
	if req.Commune != nil {
		shipment.Commune = strings.TrimSpace(*req.Commune)
	}
	if req.Instructions != nil {
		shipment.Instructions = trimOptional(req.Instructions)
	}
	if err := s.repo.Save(ctx, shipment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shipment")
	}
	dto := FromModel(shipment)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actor *authz.Identity, id int64) (*DeleteShipmentResponse, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	count, err := s.repo.CountPurchases(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count shipment purchases")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipment has associated purchases").
			WithDetails(map[string]any{"compras": count})
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shipment")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}
	return &DeleteShipmentResponse{Message: msgDeleted, ShipmentID: id}, nil
}

// loadOwned fetches the shipment and checks ownership. A missing row is a 404
// for every caller.
func (s *service) loadOwned(ctx context.Context, actor *authz.Identity, id int64) (*models.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
	}
	if !actor.CanAccessOwned(shipment.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgForbidden)
	}
	return shipment, nil
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

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}
