package shipments

import (
	"context"
	"testing"

	"github.com/kkarhua/fullrest-backend/internal/authz"
	"github.com/kkarhua/fullrest-backend/pkg/db/dbtest"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    Service
	repo   *Repository
	alice  *authz.Identity
	bob    *authz.Identity
	vendor *authz.Identity
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := NewRepository(dbtest.New(t).DB())
	svc, err := NewService(repo)
	require.NoError(t, err)

	seed := func(email string, role enums.Role) *authz.Identity {
		u := &models.User{Name: "Usuario", Email: email, PasswordHash: "x", Role: role, Status: enums.UserStatusActive}
		require.NoError(t, repo.db.Create(u).Error)
		return &authz.Identity{Email: email, Role: role, UserID: u.ID}
	}
	return fixture{
		svc:    svc,
		repo:   repo,
		alice:  seed("alice@b.com", enums.RoleCustomer),
		bob:    seed("bob@b.com", enums.RoleCustomer),
		vendor: seed("vendor@b.com", enums.RoleVendor),
	}
}

func ptr[T any](v T) *T { return &v }

func (f fixture) create(t *testing.T, actor *authz.Identity) *ShipmentDTO {
	t.Helper()
	out, err := f.svc.Create(context.Background(), actor, CreateShipmentRequest{
		Street:  "Av. Siempre Viva 742",
		Region:  "Metropolitana",
		Commune: "Providencia",
	})
	require.NoError(t, err)
	return out
}

func TestCreateDefaultsToCaller(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, f.alice)
	assert.Equal(t, f.alice.UserID, out.UserID)
	assert.Nil(t, out.Apartment)
}

func TestCreateOwnershipAndUnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := CreateShipmentRequest{UserID: &f.bob.UserID, Street: "Calle Uno", Region: "Valparaiso", Commune: "Vina"}

	_, err := f.svc.Create(ctx, f.alice, req)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	out, err := f.svc.Create(ctx, f.vendor, req)
	require.NoError(t, err)
	assert.Equal(t, f.bob.UserID, out.UserID)

	req.UserID = ptr(int64(999))
	_, err = f.svc.Create(ctx, f.vendor, req)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListScopesCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, f.alice)
	f.create(t, f.alice)
	f.create(t, f.bob)

	mine, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.svc.List(ctx, f.vendor)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListByUser(ctx, f.alice, f.bob.UserID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	bobs, err := f.svc.ListByUser(ctx, f.vendor, f.bob.UserID)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	_, err = f.svc.ListByUser(ctx, f.vendor, 999)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipment := f.create(t, f.alice)

	_, err := f.svc.Update(ctx, f.bob, shipment.ID, UpdateShipmentRequest{Street: ptr("Otra calle")})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	updated, err := f.svc.Update(ctx, f.alice, shipment.ID, UpdateShipmentRequest{
		Apartment:    ptr(" 12B "),
		Instructions: ptr("dejar en conserjeria"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Av. Siempre Viva 742", updated.Street)
	assert.Equal(t, "12B", *updated.Apartment)

	_, err = f.svc.Delete(ctx, f.bob, shipment.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	resp, err := f.svc.Delete(ctx, f.alice, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, shipment.ID, resp.ShipmentID)

	_, err = f.svc.Get(ctx, f.vendor, shipment.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDeleteWithPurchasesConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipment := f.create(t, f.alice)
	require.NoError(t, f.repo.db.Create(&models.Purchase{
		UserID:     f.alice.UserID,
		ShipmentID: shipment.ID,
		Subtotal:   1000,
		Tax:        190,
		Total:      1190,
		Details:    "[]",
		Status:     enums.PurchaseStatusCompleted,
	}).Error)

	_, err := f.svc.Delete(ctx, f.vendor, shipment.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = f.svc.Get(ctx, f.alice, shipment.ID)
	assert.NoError(t, err)
}
