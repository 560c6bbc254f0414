package categories

import (
	"context"
	"testing"

	"github.com/kkarhua/fullrest-backend/pkg/db/dbtest"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.New(t).DB())
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCategoryCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CategoryRequest{Name: " Tazas "})
	require.NoError(t, err)
	assert.Equal(t, "Tazas", created.Name)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := svc.Update(ctx, created.ID, CategoryRequest{Name: "Tazones"})
	require.NoError(t, err)
	assert.Equal(t, "Tazones", updated.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestCategoryNameConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CategoryRequest{Name: "Tazas"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CategoryRequest{Name: "Platos"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CategoryRequest{Name: "Tazas"})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.Update(ctx, a.ID, CategoryRequest{Name: "Platos"})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.Update(ctx, a.ID, CategoryRequest{Name: "Tazas"})
	assert.NoError(t, err, "renaming to the same name is allowed")
}

func TestDeleteCategoryWithProductsConflicts(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CategoryRequest{Name: "Tazas"})
	require.NoError(t, err)
	require.NoError(t, repo.db.Create(&models.Product{
		Name:       "Taza greda",
		Price:      5990,
		Stock:      3,
		CategoryID: &c.ID,
		Status:     enums.ProductStatusActive,
	}).Error)

	err = svc.Delete(ctx, c.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.Delete(ctx, 999)))
}
