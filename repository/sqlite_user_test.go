package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

func TestUserRepoCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Kuaför Ada")

	user := &models.User{
		ShopID:       shop.ID,
		Username:     "ayse",
		PasswordHash: "bcrypt-hash",
	}
	require.NoError(t, repo.Create(ctx, user))

	// ID ve default'lar Create içinde atanır
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ayse", byID.Username)
	assert.Equal(t, shop.ID, byID.ShopID)

	byName, err := repo.GetByUsername(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
}

func TestUserRepoNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)

	_, err := repo.GetByID(context.Background(), "yok-boyle-biri")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = repo.GetByUsername(context.Background(), "hayalet")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestUserRepoDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Kuaför Ada")
	seedUser(t, db, shop.ID, "mehmet")

	dup := &models.User{ShopID: shop.ID, Username: "mehmet", PasswordHash: "x"}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestUserRepoGetByShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	shopA := seedShop(t, db, "Shop A")
	shopB := seedShop(t, db, "Shop B")

	seedUser(t, db, shopA.ID, "zeynep")
	seedUser(t, db, shopA.ID, "ali")
	seedUser(t, db, shopB.ID, "baska-shop")

	users, err := repo.GetByShop(ctx, shopA.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// username sırası: ali < zeynep
	assert.Equal(t, "ali", users[0].Username)
	assert.Equal(t, "zeynep", users[1].Username)
}

func TestUserRepoUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Shop")
	user := seedUser(t, db, shop.ID, "fatma")

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "yeni-hash"))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "yeni-hash", updated.PasswordHash)
}
