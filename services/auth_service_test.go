package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

func newAuthService(e *testEnv) AuthService {
	return NewAuthService(e.users, e.sessions, "test-secret", 15, 7)
}

func TestAuthLogin(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	shop := e.seedShop(t, "Shop")
	e.seedUser(t, shop.ID, "ayse", "gizli-sifre")

	tokens, err := svc.Login(t.Context(), &models.LoginRequest{Username: "ayse", Password: "gizli-sifre"})
	require.NoError(t, err)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "ayse", tokens.User.Username)
	// Hash response'a asla çıkmaz
	assert.Empty(t, tokens.User.PasswordHash)

	// Access token claims'leri doğrulanabilir olmalı
	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, claims.UserID)
	assert.Equal(t, shop.ID, claims.ShopID)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	shop := e.seedShop(t, "Shop")
	e.seedUser(t, shop.ID, "ayse", "dogru")

	// Yanlış şifre ve bilinmeyen kullanıcı AYNI hatayı döner —
	// username enumeration'a kapı açılmaz
	_, err := svc.Login(t.Context(), &models.LoginRequest{Username: "ayse", Password: "yanlis"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = svc.Login(t.Context(), &models.LoginRequest{Username: "hayalet", Password: "dogru"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuthRefreshRotation(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	shop := e.seedShop(t, "Shop")
	e.seedUser(t, shop.ID, "ayse", "sifre")

	tokens, err := svc.Login(t.Context(), &models.LoginRequest{Username: "ayse", Password: "sifre"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(t.Context(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// Rotation: eski refresh token ikinci kullanımda geçersizdir
	_, err = svc.RefreshToken(t.Context(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuthLogout(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	shop := e.seedShop(t, "Shop")
	e.seedUser(t, shop.ID, "ayse", "sifre")

	tokens, err := svc.Login(t.Context(), &models.LoginRequest{Username: "ayse", Password: "sifre"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(t.Context(), tokens.RefreshToken))

	_, err = svc.RefreshToken(t.Context(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Bilinmeyen token ile logout no-op'tur
	assert.NoError(t, svc.Logout(t.Context(), "boyle-bir-token-yok"))
}

func TestAuthValidateGarbageToken(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	_, err := svc.ValidateAccessToken("bu-bir-jwt-degil")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuthChangePassword(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(e)

	shop := e.seedShop(t, "Shop")
	user := e.seedUser(t, shop.ID, "ayse", "eski-sifre")

	// Yanlış mevcut şifre reddedilir
	err := svc.ChangePassword(t.Context(), user.ID, "yanlis", "yepyeni-sifre")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Kısa yeni şifre reddedilir
	err = svc.ChangePassword(t.Context(), user.ID, "eski-sifre", "kisa")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, svc.ChangePassword(t.Context(), user.ID, "eski-sifre", "yepyeni-sifre"))

	// Eski şifreyle giriş artık mümkün değil, yenisiyle mümkün
	_, err = svc.Login(t.Context(), &models.LoginRequest{Username: "ayse", Password: "eski-sifre"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = svc.Login(t.Context(), &models.LoginRequest{Username: "ayse", Password: "yepyeni-sifre"})
	assert.NoError(t, err)
}
