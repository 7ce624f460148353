// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır. Middleware kendi
// işini yapar (ör: token doğrula), sonra next'i çağırır. Hata varsa next
// çağırılmaz — request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Apostolos-Valiakos/AptApp/handlers"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/repository"
	"github.com/Apostolos-Valiakos/AptApp/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
//
// Token geçerli olsa bile kullanıcı her request'te DB'den okunur:
// silinen personel, elindeki access token'ın ömrü dolmadan da dışarıda
// kalır. Shop claim'i de kullanıcının güncel shop'una karşı doğrulanır —
// personel başka shop'a taşındıysa eski token geçersizdir.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require, JWT token zorunlu kılan middleware.
// Header formatı: Authorization: Bearer <token>
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required, use: Bearer <token>")
			return
		}

		claims, err := m.authService.ValidateAccessToken(token)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}
		if user.ShopID != claims.ShopID {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "token shop mismatch")
			return
		}

		// Hash context'te taşınmaz
		user.PasswordHash = ""

		// Downstream handler'lar r.Context().Value(UserContextKey) ile erişir
		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken, Authorization header'ından raw token'ı çıkarır.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}
