package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT access token'ın payload'ı.
//
// ShopID claim'de taşınır — her WebSocket bağlantısı ve her request,
// DB'ye gitmeden kullanıcının hangi tenant'a ait olduğunu bilir.
// Presence odası ve kanal görünürlüğü bu değere göre sınırlanır.
//
// Struct models paketindedir çünkü services, ws ve middleware
// katmanlarının üçü de kullanır; models'e bağımlılık cycle yaratmaz.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	ShopID   string `json:"shop_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
