package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Apostolos-Valiakos/AptApp/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı
// interface.
//
// services.AuthService doğrudan kullanılmaz — services paketi broadcast
// için ws.EventPublisher'a bağımlıdır; ters yönde bağımlılık cycle
// yaratırdı. Handler'ın zaten tek ihtiyacı token doğrulamak (Interface
// Segregation); authService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// upgrader, HTTP bağlantısını WebSocket'e yükseltir.
// WebSocket normal HTTP isteği olarak başlar, "upgrade" ile kalıcı
// çift yönlü bağlantıya dönüşür.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: Production'da domain kontrolü yapılmalı.
	// Şimdilik tüm origin'lere izin veriliyor (development için).
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
}

// NewHandler, yeni bir WebSocket handler oluşturur.
func NewHandler(hub *Hub, tokenValidator TokenValidator) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
	}
}

// HandleConnection, bağlantıyı doğrular, upgrade eder ve Hub'a kaydeder.
//
// Token URL query parameter olarak gelir (ws://server/ws?token=JWT) —
// tarayıcı WebSocket API'si custom header göndermeye izin vermez.
// Token geçersizse upgrade hiç yapılmaz; hiçbir state değişmez.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		shopID: claims.ShopID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	// WritePump ayrı goroutine'de; ReadPump bu goroutine'de bloklar —
	// fonksiyon dönerse HTTP handler sonlanır ve bağlantı kapanır.
	go client.WritePump()
	client.ReadPump()
}
