package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Apostolos-Valiakos/AptApp/handlers"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// Route tablosunu kurup mux'un eşleştirdiği pattern'leri doğrular.
// mux.Handler handler'ı çalıştırmadan pattern döndürdüğü için boş
// handler struct'ları yeterlidir.
func TestRouteTable(t *testing.T) {
	mux := http.NewServeMux()
	h := &Handlers{
		Auth:    &handlers.AuthHandler{},
		Channel: &handlers.ChannelHandler{},
		Message: &handlers.MessageHandler{},
		WS:      &ws.Handler{},
	}
	initRoutes(mux, h, nil, nil)

	cases := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/api/auth/login", "POST /api/auth/login"},
		{http.MethodGet, "/api/users/me", "GET /api/users/me"},
		{http.MethodPut, "/api/users/me/password", "PUT /api/users/me/password"},
		{http.MethodGet, "/api/channels/ch-1/messages", "GET /api/channels/{id}/messages"},
		{http.MethodGet, "/ws", "GET /ws"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		_, pattern := mux.Handler(req)
		assert.Equal(t, tc.want, pattern, "%s %s", tc.method, tc.path)
	}

	// Parola değiştirme PUT'tur; POST aynı pattern'e düşmemeli
	req := httptest.NewRequest(http.MethodPost, "/api/users/me/password", nil)
	_, pattern := mux.Handler(req)
	assert.NotEqual(t, "PUT /api/users/me/password", pattern)
}
