// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ı burada tanımlıdır:
//   - auth: JWT token doğrulaması
package main

import (
	"net/http"

	"github.com/Apostolos-Valiakos/AptApp/middleware"
	"github.com/Apostolos-Valiakos/AptApp/repository"
	"github.com/Apostolos-Valiakos/AptApp/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE tanımlanmalı.
// Örnek: "GET /api/users/me" → "GET /api/users/{id}" öncesinde olmalıdır,
// yoksa Go router "me" kelimesini bir id olarak yorumlar.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	// ─── Middleware Chain Helper ───
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}

	// Auth
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.Handle("POST /api/auth/logout", auth(h.Auth.Logout))

	// User
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))
	mux.Handle("PUT /api/users/me/password", auth(h.Auth.ChangePassword))
	mux.Handle("GET /api/users", auth(h.Channel.ShopUsers))

	// Channels
	mux.Handle("GET /api/channels", auth(h.Channel.List))
	mux.Handle("POST /api/channels", auth(h.Channel.Create))
	mux.Handle("GET /api/channels/{id}/members", auth(h.Channel.Members))
	mux.Handle("POST /api/channels/{id}/members", auth(h.Channel.AddMember))

	// Messages — gönderim WebSocket'ten, geçmiş ve dosyalar HTTP'den
	mux.Handle("GET /api/channels/{id}/messages", auth(h.Message.History))
	mux.Handle("GET /api/messages/{id}/file", auth(h.Message.File))

	// Upload
	mux.Handle("POST /api/uploads", auth(h.Message.Upload))

	// WebSocket
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
