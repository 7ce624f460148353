// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/Apostolos-Valiakos/AptApp/config"
	"github.com/Apostolos-Valiakos/AptApp/handlers"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Channel *handlers.ChannelHandler
	Message *handlers.MessageHandler
	WS      *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		Channel: handlers.NewChannelHandler(svcs.Channel),
		Message: handlers.NewMessageHandler(svcs.Message, svcs.Upload, cfg.Upload.MaxSize),
		WS:      ws.NewHandler(hub, svcs.Auth),
	}
}
