// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
package main

import (
	"time"

	"github.com/Apostolos-Valiakos/AptApp/config"
	"github.com/Apostolos-Valiakos/AptApp/pkg/ratelimit"
	"github.com/Apostolos-Valiakos/AptApp/services"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth        services.AuthService
	Channel     services.ChannelService
	Message     services.MessageService
	ReadReceipt services.ReadReceiptService
	Upload      services.UploadService
}

// RateLimiters, tüm rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login   *ratelimit.LoginRateLimiter
	Message *ratelimit.MessageRateLimiter
}

// initServices, tüm service'leri ve rate limiter'ları oluşturur.
// hub, service'ler arası paylaşılan dependency'dir — mesaj ve receipt
// service'leri broadcast için kullanır.
func initServices(repos *Repositories, hub ws.EventPublisher, cfg *config.Config) (*Services, *RateLimiters) {
	authService := services.NewAuthService(
		repos.User, repos.Session,
		cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry,
	)

	channelService := services.NewChannelService(repos.Channel, repos.User, hub)
	messageService := services.NewMessageService(
		repos.Message, repos.Channel, repos.ReadReceipt, repos.User,
		hub, cfg.Upload.MaxSize,
	)
	readReceiptService := services.NewReadReceiptService(repos.ReadReceipt, hub)
	uploadService := services.NewUploadService(cfg.Upload.MaxSize)

	// ─── Rate Limiters ───
	loginLimiter := ratelimit.NewLoginRateLimiter(5, 2*time.Minute)
	messageLimiter := ratelimit.NewMessageRateLimiter(5, 5*time.Second, 15*time.Second)

	svcs := &Services{
		Auth:        authService,
		Channel:     channelService,
		Message:     messageService,
		ReadReceipt: readReceiptService,
		Upload:      uploadService,
	}

	limiters := &RateLimiters{
		Login:   loginLimiter,
		Message: messageLimiter,
	}

	return svcs, limiters
}
