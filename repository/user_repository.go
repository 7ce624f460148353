// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern: CRUD işlemleri interface arkasına saklanır,
// service katmanı doğrudan SQL yazmaz. Kazanımlar:
// 1. Test: mock repository ile DB olmadan test edilebilir
// 2. Esneklik: SQLite'tan başka bir DB'ye geçiş sadece yeni implementasyon
// 3. Dependency Inversion: service interface'e bağımlı, concrete struct'a değil
//
// Go'da interface implicit'tir — struct tüm method'ları implement
// ediyorsa otomatik olarak interface'i sağlar.
package repository

import (
	"context"

	"github.com/Apostolos-Valiakos/AptApp/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// Tüm method'lar context.Context alır — client bağlantıyı koparırsa
// devam eden sorgu da iptal olur.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByShop, bir shop'un tüm personelini username sırasıyla döner.
	// Kanal oluşturma ekranındaki "kimi ekleyeyim" listesi buradan beslenir.
	GetByShop(ctx context.Context, shopID string) ([]models.User, error)
	// UpdatePassword, yeni bcrypt hash'i yazar.
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
}
