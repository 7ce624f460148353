package repository

import (
	"context"

	"github.com/Apostolos-Valiakos/AptApp/models"
)

// MessageRepository, mesaj veritabanı işlemleri için interface.
//
// GetByChannelID cursor-based pagination kullanır:
// beforeID = bu mesajdan önceki mesajları getir (boşsa en yenilerden başla).
// Offset-based pagination'da yeni mesaj geldiğinde sayfa kayar —
// cursor ile sonuç kararlıdır.
type MessageRepository interface {
	// Create, mesajı yazar ve aynı transaction'da kanalın updated_at'ini
	// ilerletir — kanal listesi sıralaması bu sayede güncel kalır.
	Create(ctx context.Context, message *models.Message, fileData []byte) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	GetByChannelID(ctx context.Context, channelID string, beforeID string, limit int) ([]models.Message, error)
	// GetFileData, dosyalı mesajın BLOB içeriğini döner.
	GetFileData(ctx context.Context, id string) ([]byte, error)
}
