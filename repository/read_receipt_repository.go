package repository

import (
	"context"
	"time"

	"github.com/Apostolos-Valiakos/AptApp/models"
)

// ReadReceiptRepository, okuma receipt'leri ve last_read_at watermark'ı
// için interface.
//
// Receipt (message_id, user_id) üzerinde unique'tir: aynı mesajın
// tekrar okunması yeni satır üretmez, sadece read_at'i günceller.
type ReadReceiptRepository interface {
	// MarkBulk, receipt'leri ve kanal watermark'ını tek transaction'da yazar.
	// Kanal açılışında client o anda unread olan tüm ID'leri tek seferde yollar.
	MarkBulk(ctx context.Context, channelID, userID string, messageIDs []string) error
	// MarkOne, tek mesaj için receipt yazar; watermark'a dokunmaz.
	MarkOne(ctx context.Context, userID, messageID string) error
	// ForMessages, mesaj listesi için read_by hydration'ı — tek sorguda
	// tüm receipt'ler çekilir (N+1 yerine batch).
	ForMessages(ctx context.Context, messageIDs []string) (map[string][]models.ReadReceipt, error)
	// LastReadAt, kullanıcının kanaldaki watermark'ını döner (hiç okumadıysa nil).
	LastReadAt(ctx context.Context, channelID, userID string) (*time.Time, error)
}
