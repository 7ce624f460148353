package models

import (
	"fmt"
	"strings"
	"time"
)

// ReadReceipt, bir kullanıcının bir mesajı okuduğunu kaydeder.
// (message_id, user_id) çifti unique'tir — aynı mesaj iki kez
// okunursa sadece read_at güncellenir, ikinci satır oluşmaz.
type ReadReceipt struct {
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}

// BulkReadRequest, chat:read:bulk event'inin payload'ı.
// Kanal açıldığında client o anda unread olan tüm mesaj ID'lerini
// tek event'te gönderir.
type BulkReadRequest struct {
	ChannelID  string   `json:"channelId"`
	MessageIDs []string `json:"messageIds"`
}

// Validate, BulkReadRequest'in geçerli olup olmadığını kontrol eder.
func (r *BulkReadRequest) Validate() error {
	r.ChannelID = strings.TrimSpace(r.ChannelID)
	if r.ChannelID == "" {
		return fmt.Errorf("channel id is required")
	}
	if len(r.MessageIDs) == 0 {
		return fmt.Errorf("message ids are required")
	}
	return nil
}

// ReadRequest, chat:read event'inin payload'ı (tek mesaj varyantı).
type ReadRequest struct {
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
}

// Validate, ReadRequest'in geçerli olup olmadığını kontrol eder.
func (r *ReadRequest) Validate() error {
	r.ChannelID = strings.TrimSpace(r.ChannelID)
	r.MessageID = strings.TrimSpace(r.MessageID)
	if r.ChannelID == "" {
		return fmt.Errorf("channel id is required")
	}
	if r.MessageID == "" {
		return fmt.Errorf("message id is required")
	}
	return nil
}
