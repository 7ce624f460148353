package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageType, mesajın türünü temsil eder.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// Message, bir kanal mesajını temsil eder.
// DB'deki "chat_messages" tablosunun Go karşılığı.
//
// User ve ReadBy alanları ayrı tablolardan doldurulur ama response'ta
// birlikte döner — frontend tek istekle mesaj + yazar + "seen by"
// bilgisini alır. ReadBy hiçbir zaman nil serialize edilmez; okuyan
// yoksa boş dizi döner.
type Message struct {
	ID          string        `json:"id"`
	ChannelID   string        `json:"channel_id"`
	UserID      *string       `json:"user_id"` // Nullable — yazar silinirse SET NULL
	Content     *string       `json:"content"` // Nullable — sadece dosya içeren mesajda nil
	MessageType MessageType   `json:"message_type"`
	FileName    *string       `json:"file_name"`
	FileSize    *int64        `json:"file_size"` // byte cinsinden
	FileType    *string       `json:"file_type"` // MIME type: "image/png" vb.
	CreatedAt   time.Time     `json:"created_at"`
	User        *User         `json:"user,omitempty"`
	ReadBy      []ReadReceipt `json:"read_by"`
}

// MessagePage, cursor-based pagination sonucu.
//
// Offset yerine "bu mesajdan öncekileri getir" cursor'u kullanılır —
// yeni mesaj eklendiğinde sayfa kayması olmaz. Mesajlar en-eski-önce
// sırayla döner, HasMore daha eski sayfa olup olmadığını söyler.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// CreateMessageRequest, chat:message event'inin payload'ı.
// WebSocket wire formatı camelCase kullanır — REST modellerinden farklı.
//
// Dosyalı mesajda FileBase64 içeriği taşır; upload endpoint'inin
// döndürdüğü descriptor buradan geri gelir.
type CreateMessageRequest struct {
	ChannelID   string  `json:"channelId"`
	Content     string  `json:"content"`
	MessageType string  `json:"messageType"`
	FileName    *string `json:"fileName,omitempty"`
	FileSize    *int64  `json:"fileSize,omitempty"`
	FileType    *string `json:"fileType,omitempty"`
	FileBase64  *string `json:"fileBase64,omitempty"`
}

// Validate, CreateMessageRequest'in geçerli olup olmadığını kontrol eder.
//
// Kurallar:
//   - ChannelID zorunlu.
//   - İçerik boşsa dosya olmalı — ikisi birden boş mesaj reddedilir.
//   - İçerik max 4000 karakter.
//   - MessageType boş bırakılırsa "text" kabul edilir.
func (r *CreateMessageRequest) Validate() error {
	r.ChannelID = strings.TrimSpace(r.ChannelID)
	if r.ChannelID == "" {
		return fmt.Errorf("channel id is required")
	}

	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	hasFile := r.FileBase64 != nil && *r.FileBase64 != ""
	if contentLen == 0 && !hasFile {
		return fmt.Errorf("message content or file is required")
	}
	if contentLen > 4000 {
		return fmt.Errorf("message content must be at most 4000 characters")
	}

	switch MessageType(r.MessageType) {
	case "":
		r.MessageType = string(MessageTypeText)
	case MessageTypeText, MessageTypeFile, MessageTypeSystem:
		// geçerli
	default:
		return fmt.Errorf("invalid message type: %s", r.MessageType)
	}

	return nil
}
