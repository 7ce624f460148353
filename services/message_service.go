package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/pkg/cache"
	"github.com/Apostolos-Valiakos/AptApp/repository"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// Mesaj geçmişi sayfa limitleri.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// MessageService, mesaj gönderimi ve geçmiş sorgularının business logic'i.
type MessageService interface {
	// Send, mesajı kalıcılaştırır ve kanal odasına broadcast eder.
	// Broadcast HER ZAMAN persist'ten sonra gelir — client'ın aldığı her
	// chat:message DB'de vardır.
	Send(ctx context.Context, senderID, shopID string, req *models.CreateMessageRequest) (*models.Message, error)
	// History, kanal geçmişini en-eski-önce döner. İstek sahibi kanal
	// üyesi değilse ErrForbidden.
	History(ctx context.Context, userID, channelID, beforeID string, limit int) (*models.MessagePage, error)
	// File, dosyalı mesajın içeriğini döner (üyelik kontrolü ile).
	File(ctx context.Context, userID, messageID string) (*models.Message, []byte, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	channelRepo repository.ChannelRepository
	receiptRepo repository.ReadReceiptRepository
	userRepo    repository.UserRepository
	hub         ws.EventPublisher

	// userCache: mesaj fan-out'unda yazar profili için kısa ömürlü cache.
	// Her mesajda DB'den user çekmek gereksiz — profil nadiren değişir.
	userCache *cache.TTLCache[string, models.User]

	maxFileSize int64
}

// NewMessageService, constructor.
func NewMessageService(
	messageRepo repository.MessageRepository,
	channelRepo repository.ChannelRepository,
	receiptRepo repository.ReadReceiptRepository,
	userRepo repository.UserRepository,
	hub ws.EventPublisher,
	maxFileSize int64,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		receiptRepo: receiptRepo,
		userRepo:    userRepo,
		hub:         hub,
		userCache:   cache.New[string, models.User](30*time.Second, 5*time.Minute),
		maxFileSize: maxFileSize,
	}
}

// Send akışı:
// 1. Validation (içeriksiz + dosyasız mesaj hiçbir yan etki olmadan reddedilir)
// 2. Kanal lookup + tenant kontrolü
// 3. Dosya varsa base64 decode + boyut kontrolü
// 4. Persist (mesaj + kanal updated_at, tek transaction)
// 5. Yazar profili hydration, read_by boş dizi
// 6. Kanal odasına chat:message broadcast
func (s *messageService) Send(ctx context.Context, senderID, shopID string, req *models.CreateMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	channel, err := s.channelRepo.GetByID(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel.ShopID != shopID {
		return nil, fmt.Errorf("%w: channel belongs to another shop", pkg.ErrForbidden)
	}

	var fileData []byte
	if req.FileBase64 != nil && *req.FileBase64 != "" {
		fileData, err = base64.StdEncoding.DecodeString(*req.FileBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid file encoding", pkg.ErrBadRequest)
		}
		if int64(len(fileData)) > s.maxFileSize {
			return nil, fmt.Errorf("%w: file exceeds maximum size", pkg.ErrBadRequest)
		}
	}

	var content *string
	if req.Content != "" {
		content = &req.Content
	}

	messageType := models.MessageType(req.MessageType)
	if len(fileData) > 0 {
		messageType = models.MessageTypeFile
	}

	message := &models.Message{
		ChannelID:   req.ChannelID,
		UserID:      &senderID,
		Content:     content,
		MessageType: messageType,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		FileType:    req.FileType,
	}

	if err := s.messageRepo.Create(ctx, message, fileData); err != nil {
		return nil, err
	}

	// Yeni mesajı henüz kimse okumadı — read_by boş dizi (nil değil)
	message.ReadBy = []models.ReadReceipt{}

	if author, err := s.authorProfile(ctx, senderID); err == nil {
		message.User = author
	}

	s.hub.BroadcastToRoom(ws.ChannelRoom(message.ChannelID), ws.Event{
		Op:   ws.OpChatMessageOut,
		Data: message,
	})

	return message, nil
}

func (s *messageService) History(ctx context.Context, userID, channelID, beforeID string, limit int) (*models.MessagePage, error) {
	isMember, err := s.channelRepo.IsMember(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: not a channel member", pkg.ErrForbidden)
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	// limit+1 trick: bir fazla çekilir — fazlalık geldiyse hasMore=true,
	// fazlalık response'tan atılır.
	messages, err := s.messageRepo.GetByChannelID(ctx, channelID, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	if err := s.hydrate(ctx, messages); err != nil {
		return nil, err
	}

	// Repo yeni→eski döner; client eski→yeni render eder — in-place reverse
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if messages == nil {
		messages = []models.Message{} // JSON'da null yerine []
	}

	return &models.MessagePage{Messages: messages, HasMore: hasMore}, nil
}

func (s *messageService) File(ctx context.Context, userID, messageID string) (*models.Message, []byte, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}

	isMember, err := s.channelRepo.IsMember(ctx, message.ChannelID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !isMember {
		return nil, nil, fmt.Errorf("%w: not a channel member", pkg.ErrForbidden)
	}

	data, err := s.messageRepo.GetFileData(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}

	return message, data, nil
}

// ─── Private Helpers ───

// hydrate, mesaj listesine yazar profillerini ve read_by set'lerini ekler.
// Receipt'ler tek sorguda batch yüklenir — N+1 oluşmaz; yazar
// profilleri cache'ten gelir.
func (s *messageService) hydrate(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	messageIDs := make([]string, len(messages))
	for i, m := range messages {
		messageIDs[i] = m.ID
	}

	receipts, err := s.receiptRepo.ForMessages(ctx, messageIDs)
	if err != nil {
		return err
	}

	for i := range messages {
		m := &messages[i]

		if rr, ok := receipts[m.ID]; ok {
			m.ReadBy = rr
		} else {
			m.ReadBy = []models.ReadReceipt{}
		}

		if m.UserID != nil {
			// Yazar bulunamazsa mesaj yazarsız döner — hard failure değil
			if author, err := s.authorProfile(ctx, *m.UserID); err == nil {
				m.User = author
			}
		}
	}

	return nil
}

// authorProfile, cache üzerinden yazar profilini döner (hash'siz kopya).
func (s *messageService) authorProfile(ctx context.Context, userID string) (*models.User, error) {
	if cached, ok := s.userCache.Get(userID); ok {
		return &cached, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := *user
	profile.PasswordHash = ""
	s.userCache.Set(userID, profile)
	return &profile, nil
}
