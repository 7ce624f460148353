package services

import (
	"context"
	"fmt"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/repository"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// ChannelService, kanal iş mantığı interface'i.
type ChannelService interface {
	// List, kullanıcının üyesi olduğu kanalları member_count ve
	// unread_count ile annotate ederek döner.
	List(ctx context.Context, userID, shopID string) ([]models.Channel, error)
	// Create, kanalı ve başlangıç üyeliklerini tek transaction'da açar.
	// Oluşturan otomatik üye olur; kanal shop odasına broadcast edilir.
	Create(ctx context.Context, creatorID, shopID string, req *models.CreateChannelRequest) (*models.Channel, error)
	// Members, kanal üye listesini profilleriyle döner. İstek sahibi
	// üye değilse ErrForbidden.
	Members(ctx context.Context, userID, channelID string) ([]models.ChannelMember, error)
	// AddMember, kanala üye ekler. Zaten üyeyse no-op.
	AddMember(ctx context.Context, requesterID, channelID string, req *models.AddMemberRequest) error
	// ShopUsers, shop'taki tüm personeli döner (üye seçim ekranı için).
	ShopUsers(ctx context.Context, shopID string) ([]models.User, error)
}

// channelService, ChannelService'in implementasyonu.
// Tüm dependency'ler interface olarak tutulur (Dependency Inversion).
type channelService struct {
	channelRepo repository.ChannelRepository
	userRepo    repository.UserRepository
	hub         ws.EventPublisher
}

// NewChannelService, constructor — interface döner.
func NewChannelService(
	channelRepo repository.ChannelRepository,
	userRepo repository.UserRepository,
	hub ws.EventPublisher,
) ChannelService {
	return &channelService{
		channelRepo: channelRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

func (s *channelService) List(ctx context.Context, userID, shopID string) ([]models.Channel, error) {
	channels, err := s.channelRepo.ListForUser(ctx, userID, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	if channels == nil {
		channels = []models.Channel{} // null yerine boş dizi — frontend parsing kolaylığı
	}
	return channels, nil
}

func (s *channelService) Create(ctx context.Context, creatorID, shopID string, req *models.CreateChannelRequest) (*models.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Üye listesi doğrulanır: başka shop'un kullanıcısı sessizce elenir.
	// Hata yerine eleme — client eski bir personel listesiyle istek
	// atabilir, kanal yine de açılmalı.
	memberIDs := make([]string, 0, len(req.MemberIDs))
	for _, id := range req.MemberIDs {
		if id == creatorID {
			continue // oluşturan zaten eklenir
		}
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if user.ShopID != shopID {
			continue
		}
		memberIDs = append(memberIDs, id)
	}

	// Boş açıklama NULL olarak saklanır, boş string değil
	var description *string
	if req.Description != "" {
		description = &req.Description
	}

	channel := &models.Channel{
		ShopID:      shopID,
		Name:        req.Name,
		Description: description,
		CreatedBy:   &creatorID,
	}

	if err := s.channelRepo.CreateWithMembers(ctx, channel, creatorID, memberIDs); err != nil {
		return nil, err
	}

	// Tüm shop'a duyurulur — üye olmayanlar da kanalın varlığını görür
	s.hub.BroadcastToRoom(ws.ShopRoom(shopID), ws.Event{
		Op:   ws.OpChannelCreated,
		Data: channel,
	})

	return channel, nil
}

func (s *channelService) Members(ctx context.Context, userID, channelID string) ([]models.ChannelMember, error) {
	isMember, err := s.channelRepo.IsMember(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: not a channel member", pkg.ErrForbidden)
	}

	members, err := s.channelRepo.Members(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.ChannelMember{}
	}
	return members, nil
}

func (s *channelService) AddMember(ctx context.Context, requesterID, channelID string, req *models.AddMemberRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}

	isMember, err := s.channelRepo.IsMember(ctx, channelID, requesterID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: not a channel member", pkg.ErrForbidden)
	}

	target, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if target.ShopID != channel.ShopID {
		return fmt.Errorf("%w: user belongs to another shop", pkg.ErrForbidden)
	}

	if err := s.channelRepo.AddMember(ctx, channelID, req.UserID); err != nil {
		return err
	}

	// Eklenen kullanıcı online ise kanalı anında görsün
	s.hub.BroadcastToUser(req.UserID, ws.Event{
		Op:   ws.OpChannelCreated,
		Data: channel,
	})

	return nil
}

func (s *channelService) ShopUsers(ctx context.Context, shopID string) ([]models.User, error) {
	users, err := s.userRepo.GetByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	// Hash response'a asla sızmaz
	for i := range users {
		users[i].PasswordHash = ""
	}

	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
