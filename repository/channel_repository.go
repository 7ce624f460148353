package repository

import (
	"context"

	"github.com/Apostolos-Valiakos/AptApp/models"
)

// ChannelRepository, kanal ve üyelik veritabanı işlemleri için interface.
type ChannelRepository interface {
	// CreateWithMembers, kanalı ve üyeliklerini tek transaction'da oluşturur.
	// creatorID otomatik üye yapılır; memberIDs'teki tekrarlar ve creator'ın
	// kendisi sorun çıkarmaz (ON CONFLICT DO NOTHING).
	CreateWithMembers(ctx context.Context, channel *models.Channel, creatorID string, memberIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	// ListForUser, kullanıcının üyesi olduğu kanalları updated_at DESC
	// sırasıyla döner; her kanal member_count ve kullanıcıya özel
	// unread_count ile annotate edilir.
	ListForUser(ctx context.Context, userID, shopID string) ([]models.Channel, error)
	// Members, kanal üyelerini kullanıcı profilleriyle birlikte döner.
	Members(ctx context.Context, channelID string) ([]models.ChannelMember, error)
	// AddMember idempotent'tir — mevcut üyelik hata değildir.
	AddMember(ctx context.Context, channelID, userID string) error
	IsMember(ctx context.Context, channelID, userID string) (bool, error)
	// MemberUserIDs, event fan-out hedeflerini çözmek için sadece ID listesi döner.
	MemberUserIDs(ctx context.Context, channelID string) ([]string, error)
}
