package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Channel, bir shop içindeki chat kanalını temsil eder.
//
// MemberCount ve UnreadCount veritabanında kolon değildir — liste
// sorgusunda alt sorgu ile hesaplanır ve response'a eklenir.
// UnreadCount her zaman isteği yapan kullanıcıya görecelidir.
type Channel struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shop_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   *string   `json:"created_by"` // Nullable — kullanıcı silinirse SET NULL
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"` // Her yeni mesajda ilerler, liste sıralaması bunu kullanır
	MemberCount int       `json:"member_count"`
	UnreadCount int       `json:"unread_count"`
}

// ChannelMember, kanal üyeliğini temsil eder.
//
// LastReadAt okuma watermark'ıdır: bu zamandan eski mesajlar unread
// hesabına hiç girmez. Hiç okumamış üyede nil kalır.
// User alanı üye listelerinde JOIN ile doldurulur.
type ChannelMember struct {
	ChannelID  string     `json:"channel_id"`
	UserID     string     `json:"user_id"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at"`
	User       *User      `json:"user,omitempty"`
}

// CreateChannelRequest, yeni kanal oluşturma isteği.
// MemberIDs oluşturan hariç eklenecek üyeler — oluşturan her durumda
// otomatik üye yapılır.
type CreateChannelRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"member_ids"`
}

// Validate, CreateChannelRequest'in geçerli olup olmadığını kontrol eder.
// Kanal adı 1-64, açıklama max 256 karakter.
func (r *CreateChannelRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 {
		return fmt.Errorf("channel name is required")
	}
	if nameLen > 64 {
		return fmt.Errorf("channel name must be at most 64 characters")
	}

	r.Description = strings.TrimSpace(r.Description)
	if utf8.RuneCountInString(r.Description) > 256 {
		return fmt.Errorf("channel description must be at most 256 characters")
	}

	return nil
}

// AddMemberRequest, mevcut bir kanala üye ekleme isteği.
type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

// Validate, AddMemberRequest'in geçerli olup olmadığını kontrol eder.
func (r *AddMemberRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}
