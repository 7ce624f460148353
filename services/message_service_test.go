package services

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

func newMessageService(e *testEnv, maxFileSize int64) MessageService {
	return NewMessageService(e.messages, e.channels, e.receipts, e.users, e.hub, maxFileSize)
}

func TestMessageSend(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shop := e.seedShop(t, "Shop")
	sender := e.seedUser(t, shop.ID, "ayse", "sifre")
	channel := e.seedChannel(t, shop.ID, sender.ID)

	msg, err := svc.Send(t.Context(), sender.ID, shop.ID, &models.CreateMessageRequest{
		ChannelID: channel.ID,
		Content:   "merhaba",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	require.NotNil(t, msg.Content)
	assert.Equal(t, "merhaba", *msg.Content)
	assert.Equal(t, models.MessageTypeText, msg.MessageType)
	// Yeni mesajın read_by'ı boş ama nil olmayan slice'tır — JSON'da [] çıkar
	assert.NotNil(t, msg.ReadBy)
	assert.Empty(t, msg.ReadBy)
	// Yazar profili attach edilir, hash temizlenir
	require.NotNil(t, msg.User)
	assert.Equal(t, "ayse", msg.User.Username)
	assert.Empty(t, msg.User.PasswordHash)

	// Kanal odasına chat:message yayınlanır
	events := e.hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ws.ChannelRoom(channel.ID), events[0].Room)
	assert.Equal(t, ws.OpChatMessageOut, events[0].Event.Op)
}

func TestMessageSendWrongShopChannel(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shopA := e.seedShop(t, "A")
	shopB := e.seedShop(t, "B")
	owner := e.seedUser(t, shopA.ID, "ayse", "sifre")
	intruder := e.seedUser(t, shopB.ID, "mehmet", "sifre")
	channel := e.seedChannel(t, shopA.ID, owner.ID)

	// Token'daki shop ile kanalın shop'u eşleşmiyorsa mesaj reddedilir
	_, err := svc.Send(t.Context(), intruder.ID, shopB.ID, &models.CreateMessageRequest{
		ChannelID: channel.ID,
		Content:   "sizma denemesi",
	})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
	assert.Empty(t, e.hub.Events())
}

func TestMessageSendInvalidBase64(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shop := e.seedShop(t, "Shop")
	sender := e.seedUser(t, shop.ID, "ayse", "sifre")
	channel := e.seedChannel(t, shop.ID, sender.ID)

	bad := "bu kesinlikle base64 degil!!!"
	name := "foto.png"
	_, err := svc.Send(t.Context(), sender.ID, shop.ID, &models.CreateMessageRequest{
		ChannelID:  channel.ID,
		FileName:   &name,
		FileBase64: &bad,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestMessageSendFileTooLarge(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 8) // 8 byte limit

	shop := e.seedShop(t, "Shop")
	sender := e.seedUser(t, shop.ID, "ayse", "sifre")
	channel := e.seedChannel(t, shop.ID, sender.ID)

	payload := base64.StdEncoding.EncodeToString(make([]byte, 64))
	name := "buyuk.bin"
	_, err := svc.Send(t.Context(), sender.ID, shop.ID, &models.CreateMessageRequest{
		ChannelID:  channel.ID,
		FileName:   &name,
		FileBase64: &payload,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestMessageHistoryNonMember(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shop := e.seedShop(t, "Shop")
	owner := e.seedUser(t, shop.ID, "ayse", "sifre")
	outsider := e.seedUser(t, shop.ID, "mehmet", "sifre")
	channel := e.seedChannel(t, shop.ID, owner.ID)

	_, err := svc.History(t.Context(), outsider.ID, channel.ID, "", 50)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestMessageHistoryPagination(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shop := e.seedShop(t, "Shop")
	sender := e.seedUser(t, shop.ID, "ayse", "sifre")
	channel := e.seedChannel(t, shop.ID, sender.ID)

	contents := []string{"bir", "iki", "uc", "dort", "bes"}
	for _, c := range contents {
		_, err := svc.Send(t.Context(), sender.ID, shop.ID, &models.CreateMessageRequest{
			ChannelID: channel.ID,
			Content:   c,
		})
		require.NoError(t, err)
		// created_at milisaniye hassasiyetinde — eşitlik olmasın
		time.Sleep(2 * time.Millisecond)
	}

	// İlk sayfa: en yeni 2 mesaj, eskiden-yeniye sıralı
	page, err := svc.History(t.Context(), sender.ID, channel.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "dort", *page.Messages[0].Content)
	assert.Equal(t, "bes", *page.Messages[1].Content)

	// Cursor ile bir sayfa geri
	page2, err := svc.History(t.Context(), sender.ID, channel.ID, page.Messages[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, page2.Messages, 2)
	assert.True(t, page2.HasMore)
	assert.Equal(t, "iki", *page2.Messages[0].Content)
	assert.Equal(t, "uc", *page2.Messages[1].Content)

	// Son sayfa
	page3, err := svc.History(t.Context(), sender.ID, channel.ID, page2.Messages[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, page3.Messages, 1)
	assert.False(t, page3.HasMore)
	assert.Equal(t, "bir", *page3.Messages[0].Content)
}

func TestMessageHistoryEmptyChannel(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shop := e.seedShop(t, "Shop")
	sender := e.seedUser(t, shop.ID, "ayse", "sifre")
	channel := e.seedChannel(t, shop.ID, sender.ID)

	page, err := svc.History(t.Context(), sender.ID, channel.ID, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Messages)
	assert.Empty(t, page.Messages)
	assert.False(t, page.HasMore)
}

func TestMessageFileDownload(t *testing.T) {
	e := newTestEnv(t)
	svc := newMessageService(e, 1<<20)

	shop := e.seedShop(t, "Shop")
	sender := e.seedUser(t, shop.ID, "ayse", "sifre")
	outsider := e.seedUser(t, shop.ID, "mehmet", "sifre")
	channel := e.seedChannel(t, shop.ID, sender.ID)

	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	encoded := base64.StdEncoding.EncodeToString(raw)
	name := "fis.pdf"
	mime := "application/pdf"
	msg, err := svc.Send(t.Context(), sender.ID, shop.ID, &models.CreateMessageRequest{
		ChannelID:  channel.ID,
		FileName:   &name,
		FileType:   &mime,
		FileBase64: &encoded,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeFile, msg.MessageType)

	got, data, err := svc.File(t.Context(), sender.ID, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	require.NotNil(t, got.FileName)
	assert.Equal(t, "fis.pdf", *got.FileName)

	// Üye olmayan dosyayı indiremez
	_, _, err = svc.File(t.Context(), outsider.ID, msg.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}
