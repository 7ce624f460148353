package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

func newChannelService(e *testEnv) ChannelService {
	return NewChannelService(e.channels, e.users, e.hub)
}

func TestChannelCreate(t *testing.T) {
	e := newTestEnv(t)
	svc := newChannelService(e)

	shop := e.seedShop(t, "Shop")
	creator := e.seedUser(t, shop.ID, "ayse", "sifre")
	other := e.seedUser(t, shop.ID, "mehmet", "sifre")

	channel, err := svc.Create(t.Context(), creator.ID, shop.ID, &models.CreateChannelRequest{
		Name:        "kasa",
		Description: "kasa vardiyasi",
		MemberIDs:   []string{other.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "kasa", channel.Name)
	assert.Equal(t, shop.ID, channel.ShopID)
	assert.Equal(t, 2, channel.MemberCount)
	require.NotNil(t, channel.Description)
	assert.Equal(t, "kasa vardiyasi", *channel.Description)

	// Shop odasına chat:channel:created yayınlanır
	events := e.hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ws.ShopRoom(shop.ID), events[0].Room)
	assert.Equal(t, ws.OpChannelCreated, events[0].Event.Op)
}

func TestChannelCreateFiltersMembers(t *testing.T) {
	e := newTestEnv(t)
	svc := newChannelService(e)

	shopA := e.seedShop(t, "A")
	shopB := e.seedShop(t, "B")
	creator := e.seedUser(t, shopA.ID, "ayse", "sifre")
	foreign := e.seedUser(t, shopB.ID, "mehmet", "sifre")

	// Başka shop'un kullanıcısı, bilinmeyen ID ve oluşturanın kendisi
	// sessizce elenir — kanal yine de oluşur
	channel, err := svc.Create(t.Context(), creator.ID, shopA.ID, &models.CreateChannelRequest{
		Name:      "genel",
		MemberIDs: []string{foreign.ID, "yok-boyle-biri", creator.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, channel.MemberCount)
	// Boş açıklama NULL kalır
	assert.Nil(t, channel.Description)

	isMember, err := e.channels.IsMember(t.Context(), channel.ID, foreign.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestChannelMembersGate(t *testing.T) {
	e := newTestEnv(t)
	svc := newChannelService(e)

	shop := e.seedShop(t, "Shop")
	owner := e.seedUser(t, shop.ID, "ayse", "sifre")
	outsider := e.seedUser(t, shop.ID, "mehmet", "sifre")
	channel := e.seedChannel(t, shop.ID, owner.ID)

	_, err := svc.Members(t.Context(), outsider.ID, channel.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	members, err := svc.Members(t.Context(), owner.ID, channel.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
}

func TestChannelAddMember(t *testing.T) {
	e := newTestEnv(t)
	svc := newChannelService(e)

	shopA := e.seedShop(t, "A")
	shopB := e.seedShop(t, "B")
	owner := e.seedUser(t, shopA.ID, "ayse", "sifre")
	colleague := e.seedUser(t, shopA.ID, "zeynep", "sifre")
	foreign := e.seedUser(t, shopB.ID, "mehmet", "sifre")
	channel := e.seedChannel(t, shopA.ID, owner.ID)

	// Başka shop'un kullanıcısı eklenemez
	err := svc.AddMember(t.Context(), owner.ID, channel.ID, &models.AddMemberRequest{UserID: foreign.ID})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Üye olmayan biri üye ekleyemez
	err = svc.AddMember(t.Context(), colleague.ID, channel.ID, &models.AddMemberRequest{UserID: colleague.ID})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	require.NoError(t, svc.AddMember(t.Context(), owner.ID, channel.ID, &models.AddMemberRequest{UserID: colleague.ID}))

	isMember, err := e.channels.IsMember(t.Context(), channel.ID, colleague.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	// Yeni üyeye kanal, kendi bağlantılarına yayınlanır
	events := e.hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, colleague.ID, events[0].UserID)
	assert.Equal(t, ws.OpChannelCreated, events[0].Event.Op)
}

func TestChannelList(t *testing.T) {
	e := newTestEnv(t)
	svc := newChannelService(e)

	shop := e.seedShop(t, "Shop")
	user := e.seedUser(t, shop.ID, "ayse", "sifre")

	// Hiç kanal yokken nil değil boş slice döner
	channels, err := svc.List(t.Context(), user.ID, shop.ID)
	require.NoError(t, err)
	assert.NotNil(t, channels)
	assert.Empty(t, channels)

	e.seedChannel(t, shop.ID, user.ID)

	channels, err = svc.List(t.Context(), user.ID, shop.ID)
	require.NoError(t, err)
	assert.Len(t, channels, 1)
}

func TestChannelShopUsers(t *testing.T) {
	e := newTestEnv(t)
	svc := newChannelService(e)

	shopA := e.seedShop(t, "A")
	shopB := e.seedShop(t, "B")
	e.seedUser(t, shopA.ID, "ayse", "sifre")
	e.seedUser(t, shopA.ID, "zeynep", "sifre")
	e.seedUser(t, shopB.ID, "mehmet", "sifre")

	users, err := svc.ShopUsers(t.Context(), shopA.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
		assert.Equal(t, shopA.ID, u.ShopID)
	}
}
