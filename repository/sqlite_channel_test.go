package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

func TestChannelCreateWithMembers(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Shop")
	creator := seedUser(t, db, shop.ID, "patron")
	staff := seedUser(t, db, shop.ID, "cirak")

	// creator listede tekrar geçse bile üyelik tekilleşir
	channel := seedChannel(t, db, shop.ID, creator.ID, staff.ID, creator.ID, staff.ID)

	assert.NotEmpty(t, channel.ID)
	assert.Equal(t, 2, channel.MemberCount)

	isMember, err := repo.IsMember(ctx, channel.ID, creator.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = repo.IsMember(ctx, channel.ID, staff.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	ids, err := repo.MemberUserIDs(ctx, channel.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{creator.ID, staff.ID}, ids)
}

func TestChannelMembersWithProfiles(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Shop")
	creator := seedUser(t, db, shop.ID, "berk")
	other := seedUser(t, db, shop.ID, "aylin")
	channel := seedChannel(t, db, shop.ID, creator.ID, other.ID)

	members, err := repo.Members(ctx, channel.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// username sırası: aylin < berk
	assert.Equal(t, "aylin", members[0].User.Username)
	assert.Equal(t, "berk", members[1].User.Username)

	// Henüz kimse okumadı — watermark nil
	assert.Nil(t, members[0].LastReadAt)
	assert.False(t, members[0].JoinedAt.IsZero())
}

func TestChannelAddMemberIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Shop")
	creator := seedUser(t, db, shop.ID, "ege")
	newcomer := seedUser(t, db, shop.ID, "deniz")
	channel := seedChannel(t, db, shop.ID, creator.ID)

	require.NoError(t, repo.AddMember(ctx, channel.ID, newcomer.ID))
	require.NoError(t, repo.AddMember(ctx, channel.ID, newcomer.ID))

	ids, err := repo.MemberUserIDs(ctx, channel.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestChannelGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)

	_, err := repo.GetByID(context.Background(), "yok")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestChannelListForUserUnreadCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Shop")
	reader := seedUser(t, db, shop.ID, "okuyan")
	writer := seedUser(t, db, shop.ID, "yazan")
	channel := seedChannel(t, db, shop.ID, reader.ID, writer.ID)

	seedMessage(t, db, channel.ID, writer.ID, "selam")
	seedMessage(t, db, channel.ID, writer.ID, "naber")
	// Kendi mesajı unread sayılmaz
	seedMessage(t, db, channel.ID, reader.ID, "iyidir")

	channels, err := repo.ListForUser(ctx, reader.ID, shop.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, 2, channels[0].UnreadCount)
	assert.Equal(t, 2, channels[0].MemberCount)

	// Yazanın kendi görünümünde sadece okuyanın mesajı unread
	channels, err = repo.ListForUser(ctx, writer.ID, shop.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, 1, channels[0].UnreadCount)
}

func TestChannelListForUserExcludesOtherShops(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)
	ctx := context.Background()

	shopA := seedShop(t, db, "A")
	shopB := seedShop(t, db, "B")
	user := seedUser(t, db, shopA.ID, "tek")
	seedChannel(t, db, shopA.ID, user.ID)

	// Kullanıcı shop B sorgularsa hiçbir kanal görmemeli
	channels, err := repo.ListForUser(ctx, user.ID, shopB.ID)
	require.NoError(t, err)
	assert.Empty(t, channels)

	// Üyesi olmayan kullanıcı kanal görmez
	outsider := seedUser(t, db, shopA.ID, "disarida")
	channels, err = repo.ListForUser(ctx, outsider.ID, shopA.ID)
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestChannelListOrderedByActivity(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteChannelRepo(db.Conn)
	ctx := context.Background()

	shop := seedShop(t, db, "Shop")
	user := seedUser(t, db, shop.ID, "tek")

	older := seedChannel(t, db, shop.ID, user.ID)
	newer := seedChannel(t, db, shop.ID, user.ID)

	// updated_at milisaniye hassasiyetinde — eşitlik olmasın
	time.Sleep(5 * time.Millisecond)

	// Eski kanala mesaj gelince updated_at ilerler ve listede öne geçer
	seedMessage(t, db, older.ID, user.ID, "canlandı")

	channels, err := repo.ListForUser(ctx, user.ID, shop.ID)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, older.ID, channels[0].ID)
	assert.Equal(t, newer.ID, channels[1].ID)
}
