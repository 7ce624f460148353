package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/database"
	"github.com/Apostolos-Valiakos/AptApp/models"
)

// newTestDB, her test için izole, migration'ları uygulanmış bir SQLite
// dosyası açar. t.TempDir() test bitince otomatik silinir.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

// seedShop, testler için bir shop oluşturur.
func seedShop(t *testing.T, db *database.DB, name string) *models.Shop {
	t.Helper()

	shop := &models.Shop{Name: name}
	require.NoError(t, NewSQLiteShopRepo(db.Conn).Create(context.Background(), shop))
	return shop
}

// seedUser, testler için bir kullanıcı oluşturur.
func seedUser(t *testing.T, db *database.DB, shopID, username string) *models.User {
	t.Helper()

	user := &models.User{
		ShopID:       shopID,
		Username:     username,
		PasswordHash: "hash",
	}
	require.NoError(t, NewSQLiteUserRepo(db.Conn).Create(context.Background(), user))
	return user
}

// seedChannel, creator'ı üye yaparak bir kanal oluşturur.
func seedChannel(t *testing.T, db *database.DB, shopID, creatorID string, memberIDs ...string) *models.Channel {
	t.Helper()

	channel := &models.Channel{ShopID: shopID, Name: "genel"}
	require.NoError(t, NewSQLiteChannelRepo(db.Conn).CreateWithMembers(
		context.Background(), channel, creatorID, memberIDs,
	))
	return channel
}

// seedMessage, kanala basit bir metin mesajı yazar.
func seedMessage(t *testing.T, db *database.DB, channelID, userID, content string) *models.Message {
	t.Helper()

	msg := &models.Message{
		ChannelID: channelID,
		UserID:    &userID,
		Content:   &content,
	}
	require.NoError(t, NewSQLiteMessageRepo(db.Conn).Create(context.Background(), msg, nil))
	return msg
}
