package services

import (
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apostolos-Valiakos/AptApp/database"
	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/repository"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// testEnv, service testlerinin ortak altyapısı: gerçek SQLite + gerçek
// repo'lar + kaydedici publisher. Repo'lar mock'lanmaz — service ile SQL
// arasındaki sözleşme de bu testlerle doğrulanmış olur.
type testEnv struct {
	db       *database.DB
	users    repository.UserRepository
	shops    repository.ShopRepository
	sessions repository.SessionRepository
	channels repository.ChannelRepository
	messages repository.MessageRepository
	receipts repository.ReadReceiptRepository
	hub      *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:       db,
		users:    repository.NewSQLiteUserRepo(db.Conn),
		shops:    repository.NewSQLiteShopRepo(db.Conn),
		sessions: repository.NewSQLiteSessionRepo(db.Conn),
		channels: repository.NewSQLiteChannelRepo(db.Conn),
		messages: repository.NewSQLiteMessageRepo(db.Conn),
		receipts: repository.NewSQLiteReadReceiptRepo(db.Conn),
		hub:      &recordingPublisher{},
	}
}

func (e *testEnv) seedShop(t *testing.T, name string) *models.Shop {
	t.Helper()
	shop := &models.Shop{Name: name}
	require.NoError(t, e.shops.Create(t.Context(), shop))
	return shop
}

// seedUser, verilen şifre ile kullanıcı oluşturur.
// bcrypt.MinCost: test hızı için — production cost'u burada gereksiz.
func (e *testEnv) seedUser(t *testing.T, shopID, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{ShopID: shopID, Username: username, PasswordHash: string(hash)}
	require.NoError(t, e.users.Create(t.Context(), user))
	return user
}

func (e *testEnv) seedChannel(t *testing.T, shopID, creatorID string, memberIDs ...string) *models.Channel {
	t.Helper()
	channel := &models.Channel{ShopID: shopID, Name: "genel"}
	require.NoError(t, e.channels.CreateWithMembers(t.Context(), channel, creatorID, memberIDs))
	return channel
}

// recordedEvent, publisher'a gelen tek bir broadcast çağrısı.
type recordedEvent struct {
	Room          string
	ExcludeUserID string
	UserID        string
	Event         ws.Event
}

// recordingPublisher, ws.EventPublisher'ın test implementasyonu.
// Broadcast'leri göndermek yerine kaydeder — testler sıra ve içerik
// üzerinde assertion yapar.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) BroadcastToRoom(room string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Room: room, Event: event})
}

func (p *recordingPublisher) BroadcastToRoomExcept(room, excludeUserID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Room: room, ExcludeUserID: excludeUserID, Event: event})
}

func (p *recordingPublisher) BroadcastToUser(userID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{UserID: userID, Event: event})
}

func (p *recordingPublisher) OnlineUserIDs(shopID string) []string {
	return nil
}

// Events, kaydedilen broadcast'lerin kopyasını döner.
func (p *recordingPublisher) Events() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recordedEvent, len(p.events))
	copy(out, p.events)
	return out
}
