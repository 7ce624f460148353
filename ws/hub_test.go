package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apostolos-Valiakos/AptApp/pkg/ratelimit"
)

// wireFrame, send buffer'ından okunan ham frame'in test tarafı görünümü.
type wireFrame struct {
	Op  string          `json:"op"`
	D   json.RawMessage `json:"d"`
	Seq int64           `json:"seq"`
}

// newTestClient, gerçek WebSocket bağlantısı olmadan Client üretir.
// Pump'lar çalışmadığı için conn'a hiç dokunulmaz; frame'ler send
// buffer'ından okunur.
func newTestClient(h *Hub, userID, shopID string) *Client {
	return &Client{
		hub:    h,
		userID: userID,
		shopID: shopID,
		send:   make(chan []byte, 32),
	}
}

// drainFrames, client'ın buffer'ında birikmiş tüm frame'leri okur.
func drainFrames(t *testing.T, c *Client) []wireFrame {
	t.Helper()
	var frames []wireFrame
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return frames
			}
			var f wireFrame
			require.NoError(t, json.Unmarshal(data, &f))
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestHubSnapshotBeforeDelta(t *testing.T) {
	h := NewHub()

	a := newTestClient(h, "user-a", "shop-1")
	h.addClient(a)

	b := newTestClient(h, "user-b", "shop-1")
	h.addClient(b)

	// Yeni bağlanan SADECE snapshot alır — kendisi de dahil.
	// Kendi user:online delta'sı ona gönderilmez, snapshot yeterli.
	bFrames := drainFrames(t, b)
	require.Len(t, bFrames, 1)
	assert.Equal(t, OpUsersOnline, bFrames[0].Op)

	var snapshot []string
	require.NoError(t, json.Unmarshal(bFrames[0].D, &snapshot))
	assert.ElementsMatch(t, []string{"user-a", "user-b"}, snapshot)

	// Mevcut bağlantı yeni kullanıcı için delta alır
	aFrames := drainFrames(t, a)
	require.Len(t, aFrames, 2) // kendi snapshot'ı + b'nin delta'sı
	assert.Equal(t, OpUsersOnline, aFrames[0].Op)
	assert.Equal(t, OpUserOnline, aFrames[1].Op)

	var presence PresenceData
	require.NoError(t, json.Unmarshal(aFrames[1].D, &presence))
	assert.Equal(t, "user-b", presence.UserID)

	// Seq tek bağlantı içinde monoton artar
	assert.Greater(t, aFrames[1].Seq, aFrames[0].Seq)
}

func TestHubSecondConnectionIsQuiet(t *testing.T) {
	h := NewHub()

	first := newTestClient(h, "user-a", "shop-1")
	h.addClient(first)

	observer := newTestClient(h, "user-b", "shop-1")
	h.addClient(observer)
	drainFrames(t, observer)

	// Aynı kullanıcının ikinci tab'ı presence delta'sı üretmez
	second := newTestClient(h, "user-a", "shop-1")
	h.addClient(second)
	assert.Empty(t, drainFrames(t, observer))

	// İlk bağlantı kapanınca da sessizlik — kullanıcı hâlâ online
	h.removeClient(first)
	assert.Empty(t, drainFrames(t, observer))

	// Son bağlantı kapanınca user:offline duyurulur
	h.removeClient(second)
	frames := drainFrames(t, observer)
	require.Len(t, frames, 1)
	assert.Equal(t, OpUserOffline, frames[0].Op)

	var presence PresenceData
	require.NoError(t, json.Unmarshal(frames[0].D, &presence))
	assert.Equal(t, "user-a", presence.UserID)
}

func TestHubRoomBroadcast(t *testing.T) {
	h := NewHub()

	joined := newTestClient(h, "user-a", "shop-1")
	outside := newTestClient(h, "user-b", "shop-1")
	h.addClient(joined)
	h.addClient(outside)
	drainFrames(t, joined)
	drainFrames(t, outside)

	h.JoinRoom(joined, ChannelRoom("ch-1"))

	h.BroadcastToRoom(ChannelRoom("ch-1"), Event{Op: OpChatMessageOut})

	frames := drainFrames(t, joined)
	require.Len(t, frames, 1)
	assert.Equal(t, OpChatMessageOut, frames[0].Op)

	// Odaya girmemiş bağlantı kanal trafiği görmez
	assert.Empty(t, drainFrames(t, outside))
}

func TestHubBroadcastExcept(t *testing.T) {
	h := NewHub()

	sender := newTestClient(h, "user-a", "shop-1")
	receiver := newTestClient(h, "user-b", "shop-1")
	h.addClient(sender)
	h.addClient(receiver)
	h.JoinRoom(sender, ChannelRoom("ch-1"))
	h.JoinRoom(receiver, ChannelRoom("ch-1"))
	drainFrames(t, sender)
	drainFrames(t, receiver)

	h.BroadcastToRoomExcept(ChannelRoom("ch-1"), "user-a", Event{Op: OpTypingUpdate})

	assert.Empty(t, drainFrames(t, sender))
	frames := drainFrames(t, receiver)
	require.Len(t, frames, 1)
	assert.Equal(t, OpTypingUpdate, frames[0].Op)
}

func TestHubBroadcastToUser(t *testing.T) {
	h := NewHub()

	tab1 := newTestClient(h, "user-a", "shop-1")
	tab2 := newTestClient(h, "user-a", "shop-1")
	other := newTestClient(h, "user-b", "shop-1")
	h.addClient(tab1)
	h.addClient(tab2)
	h.addClient(other)
	drainFrames(t, tab1)
	drainFrames(t, tab2)
	drainFrames(t, other)

	h.BroadcastToUser("user-a", Event{Op: OpChannelCreated})

	// Kullanıcının TÜM bağlantıları alır
	require.Len(t, drainFrames(t, tab1), 1)
	require.Len(t, drainFrames(t, tab2), 1)
	assert.Empty(t, drainFrames(t, other))
}

func TestHubOnlineUserIDsShopIsolation(t *testing.T) {
	h := NewHub()

	h.addClient(newTestClient(h, "user-a", "shop-1"))
	h.addClient(newTestClient(h, "user-b", "shop-1"))
	h.addClient(newTestClient(h, "user-c", "shop-2"))

	assert.ElementsMatch(t, []string{"user-a", "user-b"}, h.OnlineUserIDs("shop-1"))
	assert.ElementsMatch(t, []string{"user-c"}, h.OnlineUserIDs("shop-2"))
	assert.Empty(t, h.OnlineUserIDs("shop-3"))
}

func TestClientTypingFanout(t *testing.T) {
	h := NewHub()

	typer := newTestClient(h, "user-a", "shop-1")
	watcher := newTestClient(h, "user-b", "shop-1")
	h.addClient(typer)
	h.addClient(watcher)
	h.JoinRoom(typer, ChannelRoom("ch-1"))
	h.JoinRoom(watcher, ChannelRoom("ch-1"))
	drainFrames(t, typer)
	drainFrames(t, watcher)

	typer.handleEvent(Event{Op: OpTypingStart, Data: TypingData{ChannelID: "ch-1"}})

	// Gönderen kendi typing'ini görmez
	assert.Empty(t, drainFrames(t, typer))

	frames := drainFrames(t, watcher)
	require.Len(t, frames, 1)
	assert.Equal(t, OpTypingUpdate, frames[0].Op)

	var update TypingUpdateData
	require.NoError(t, json.Unmarshal(frames[0].D, &update))
	assert.Equal(t, "user-a", update.UserID)
	assert.Equal(t, "ch-1", update.ChannelID)
	assert.True(t, update.IsTyping)

	typer.handleEvent(Event{Op: OpTypingStop, Data: TypingData{ChannelID: "ch-1"}})
	frames = drainFrames(t, watcher)
	require.Len(t, frames, 1)
	require.NoError(t, json.Unmarshal(frames[0].D, &update))
	assert.False(t, update.IsTyping)
}

func TestClientRateLimitedMessage(t *testing.T) {
	h := NewHub()
	h.SetMessageLimiter(ratelimit.NewMessageRateLimiter(1, time.Minute, time.Minute))

	sender := newTestClient(h, "user-a", "shop-1")
	peer := newTestClient(h, "user-b", "shop-1")
	h.addClient(sender)
	h.addClient(peer)
	h.JoinRoom(sender, ChannelRoom("ch-1"))
	h.JoinRoom(peer, ChannelRoom("ch-1"))
	drainFrames(t, sender)
	drainFrames(t, peer)

	payload := ChatMessageData{ChannelID: "ch-1", Content: "merhaba"}

	// İlk mesaj limitin içinde — callback takılı olmadığı için frame üretmez
	sender.handleEvent(Event{Op: OpChatMessage, Data: payload})
	assert.Empty(t, drainFrames(t, sender))

	// İkinci mesaj limiti aşar — chat:error SADECE gönderene gider
	sender.handleEvent(Event{Op: OpChatMessage, Data: payload})

	frames := drainFrames(t, sender)
	require.Len(t, frames, 1)
	assert.Equal(t, OpChatError, frames[0].Op)

	var chatErr ChatErrorData
	require.NoError(t, json.Unmarshal(frames[0].D, &chatErr))
	assert.NotEmpty(t, chatErr.Message)
	// Wire formatı: hata metni "error" anahtarıyla taşınır
	assert.Contains(t, string(frames[0].D), `"error"`)

	assert.Empty(t, drainFrames(t, peer))
}
