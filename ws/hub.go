package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Apostolos-Valiakos/AptApp/pkg/ratelimit"
)

// EventPublisher, service katmanının event broadcast etmek için
// kullandığı interface.
//
// Dependency Inversion: service'ler Hub'ın concrete struct'ına değil
// bu interface'e bağımlıdır — testte mock EventPublisher geçilir.
type EventPublisher interface {
	BroadcastToRoom(room string, event Event)
	BroadcastToRoomExcept(room, excludeUserID string, event Event)
	BroadcastToUser(userID string, event Event)
	OnlineUserIDs(shopID string) []string
}

// ShopRoom, bir shop'un presence odasının anahtarını üretir.
// Her bağlantı register sırasında otomatik bu odaya girer.
func ShopRoom(shopID string) string { return "shop:" + shopID }

// ChannelRoom, bir kanalın broadcast odasının anahtarını üretir.
// Bağlantılar channel:join gönderdikçe bu odaya girer.
func ChannelRoom(channelID string) string { return "channel:" + channelID }

// Hub, tüm WebSocket bağlantılarını ve odaları yöneten merkezi yapıdır.
//
// İki index tutulur:
// - clients: userID → bağlantı set'i (bir kullanıcının birden fazla
//   tab'ı olabilir; presence "en az bir bağlantı var mı" sorusudur)
// - rooms: oda anahtarı → bağlantı set'i (broadcast hedefleri)
//
// Go'da set yoktur — map[*Client]bool kullanılır, bool her zaman true.
//
// register/unregister channel'ları Run() goroutine'i tarafından okunur;
// map mutasyonları ile presence geçiş kararları tek noktadan geçer.
type Hub struct {
	clients map[string]map[*Client]bool
	rooms   map[string]map[*Client]bool

	// mu: clients ve rooms map'lerini koruyan read-write mutex.
	// Broadcast'ler okuma ağırlıklı — RLock ile paralel çalışır.
	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq: her outbound event'e verilen artan sayaç.
	// atomic.Int64 — birden fazla goroutine güvenle artırabilir.
	seq atomic.Int64

	// Callback'ler init_callbacks.go'da service'lere bağlanır.
	// ws paketi services'i import etmez — cycle bu şekilde kırılır.
	// reply, hatayı sadece tetikleyen bağlantıya döndürür.
	onChatMessage func(senderID, shopID string, data ChatMessageData, reply func(Event))
	onReadBulk    func(userID string, data BulkReadData, reply func(Event))
	onRead        func(userID string, data ReadData, reply func(Event))

	// messageLimiter: chat:message spam koruması (opsiyonel, nil olabilir).
	messageLimiter *ratelimit.MessageRateLimiter
}

// SetMessageLimiter, chat:message rate limiter'ını takar.
func (h *Hub) SetMessageLimiter(limiter *ratelimit.MessageRateLimiter) {
	h.messageLimiter = limiter
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// OnChatMessage, chat:message callback'ini kaydeder.
func (h *Hub) OnChatMessage(fn func(senderID, shopID string, data ChatMessageData, reply func(Event))) {
	h.onChatMessage = fn
}

// OnReadBulk, chat:read:bulk callback'ini kaydeder.
func (h *Hub) OnReadBulk(fn func(userID string, data BulkReadData, reply func(Event))) {
	h.onReadBulk = fn
}

// OnRead, chat:read callback'ini kaydeder.
func (h *Hub) OnRead(fn func(userID string, data ReadData, reply func(Event))) {
	h.onRead = fn
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
// select iki channel'ı dinler; hangisinden veri gelirse o case çalışır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// addClient, yeni bağlantıyı kaydeder, shop odasına sokar ve presence
// snapshot'ını kuyruğa koyar.
//
// Sıralama garantisi: users:online snapshot'ı lock altında, client'ın
// send buffer'ına doğrudan yazılır — aynı kullanıcı için sonradan
// gelecek hiçbir user:online/user:offline delta'sı snapshot'ın önüne
// geçemez. Client state'ini önce snapshot ile kurar, sonra delta uygular.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()

	firstConnection := len(h.clients[client.userID]) == 0

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.joinRoomLocked(client, ShopRoom(client.shopID))

	snapshot := h.onlineUserIDsLocked(client.shopID)
	h.enqueueLocked(client, Event{Op: OpUsersOnline, Data: snapshot, Seq: h.seq.Add(1)})

	log.Printf("[ws] client connected: user=%s shop=%s (connections: %d)",
		client.userID, client.shopID, len(h.clients[client.userID]))

	h.mu.Unlock()

	// offline→online geçişi sadece ilk bağlantıda duyurulur.
	// Bağlanan hariç tutulur — snapshot'ı kendisini zaten listeliyor,
	// bir de delta alırsa aynı bilgiyi iki kez işler.
	if firstConnection {
		h.BroadcastToRoomExcept(ShopRoom(client.shopID), client.userID, Event{
			Op:   OpUserOnline,
			Data: PresenceData{UserID: client.userID},
		})
	}
}

// removeClient, bağlantıyı tüm odalardan ve kullanıcı set'inden çıkarır.
// Kullanıcının son bağlantısı ise user:offline duyurulur.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()

	lastConnection := false
	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)

			for room, members := range h.rooms {
				delete(members, client)
				if len(members) == 0 {
					delete(h.rooms, room)
				}
			}

			if len(clients) == 0 {
				delete(h.clients, client.userID)
				lastConnection = true
				log.Printf("[ws] user fully disconnected: %s", client.userID)
			} else {
				log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
					client.userID, len(clients))
			}
		}
	}

	h.mu.Unlock()

	if lastConnection {
		h.BroadcastToRoom(ShopRoom(client.shopID), Event{
			Op:   OpUserOffline,
			Data: PresenceData{UserID: client.userID},
		})
	}
}

// JoinRoom, bağlantıyı bir odaya ekler (channel:join handler'ı çağırır).
//
// Üyelik burada doğrulanmaz — REST katmanı history erişiminde kontrol
// eder. Odaya transport seviyesinde girmek mesaj geçmişi vermez.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinRoomLocked(client, room)
}

func (h *Hub) joinRoomLocked(client *Client, room string) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

// BroadcastToRoom, odadaki tüm bağlantılara event gönderir.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		h.sendLocked(client, data)
	}
}

// BroadcastToRoomExcept, bir kullanıcı hariç odaya event gönderir.
// Typing fan-out'unda gönderen kendi typing'ini görmez.
func (h *Hub) BroadcastToRoomExcept(room, excludeUserID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		if client.userID == excludeUserID {
			continue
		}
		h.sendLocked(client, data)
	}
}

// BroadcastToUser, bir kullanıcının tüm bağlantılarına event gönderir.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		h.sendLocked(client, data)
	}
}

// OnlineUserIDs, shop'taki bağlı kullanıcı ID'lerini döner.
func (h *Hub) OnlineUserIDs(shopID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineUserIDsLocked(shopID)
}

func (h *Hub) onlineUserIDsLocked(shopID string) []string {
	ids := make([]string, 0)
	for userID, clients := range h.clients {
		for client := range clients {
			if client.shopID == shopID {
				ids = append(ids, userID)
			}
			break // aynı kullanıcının tüm bağlantıları aynı shop'tadır
		}
	}
	return ids
}

// sendLocked, event'i client buffer'ına bırakır; buffer doluysa client
// yavaş demektir — bağlantı asenkron kapatılır, loop bloklanmaz.
func (h *Hub) sendLocked(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		go func(c *Client) { h.unregister <- c }(client)
	}
}

// enqueueLocked, tek bir client'a lock altında event yazar (snapshot için).
func (h *Hub) enqueueLocked(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal snapshot event: %v", err)
		return
	}
	h.sendLocked(client, data)
}

// Shutdown, tüm bağlantıları kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
