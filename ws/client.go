package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum frame boyutu (byte).
	// Dosya içeriği base64 ile chat:message içinde taşındığı için
	// upload limitinin base64 şişmesini karşılayacak kadar geniştir.
	maxMessageSize = 16 << 20

	// sendBufferSize: Her client'ın send channel buffer boyutu.
	// Buffer dolarsa client yavaş demektir — bağlantı kapatılır.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine çalışır:
// - ReadPump: client'tan gelen event'leri okur → handler'lara dağıtır
// - WritePump: send channel'dan gelen veriyi WebSocket'e yazar
//
// gorilla/websocket aynı anda tek okuma ve tek yazma destekler —
// iki ayrı goroutine ile okuma ve yazma birbirini bloklamaz.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	shopID string

	// send, client'a gidecek mesajların buffer'landığı channel.
	// Hub `client.send <- data` yazar, WritePump okur.
	send chan []byte
	mu   sync.Mutex // conn.WriteMessage çağrılarını korur
}

// ReadPump, bağlantıdan gelen event'leri okur ve işler.
// Bağlantı kapanana kadar döngüde kalır; çıkarken Hub'dan unregister olur.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	// Her heartbeat'te deadline yenilenir — gelmezse bağlantı ölü sayılır.
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, client'tan gelen event'leri türüne göre dağıtır.
// Bir handler'ın hatası sadece bu bağlantıyı etkiler — loop devam eder.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpChannelJoin:
		c.handleChannelJoin(event)

	case OpChatMessage:
		c.handleChatMessage(event)

	case OpTypingStart:
		c.handleTyping(event, true)

	case OpTypingStop:
		c.handleTyping(event, false)

	case OpChatReadBulk:
		c.handleReadBulk(event)

	case OpChatRead:
		c.handleRead(event)

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
	}
}

// handleChannelJoin, bağlantıyı kanal odasına ekler.
func (c *Client) handleChannelJoin(event Event) {
	var data JoinChannelData
	if !c.decodeData(event, &data) {
		return
	}
	if data.ChannelID == "" {
		return
	}

	c.hub.JoinRoom(c, ChannelRoom(data.ChannelID))
}

// handleChatMessage, chat:message event'ini işler.
//
// Rate limit aşımı ve payload hataları sadece gönderene chat:error
// olarak döner — kanalın geri kalanı başarısız gönderimi görmez.
// Persist + broadcast sorumluluğu callback'tedir (init_callbacks.go).
func (c *Client) handleChatMessage(event Event) {
	var data ChatMessageData
	if !c.decodeData(event, &data) {
		c.sendEvent(Event{Op: OpChatError, Data: ChatErrorData{Message: "invalid message payload"}})
		return
	}

	if c.hub.messageLimiter != nil && !c.hub.messageLimiter.Allow(c.userID) {
		seconds := c.hub.messageLimiter.CooldownSeconds(c.userID)
		c.sendEvent(Event{Op: OpChatError, Data: ChatErrorData{
			Message: fmt.Sprintf("you are sending messages too fast, retry in %d second(s)", seconds),
		}})
		return
	}

	if c.hub.onChatMessage != nil {
		// go func ile çağrılır — DB yazısı ReadPump'ı bloklamaz
		go c.hub.onChatMessage(c.userID, c.shopID, data, c.sendEvent)
	}
}

// handleTyping, typing sinyalini gönderen hariç kanal odasına yayar.
// Typing kalıcı değildir — DB'ye hiçbir şey yazılmaz.
func (c *Client) handleTyping(event Event, isTyping bool) {
	var data TypingData
	if !c.decodeData(event, &data) {
		return
	}
	if data.ChannelID == "" {
		return
	}

	c.hub.BroadcastToRoomExcept(ChannelRoom(data.ChannelID), c.userID, Event{
		Op: OpTypingUpdate,
		Data: TypingUpdateData{
			ChannelID: data.ChannelID,
			UserID:    c.userID,
			IsTyping:  isTyping,
		},
	})
}

// handleReadBulk, chat:read:bulk event'ini callback'e iletir.
func (c *Client) handleReadBulk(event Event) {
	var data BulkReadData
	if !c.decodeData(event, &data) {
		return
	}

	if c.hub.onReadBulk != nil {
		go c.hub.onReadBulk(c.userID, data, c.sendEvent)
	}
}

// handleRead, chat:read event'ini callback'e iletir.
func (c *Client) handleRead(event Event) {
	var data ReadData
	if !c.decodeData(event, &data) {
		return
	}

	if c.hub.onRead != nil {
		go c.hub.onRead(c.userID, data, c.sendEvent)
	}
}

// decodeData, event.Data'yı (any) hedef struct'a çevirir.
// Doğrudan cast mümkün değil — JSON'a çevirip tekrar parse edilir.
func (c *Client) decodeData(event Event, target any) bool {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(dataBytes, target); err != nil {
		log.Printf("[ws] invalid %s payload from user %s: %v", event.Op, c.userID, err)
		return false
	}
	return true
}

// sendEvent, tek bir event'i bu bağlantıya gönderir.
// Callback'ler chat:error dönmek için bunu reply fonksiyonu olarak alır.
func (c *Client) sendEvent(event Event) {
	event.Seq = c.hub.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.userID, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[ws] send buffer full for user %s, dropping connection", c.userID)
		c.hub.unregister <- c
	}
}

// WritePump, send channel'dan gelen mesajları WebSocket'e yazar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			// Channel kapatıldı — Hub client'ı çıkardı
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, WebSocket'e mutex koruması altında yazar.
// gorilla/websocket conn'a aynı anda birden fazla yazma yasaktır.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
