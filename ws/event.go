// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları ve odaları yöneten merkezi yapı
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Oda (room) modeli:
// Her bağlantı, bağlanır bağlanmaz kendi shop'unun presence odasına
// girer. Kanal odalarına ise client channel:join gönderdikçe girilir.
// Broadcast'ler oda hedeflidir — bir kanalın mesajı sadece o kanalın
// odasındaki bağlantılara gider.
//
// Event akışı (mesaj örneği):
// 1. Client chat:message gönderir → ReadPump decode eder
// 2. Hub'a kayıtlı callback service'i çağırır → DB'ye yazılır
// 3. Service, Hub üzerinden kanal odasına chat:message broadcast eder
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op: Event türü — "chat:message", "typing:update" vb.
// Data: Event'e özgü payload.
// Seq: Her outbound event'e verilen artan sayı. Client eksik event
//   tespiti için takip eder: seq 5'ten sonra 7 gelirse 6 kaybolmuştur.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ────────────────────────────────────────────
// Operation sabitleri
// ────────────────────────────────────────────

// Client → Server operasyonları
const (
	OpHeartbeat    = "heartbeat"      // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
	OpChannelJoin  = "channel:join"   // Kanal odasına katıl
	OpChatMessage  = "chat:message"   // Mesaj gönder
	OpTypingStart  = "typing:start"   // Kullanıcı yazmaya başladı
	OpTypingStop   = "typing:stop"    // Kullanıcı yazmayı bıraktı
	OpChatReadBulk = "chat:read:bulk" // Toplu okuma ack'i (kanal açılışı)
	OpChatRead     = "chat:read"      // Tek mesaj okuma ack'i
)

// Server → Client operasyonları
const (
	OpHeartbeatAck     = "heartbeat_ack"             // Heartbeat yanıtı
	OpChatMessageOut   = "chat:message"              // Kalıcılaşan mesajın fan-out'u
	OpChatError        = "chat:error"                // Gönderim hatası — sadece gönderene
	OpTypingUpdate     = "typing:update"             // Typing fan-out (gönderen hariç)
	OpReadBulkUpdate   = "messages:read:bulk:update" // Receipt fan-out — tüm odaya
	OpChatReadUpdate   = "chat:read"                 // Tek mesaj receipt fan-out
	OpUsersOnline      = "users:online"              // Bağlantı anında presence snapshot'ı
	OpUserOnline       = "user:online"               // Presence delta: offline→online
	OpUserOffline      = "user:offline"              // Presence delta: online→offline
	OpChannelCreated   = "chat:channel:created"      // Yeni kanal — shop odasına
)

// JoinChannelData, channel:join event'inin payload'ı.
type JoinChannelData struct {
	ChannelID string `json:"channelId"`
}

// ChatMessageData, chat:message event'inin Client → Server payload'ı.
//
// models.CreateMessageRequest ile aynı alanları taşır ama burada ayrı
// tanımlanır — ws paketi models'a bağımlı olmaz, callback kaydında
// dönüşüm yapılır.
type ChatMessageData struct {
	ChannelID   string  `json:"channelId"`
	Content     string  `json:"content"`
	MessageType string  `json:"messageType"`
	FileName    *string `json:"fileName,omitempty"`
	FileSize    *int64  `json:"fileSize,omitempty"`
	FileType    *string `json:"fileType,omitempty"`
	FileBase64  *string `json:"fileBase64,omitempty"`
}

// BulkReadData, chat:read:bulk event'inin Client → Server payload'ı.
type BulkReadData struct {
	ChannelID  string   `json:"channelId"`
	MessageIDs []string `json:"messageIds"`
}

// ReadData, chat:read event'inin Client → Server payload'ı.
type ReadData struct {
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
}

// TypingData, typing:start ve typing:stop event'lerinin payload'ı.
type TypingData struct {
	ChannelID string `json:"channelId"`
}

// TypingUpdateData, typing:update event'inin payload'ı (Server → Client).
// Gönderen hariç kanal odasına yayılır.
type TypingUpdateData struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
	IsTyping  bool   `json:"isTyping"`
}

// ReadBulkUpdateData, messages:read:bulk:update event'inin payload'ı.
// Tüm odaya gider — gönderenler "seen by" durumunu buradan günceller.
type ReadBulkUpdateData struct {
	ChannelID  string   `json:"channelId"`
	MessageIDs []string `json:"messageIds"`
	UserID     string   `json:"userId"`
}

// ReadUpdateData, chat:read event'inin Server → Client payload'ı.
type ReadUpdateData struct {
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
}

// PresenceData, user:online / user:offline event'lerinin payload'ı.
type PresenceData struct {
	UserID string `json:"userId"`
}

// ChatErrorData, chat:error event'inin payload'ı.
// Sadece hatayı tetikleyen bağlantıya gönderilir — diğer üyeler
// başarısız bir gönderimden haberdar olmaz.
type ChatErrorData struct {
	Message string `json:"error"`
}
