// Package client, sunucudaki chat durumunun client tarafındaki aynasını tutar.
//
// State, event stream'i (WebSocket frame'leri) ve on-demand HTTP fetch'leri
// tek bir yerel modele indirger: kanal listesi + unread sayaçları, kanal
// başına mesaj sayfaları, online set'i ve typing set'leri. UI bu modeli
// okur; model sadece event'lerle ve kullanıcı aksiyonlarıyla değişir.
//
// Optimistic send: mesaj sunucu onayından ÖNCE "temp-" id'li placeholder
// olarak listeye girer. Onay (chat:message) gelince en eski placeholder
// onaylı mesajla değiştirilir (FIFO eşleme). Onay broadcast'ten de
// gelebileceği için id bazlı de-dup yapılır.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// defaultTypingDelay, son tuş vuruşundan sonra typing:stop gönderilene
// kadar geçen sessizlik penceresi.
const defaultTypingDelay = 3 * time.Second

// tempIDPrefix, henüz onaylanmamış optimistic mesajları işaretler.
const tempIDPrefix = "temp-"

// Sender, WebSocket bağlantısına event yazan soyutlama.
// Gerçek implementasyon gorilla/websocket conn'una marshal edip yazar;
// testlerde kaydedici bir mock kullanılır.
type Sender interface {
	Send(op string, data any) error
}

// Fetcher, HTTP API üzerinden geçmiş çeken soyutlama.
type Fetcher interface {
	History(ctx context.Context, channelID string) ([]models.Message, error)
}

// Hooks, UI yan etkileri. Tüm alanlar opsiyoneldir — nil hook çağrılmaz.
type Hooks struct {
	// ScrollToBottom sadece aktif kanala mesaj düştüğünde tetiklenir.
	ScrollToBottom func(channelID string)
	// PlayCue, pencere minimize iken gelen okunmamış mesajda çalar.
	PlayCue func()
	// OnChange, model her değiştiğinde render tetiklemek için.
	OnChange func()
}

// State, reconciler'ın kendisi. Tüm alanlar mu ile korunur —
// event'ler WebSocket read loop'undan, aksiyonlar UI thread'inden gelir.
type State struct {
	mu sync.Mutex

	currentUserID string
	sender        Sender
	fetcher       Fetcher
	hooks         Hooks

	channels map[string]*models.Channel
	messages map[string][]models.Message
	fetched  map[string]bool // kanal geçmişi en az bir kez çekildi mi
	online   map[string]bool
	typing   map[string]map[string]bool // channelID → typing user set

	activeChannelID string
	minimized       bool

	tempSeq      int64
	typingTimers map[string]*time.Timer

	// TypingDelay, auto-stop sessizlik penceresi. Sıfırsa default kullanılır.
	TypingDelay time.Duration
}

// NewState, constructor.
func NewState(currentUserID string, sender Sender, fetcher Fetcher, hooks Hooks) *State {
	return &State{
		currentUserID: currentUserID,
		sender:        sender,
		fetcher:       fetcher,
		hooks:         hooks,
		channels:      make(map[string]*models.Channel),
		messages:      make(map[string][]models.Message),
		fetched:       make(map[string]bool),
		online:        make(map[string]bool),
		typing:        make(map[string]map[string]bool),
		typingTimers:  make(map[string]*time.Timer),
	}
}

// eventFrame, gelen ham WebSocket frame'inin zarfı.
// Data alanı op'a göre farklı tiplerde olduğu için RawMessage olarak
// tutulur, dispatch sırasında hedef tipe unmarshal edilir.
type eventFrame struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  int64           `json:"seq,omitempty"`
}

// ─── Bootstrap ───

// LoadChannels, kanal listesini (HTTP'den gelmiş haliyle) modele yükler.
func (s *State) LoadChannels(channels []models.Channel) {
	s.mu.Lock()
	for i := range channels {
		ch := channels[i]
		s.channels[ch.ID] = &ch
	}
	s.mu.Unlock()
	s.notify()
}

// Channels, kanal listesinin kopyasını döner — en son mesaj alan üstte.
// Yeni mesaj geldikçe applyMessage updated_at'i ilerlettiği için liste
// kendiliğinden yeniden sıralanır.
func (s *State) Channels() []models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, *ch)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Messages, kanalın mesaj listesinin kopyasını döner (eski → yeni).
func (s *State) Messages(channelID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[channelID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Online, kullanıcının online görünüp görünmediğini döner.
func (s *State) Online(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID]
}

// TypingUsers, kanalda şu an yazıyor görünen kullanıcıları döner.
func (s *State) TypingUsers(channelID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.typing[channelID]))
	for id := range s.typing[channelID] {
		out = append(out, id)
	}
	return out
}

// UnreadCount, kanalın yerel unread sayacını döner.
func (s *State) UnreadCount(channelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.channels[channelID]; ok {
		return ch.UnreadCount
	}
	return 0
}

// SetMinimized, pencere durumunu günceller — bildirim sesi gate'i.
func (s *State) SetMinimized(minimized bool) {
	s.mu.Lock()
	s.minimized = minimized
	s.mu.Unlock()
}

// ─── Event Dispatch ───

// HandleFrame, WebSocket'ten gelen ham frame'i modele uygular.
// Bilinmeyen op sessizce atlanır — sunucu yeni event eklese bile
// eski client çökmez.
func (s *State) HandleFrame(raw []byte) error {
	var frame eventFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("malformed frame: %w", err)
	}

	switch frame.Op {
	case ws.OpChatMessageOut:
		var msg models.Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			return fmt.Errorf("malformed chat:message payload: %w", err)
		}
		s.applyMessage(msg)

	case ws.OpTypingUpdate:
		var data ws.TypingUpdateData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return fmt.Errorf("malformed typing:update payload: %w", err)
		}
		s.applyTyping(data)

	case ws.OpUsersOnline:
		var userIDs []string
		if err := json.Unmarshal(frame.Data, &userIDs); err != nil {
			return fmt.Errorf("malformed users:online payload: %w", err)
		}
		s.applyOnlineSnapshot(userIDs)

	case ws.OpUserOnline, ws.OpUserOffline:
		var data ws.PresenceData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return fmt.Errorf("malformed presence payload: %w", err)
		}
		s.applyPresence(data.UserID, frame.Op == ws.OpUserOnline)

	case ws.OpReadBulkUpdate:
		var data ws.ReadBulkUpdateData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return fmt.Errorf("malformed read update payload: %w", err)
		}
		s.applyReadBulk(data)

	case ws.OpChatReadUpdate:
		var data ws.ReadUpdateData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return fmt.Errorf("malformed read update payload: %w", err)
		}
		s.applyReadBulk(ws.ReadBulkUpdateData{
			ChannelID:  data.ChannelID,
			MessageIDs: []string{data.MessageID},
			UserID:     data.UserID,
		})

	case ws.OpChannelCreated:
		var ch models.Channel
		if err := json.Unmarshal(frame.Data, &ch); err != nil {
			return fmt.Errorf("malformed channel payload: %w", err)
		}
		s.applyChannel(ch)
	}

	return nil
}

// applyMessage, onaylı mesajı modele işler.
//
// Sıra önemli:
// 1. Placeholder varsa en eskisi onaylı mesajla değiştirilir (FIFO).
//    Bilinçli bir sıkılaştırma: değiştirme yalnızca mesaj bizden geldiyse
//    yapılır — başkasının mesajı hiçbir zaman bizim bekleyen
//    placeholder'ımızı tüketmez.
// 2. Yoksa ve id zaten listedeyse atlanır (broadcast + kendi optimistik
//    yolundan çift teslimat olabilir).
// 3. Yoksa sona eklenir.
// Unread sayacı sadece başkasının mesajı VE kanal aktif değilken artar;
// bildirim sesi aynı koşula ek olarak pencere minimize iken çalar.
func (s *State) applyMessage(msg models.Message) {
	s.mu.Lock()

	msgs := s.messages[msg.ChannelID]
	fromMe := msg.UserID != nil && *msg.UserID == s.currentUserID

	replaced := false
	if fromMe {
		for i := range msgs {
			if isPending(msgs[i].ID) {
				msgs[i] = msg
				replaced = true
				break
			}
		}
	}

	if !replaced {
		duplicate := false
		for i := range msgs {
			if msgs[i].ID == msg.ID {
				duplicate = true
				break
			}
		}
		if duplicate {
			s.mu.Unlock()
			return
		}
		msgs = append(msgs, msg)
	}
	s.messages[msg.ChannelID] = msgs

	isActive := msg.ChannelID == s.activeChannelID
	countUnread := !fromMe && !isActive
	playCue := countUnread && s.minimized

	if ch, ok := s.channels[msg.ChannelID]; ok {
		if countUnread {
			ch.UnreadCount++
		}
		// Kanal listesi en-son-aktif-önce sıralanır — mesaj geldikçe
		// yerel updated_at da ilerler ki sıralama sunucuyla aynı kalsın
		if msg.CreatedAt.After(ch.UpdatedAt) {
			ch.UpdatedAt = msg.CreatedAt
		}
	}

	s.mu.Unlock()

	if isActive && s.hooks.ScrollToBottom != nil {
		s.hooks.ScrollToBottom(msg.ChannelID)
	}
	if playCue && s.hooks.PlayCue != nil {
		s.hooks.PlayCue()
	}
	s.notify()
}

func (s *State) applyTyping(data ws.TypingUpdateData) {
	s.mu.Lock()
	set := s.typing[data.ChannelID]
	if data.IsTyping {
		if set == nil {
			set = make(map[string]bool)
			s.typing[data.ChannelID] = set
		}
		set[data.UserID] = true
	} else if set != nil {
		delete(set, data.UserID)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *State) applyOnlineSnapshot(userIDs []string) {
	s.mu.Lock()
	s.online = make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		s.online[id] = true
	}
	s.mu.Unlock()
	s.notify()
}

func (s *State) applyPresence(userID string, online bool) {
	s.mu.Lock()
	if online {
		s.online[userID] = true
	} else {
		delete(s.online, userID)
	}
	s.mu.Unlock()
	s.notify()
}

// applyReadBulk, receipt fan-out'unu mesajların read_by set'lerine işler.
func (s *State) applyReadBulk(data ws.ReadBulkUpdateData) {
	ids := make(map[string]bool, len(data.MessageIDs))
	for _, id := range data.MessageIDs {
		ids[id] = true
	}

	s.mu.Lock()
	msgs := s.messages[data.ChannelID]
	now := time.Now()
	for i := range msgs {
		if !ids[msgs[i].ID] {
			continue
		}
		already := false
		for _, rr := range msgs[i].ReadBy {
			if rr.UserID == data.UserID {
				already = true
				break
			}
		}
		if !already {
			msgs[i].ReadBy = append(msgs[i].ReadBy, models.ReadReceipt{
				MessageID: msgs[i].ID,
				UserID:    data.UserID,
				ReadAt:    now,
			})
		}
	}
	// Okuyan bizsek (başka sekme/cihazdan okunmuş demektir) o kanalın
	// yerel unread rozeti de sıfırlanır
	if data.UserID == s.currentUserID {
		if ch, ok := s.channels[data.ChannelID]; ok {
			ch.UnreadCount = 0
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *State) applyChannel(ch models.Channel) {
	s.mu.Lock()
	if _, exists := s.channels[ch.ID]; !exists {
		s.channels[ch.ID] = &ch
	}
	s.mu.Unlock()
	s.notify()
}

// ─── User Actions ───

// SendMessage, optimistic gönderim yapar: önce placeholder, sonra frame.
// Dönen id placeholder'ın id'sidir — UI "gönderiliyor" durumunu bununla
// işaretler.
func (s *State) SendMessage(channelID, content string) (string, error) {
	s.mu.Lock()
	s.tempSeq++
	tempID := fmt.Sprintf("%s%d", tempIDPrefix, s.tempSeq)

	userID := s.currentUserID
	body := content
	placeholder := models.Message{
		ID:          tempID,
		ChannelID:   channelID,
		UserID:      &userID,
		Content:     &body,
		MessageType: models.MessageTypeText,
		CreatedAt:   time.Now(),
		ReadBy:      []models.ReadReceipt{},
	}
	s.messages[channelID] = append(s.messages[channelID], placeholder)
	s.mu.Unlock()
	s.notify()

	err := s.sender.Send(ws.OpChatMessage, ws.ChatMessageData{
		ChannelID:   channelID,
		Content:     content,
		MessageType: string(models.MessageTypeText),
	})
	if err != nil {
		// Placeholder listede kalır — geç onay gelebilir ya da kullanıcı
		// DiscardPending ile açıkça vazgeçer. Otomatik temizlik yok.
		return tempID, err
	}

	return tempID, nil
}

// DiscardPending, onaylanmamış placeholder'ı listeden çıkarır.
// Sadece kullanıcının açık aksiyonuyla çağrılır; zaman aşımı yoktur.
func (s *State) DiscardPending(channelID, tempID string) bool {
	if !isPending(tempID) {
		return false
	}

	s.mu.Lock()
	msgs := s.messages[channelID]
	removed := false
	for i := range msgs {
		if msgs[i].ID == tempID {
			s.messages[channelID] = append(msgs[:i], msgs[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return removed
}

// SetActiveChannel, kanalı açar:
// 1. Geçmiş hiç çekilmediyse HTTP'den çekilir.
// 2. Okunmamış mesajlar yerel olarak hesaplanır ve chat:read:bulk ile
//    tam o id'ler için ack gönderilir.
// 3. Unread sayacı anında sıfırlanır (sunucu onayını beklemeden).
// 4. Kanal odasına katılım için channel:join gönderilir.
func (s *State) SetActiveChannel(ctx context.Context, channelID string) error {
	s.mu.Lock()
	s.activeChannelID = channelID
	needFetch := !s.fetched[channelID]
	s.mu.Unlock()

	if needFetch {
		history, err := s.fetcher.History(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}
		s.mu.Lock()
		s.messages[channelID] = history
		s.fetched[channelID] = true
		s.mu.Unlock()
	}

	// Okunmamışlar: başkasının gönderdiği ve read_by'ında ben olmayan mesajlar
	s.mu.Lock()
	var unreadIDs []string
	for _, m := range s.messages[channelID] {
		if isPending(m.ID) {
			continue
		}
		if m.UserID != nil && *m.UserID == s.currentUserID {
			continue
		}
		seen := false
		for _, rr := range m.ReadBy {
			if rr.UserID == s.currentUserID {
				seen = true
				break
			}
		}
		if !seen {
			unreadIDs = append(unreadIDs, m.ID)
		}
	}
	if ch, ok := s.channels[channelID]; ok {
		ch.UnreadCount = 0
	}
	s.mu.Unlock()
	s.notify()

	if err := s.sender.Send(ws.OpChannelJoin, ws.JoinChannelData{ChannelID: channelID}); err != nil {
		return err
	}

	if len(unreadIDs) > 0 {
		if err := s.sender.Send(ws.OpChatReadBulk, ws.BulkReadData{
			ChannelID:  channelID,
			MessageIDs: unreadIDs,
		}); err != nil {
			return err
		}
	}

	return nil
}

// ActiveChannelID, açık kanalın id'sini döner (boş olabilir).
func (s *State) ActiveChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChannelID
}

// ─── Typing ───

// StartTyping, her tuş vuruşunda çağrılır. İlk çağrı typing:start
// gönderir; sonraki çağrılar sadece auto-stop zamanlayıcısını uzatır.
// Sessizlik penceresi dolunca typing:stop kendiliğinden gider — sunucu
// typing durumunu yaşlandırmaz, sorumluluk gönderendedir.
func (s *State) StartTyping(channelID string) error {
	delay := s.TypingDelay
	if delay <= 0 {
		delay = defaultTypingDelay
	}

	s.mu.Lock()
	timer, active := s.typingTimers[channelID]
	if active {
		timer.Reset(delay)
		s.mu.Unlock()
		return nil
	}
	s.typingTimers[channelID] = time.AfterFunc(delay, func() {
		s.StopTyping(channelID)
	})
	s.mu.Unlock()

	return s.sender.Send(ws.OpTypingStart, ws.TypingData{ChannelID: channelID})
}

// StopTyping, typing:stop gönderir ve zamanlayıcıyı iptal eder.
// Auto-stop ve kullanıcının mesajı göndermesi aynı yoldan geçer.
func (s *State) StopTyping(channelID string) error {
	s.mu.Lock()
	timer, active := s.typingTimers[channelID]
	if active {
		timer.Stop()
		delete(s.typingTimers, channelID)
	}
	s.mu.Unlock()

	if !active {
		return nil
	}
	return s.sender.Send(ws.OpTypingStop, ws.TypingData{ChannelID: channelID})
}

// ─── Private Helpers ───

func isPending(id string) bool {
	return len(id) > len(tempIDPrefix) && id[:len(tempIDPrefix)] == tempIDPrefix
}

func (s *State) notify() {
	if s.hooks.OnChange != nil {
		s.hooks.OnChange()
	}
}
