// MessageRateLimiter — WebSocket mesaj spam koruması, kullanıcı bazlı.
//
// LoginRateLimiter'dan iki farkı var:
// - Key userID'dir, IP değil — mesaj gönderen zaten authenticated.
// - Window ve ceza süresi (cooldown) ayrıdır: pencere kısa tutulur,
//   limit aşıldığında daha uzun bir ceza uygulanır.
//
// Örnek: 5 saniyelik pencerede 5 mesaj serbest; 6. mesajda 15 saniyelik
// cooldown başlar ve bitene kadar hiçbir mesaj geçmez. Cooldown bitince
// pencere sıfırdan başlar.
package ratelimit

import (
	"sync"
	"time"
)

// messageBucket, bir kullanıcının mesaj sayacı ve cooldown durumunu tutar.
//
// İki mod: normal (windowStart bazlı sayaç) ve cooldown
// (cooldownUntil > now → her mesaj reddedilir).
type messageBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// MessageRateLimiter, kullanıcı bazlı mesaj rate limiter.
//
// Kullanım:
//
//	limiter := ratelimit.NewMessageRateLimiter(5, 5*time.Second, 15*time.Second)
//	if !limiter.Allow(userID) {
//	    // mesaj reddedilir, CooldownSeconds ile kalan süre bildirilebilir
//	}
type MessageRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*messageBucket
	maxMessages int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewMessageRateLimiter, yeni limiter oluşturur ve temizleme goroutine'ini başlatır.
//
// maxMessages: pencere başına izin verilen mesaj sayısı.
// window: sayaç penceresi (örn: 5 saniye).
// cooldown: limit aşıldığında uygulanan bekleme süresi (örn: 15 saniye).
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*messageBucket),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, kullanıcının yeni bir mesaj göndermesine izin verilip verilmediğini döner.
//
// Akış:
// 1. Cooldown aktifse → reject.
// 2. Cooldown bittiyse veya pencere dolduysa → yeni pencere.
// 3. Pencere içindeyse sayaç artar; max aşılırsa cooldown başlar.
func (rl *MessageRateLimiter) Allow(userID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[userID]
	if !exists {
		rl.buckets[userID] = &messageBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	if !b.cooldownUntil.IsZero() {
		// Cooldown bitti — temiz pencere
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxMessages {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// CooldownSeconds, kalan cooldown süresini saniye olarak döner (yoksa 0).
// WebSocket tarafında hata mesajına gömülür.
func (rl *MessageRateLimiter) CooldownSeconds(userID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[userID]
	if !exists {
		return 0
	}

	if b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := time.Until(b.cooldownUntil)
	if remaining <= 0 {
		return 0
	}

	return int(remaining.Seconds()) + 1 // yukarı yuvarla
}

// cleanupLoop, her 30 saniyede bir süresi geçmiş bucket'ları siler.
// Mesaj bucket'ları kısa ömürlü olduğu için login cleanup'tan sık çalışır.
func (rl *MessageRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup, hem penceresi hem cooldown'u geçmiş bucket'ları siler.
// Cooldown'daki kullanıcının bucket'ı silinmez — ceza süresi korunur.
func (rl *MessageRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, userID)
		}
	}
}
