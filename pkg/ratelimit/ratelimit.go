// Package ratelimit — IP bazlı login rate limiting (brute-force koruması).
//
// Yaklaşım:
// - Her client IP'si için sliding window sayacı tutulur.
// - Window içinde deneme sayısı maxAttempts'i aşarsa istek reddedilir.
// - Başarılı login'de Reset() çağrılır, meşru kullanıcı bloke kalmaz.
// - Arka plan goroutine'i eski bucket'ları temizler (memory leak engeli).
//
// State in-memory tutulur: tek instance deploy için yeterli, her login
// denemesinde DB'ye yazmak gereksiz I/O olurdu. sync.RWMutex ile
// thread-safe.
//
// Paket hiçbir proje içi pakete bağımlı değildir (leaf dependency) —
// handlers ve ws katmanları import cycle riski olmadan kullanabilir.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// bucket, tek bir IP için deneme sayacı ve pencere başlangıcını tutar.
//
// Sliding window:
// - İlk istekte windowStart = now, count = 1.
// - Pencere süresi dolmadıysa sonraki istekler count'u artırır.
// - Süre dolduysa pencere baştan başlar.
type bucket struct {
	count       int
	windowStart time.Time
}

// LoginRateLimiter, login endpoint'i için IP bazlı rate limiter.
//
// Kullanım:
//
//	limiter := ratelimit.NewLoginRateLimiter(5, 2*time.Minute)
//	if !limiter.Allow(ip) {
//	    // 429 + Retry-After dön
//	}
//	// başarılı login:
//	limiter.Reset(ip)
type LoginRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
}

// NewLoginRateLimiter, yeni limiter oluşturur ve temizleme goroutine'ini başlatır.
//
// maxAttempts: pencere başına izin verilen deneme sayısı.
// window: pencere süresi (örn: 2*time.Minute → 2 dakikada maxAttempts deneme).
//
// Temizleme goroutine'i dakikada bir çalışır ve süresi geçmiş bucket'ları
// siler — uzun süre çalışan sunucuda map sınırsız büyümesin diye.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, IP'nin yeni bir login denemesine izin verilip verilmediğini kontrol eder.
//
// true: limit aşılmadı, istek işlenebilir.
// false: limit aşıldı → caller 429 dönmeli.
//
// Her çağrı sayacı artırır; başarılı login sonrası Reset() çağrılmalıdır.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		// Pencere doldu — sayaç baştan başlar
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, başarılı login sonrası IP'nin sayacını temizler.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, ip)
}

// RetryAfterSeconds, limit aşıldığında kalan bekleme süresini saniye olarak döner.
// HTTP Retry-After header değeri olarak kullanılır.
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[ip]
	if !exists {
		return 0
	}

	remaining := rl.window - time.Since(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1 // yukarı yuvarla
}

// cleanupLoop, her 60 saniyede bir süresi geçmiş bucket'ları siler.
func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
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

func (rl *LoginRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik: X-Forwarded-For (proxy arkasında ilk değer gerçek client) →
// X-Real-IP → RemoteAddr. Uygulama production'da genellikle nginx/Caddy
// arkasında çalışır, o durumda RemoteAddr proxy'nin adresidir.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// "client, proxy1, proxy2" listesinden ilk IP
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
// Örn: 120 → "2 minute(s)", 45 → "45 second(s)".
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
