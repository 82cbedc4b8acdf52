package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	clientIdleThreshold = 1 * time.Hour
	cleanupInterval     = 30 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов отдельно для каждого клиента
type RateLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	clients     map[string]*clientLimiter
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter создает ограничитель на perMinute запросов в минуту.
// perMinute <= 0 отключает ограничение.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limit:       rate.Inf,
		burst:       1,
		clients:     make(map[string]*clientLimiter),
		stopCleanup: make(chan struct{}),
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	go rl.cleanupLoop()
	return rl
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup(time.Now())
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *RateLimiter) cleanup(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ip, c := range r.clients {
		if now.Sub(c.lastSeen) > clientIdleThreshold {
			delete(r.clients, ip)
		}
	}
}

// Stop останавливает фоновую очистку
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

// Allow сообщает, можно ли обслужить запрос клиента
func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// Middleware отвечает 429, когда клиент исчерпал лимит
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}

		if !r.Allow(ip) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, req)
	})
}
