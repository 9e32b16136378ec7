package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore лимитеры запросов по ID пользователя.
// Лимитер, простоявший дольше idle, удаляется: за это время его корзина
// наполняется полностью, и новый лимитер ничем от него не отличается.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	every     time.Duration
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(perMinute, burst int) *limiterStore {
	every := time.Minute / time.Duration(perMinute)
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		every:    every,
		burst:    burst,
		idle:     max(every*time.Duration(burst), time.Minute),
		now:      time.Now,
	}
}

// allow расходует токен пользователя
func (s *limiterStore) allow(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
	}

	entry, ok := s.limiters[userID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (s *limiterStore) sweep(now time.Time) {
	for id, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > s.idle {
			delete(s.limiters, id)
		}
	}
	s.lastSweep = now
}

// RateLimit ограничивает частоту запросов одного пользователя.
// Ставится после RequireUser; ключ берётся из X-User-ID, поэтому лимит
// имеет смысл только за шлюзом, который этот заголовок проставляет.
func RateLimit(perMinute, burst int, logger *zap.Logger) echo.MiddlewareFunc {
	store := newLimiterStore(perMinute, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := userID(c)
			if !store.allow(id) {
				logger.Warn("Rate limit exceeded", zap.String("user_id", id))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded, try again later"})
			}
			return next(c)
		}
	}
}
