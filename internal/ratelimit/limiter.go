package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var denialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mrtasks_ratelimit_denials_total",
	Help: "Number of denied throttled actions, by action kind.",
}, []string{"action"})

// bucket счётчик квоты одной пары (действие, пользователь).
// Квота восстанавливается целиком раз в час; окно привязано к моменту
// создания бакета, а не к началу календарного часа.
type bucket struct {
	capacity    int
	remaining   int
	windowStart time.Time
}

// Limiter выдаёт или отклоняет попытки действий. Бакеты живут только
// в памяти процесса и сбрасываются при его перезапуске.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	log     *ViolationLog
	now     func() time.Time
}

// New создаёт лимитер с журналом отказов log.
func New(log *ViolationLog) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		log:     log,
		now:     time.Now,
	}
}

// TryConsume пытается списать одну попытку действия action для username.
// Возвращает true и уменьшает остаток, если квота ещё не исчерпана.
// При отказе остаток не меняется, вызов не блокируется и не возвращает
// ошибок; отказ фиксируется в журнале вместе с ip и увеличивает метрику.
func (l *Limiter) TryConsume(action Action, username, ip string) bool {
	now := l.now()

	l.mu.Lock()
	key := string(action) + ":" + username
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			capacity:    Capacity(action),
			remaining:   Capacity(action),
			windowStart: now,
		}
		l.buckets[key] = b
	}

	// Жёсткий сброс квоты каждый полный час от начала окна.
	if elapsed := now.Sub(b.windowStart); elapsed >= time.Hour {
		b.windowStart = b.windowStart.Add(elapsed.Truncate(time.Hour))
		b.remaining = b.capacity
	}

	if b.remaining > 0 {
		b.remaining--
		l.mu.Unlock()
		return true
	}
	l.mu.Unlock()

	denialsTotal.WithLabelValues(string(action)).Inc()
	l.log.Append(Violation{
		Time:     now,
		Username: username,
		IP:       ip,
		Action:   action,
	})
	return false
}

// Remaining возвращает остаток квоты пары (действие, пользователь)
// без списания. Для ещё не созданного бакета это полная квота.
func (l *Limiter) Remaining(action Action, username string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[string(action)+":"+username]
	if !ok {
		return Capacity(action)
	}
	if elapsed := l.now().Sub(b.windowStart); elapsed >= time.Hour {
		return b.capacity
	}
	return b.remaining
}
