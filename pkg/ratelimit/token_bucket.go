package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket 实现令牌桶算法的限流器
type TokenBucket struct {
	rate           float64   // 每秒生成的令牌数
	capacity       float64   // 桶的容量
	tokens         float64   // 当前令牌数
	lastRefillTime time.Time // 上次填充令牌的时间
	mutex          sync.Mutex
	now            func() time.Time
}

// NewTokenBucket 创建一个新的令牌桶限流器，capacity <= 0 时取 QPM 的一半
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	return newTokenBucket(qpm, capacity, time.Now)
}

func newTokenBucket(qpm, capacity int, now func() time.Time) *TokenBucket {
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}
	return &TokenBucket{
		rate:           float64(qpm) / 60.0,
		capacity:       float64(capacity),
		tokens:         float64(capacity), // 初始填满
		lastRefillTime: now(),
		now:            now,
	}
}

// refill 根据经过的时间填充令牌，调用方持有锁
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.lastRefillTime = now
	tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.rate)
}

// Allow 判断是否允许通过一个请求，消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	ok, _ := tb.Reserve()
	return ok
}

// Reserve 尝试消耗一个令牌；失败时返回下一个令牌可用前需要等待的时间
func (tb *TokenBucket) Reserve() (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill(tb.now())
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true, 0
	}
	if tb.rate <= 0 {
		return false, time.Minute
	}
	return false, time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
}

// full 桶是否已填满，调用方不持有锁
func (tb *TokenBucket) full() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()
	tb.refill(tb.now())
	return tb.tokens >= tb.capacity
}

// maxIdleKeys 超过这个数量时清理已填满的桶
const maxIdleKeys = 10000

// Limiter 按 key（例如客户端 IP）分别限流
type Limiter struct {
	qpm      int
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// NewLimiter 每个 key 每分钟允许 qpm 个请求，突发上限为 capacity
func NewLimiter(qpm, capacity int) *Limiter {
	return &Limiter{
		qpm:      qpm,
		capacity: capacity,
		now:      time.Now,
		buckets:  make(map[string]*TokenBucket),
	}
}

// Reserve 为 key 消耗一个令牌
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	return l.bucket(key).Reserve()
}

// Allow 为 key 消耗一个令牌
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

func (l *Limiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tb, ok := l.buckets[key]; ok {
		return tb
	}
	if len(l.buckets) >= maxIdleKeys {
		// 已填满的桶与新建的桶等价，可以直接丢弃
		for k, tb := range l.buckets {
			if tb.full() {
				delete(l.buckets, k)
			}
		}
	}
	tb := newTokenBucket(l.qpm, l.capacity, l.now)
	l.buckets[key] = tb
	return tb
}

// Len 当前跟踪的 key 数量
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
