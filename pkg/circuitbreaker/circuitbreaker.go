package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// State 表示熔断器状态
type State int

const (
	StateClosed   State = iota // 关闭：正常状态，允许请求通过
	StateOpen                  // 打开：熔断状态，直接拒绝请求
	StateHalfOpen              // 半开：尝试恢复，允许少量请求通过
)

// Config 熔断器配置
type Config struct {
	// 连续失败多少次后打开熔断器
	FailureThreshold int
	// 半开状态下成功多少次后关闭熔断器
	SuccessThreshold int
	// 打开状态持续多久后进入半开状态
	Timeout time.Duration
	// 半开状态下的最大请求数
	HalfOpenMaxRequests int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 3,
	}
}

type CircuitBreaker struct {
	config Config

	state         State
	failureCount  int
	successCount  int
	halfOpenCount int
	lastStateTime time.Time

	mu sync.Mutex
}

func NewCircuitBreaker(config Config) *CircuitBreaker {
	return &CircuitBreaker{
		config:        config,
		state:         StateClosed,
		lastStateTime: time.Now(),
	}
}

// Execute 执行函数，带熔断保护
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()

	cb.checkStateTransition()

	switch cb.state {
	case StateOpen:
		cb.mu.Unlock()
		return ErrCircuitBreakerOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			cb.mu.Unlock()
			return ErrCircuitBreakerOpen
		}
		cb.halfOpenCount++
	}

	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}

	return err
}

// State 返回当前状态（测试与就绪探针用）
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.checkStateTransition()
	return cb.state
}

// checkStateTransition 检查并执行状态转换，调用方必须持有锁
func (cb *CircuitBreaker) checkStateTransition() {
	now := time.Now()

	switch cb.state {
	case StateOpen:
		// 打开状态：超时后进入半开状态
		if now.Sub(cb.lastStateTime) >= cb.config.Timeout {
			cb.state = StateHalfOpen
			cb.halfOpenCount = 0
			cb.successCount = 0
			cb.lastStateTime = now
		}
	case StateHalfOpen:
		// 半开状态：成功次数达到阈值后关闭
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.lastStateTime = now
		}
	}
}

func (cb *CircuitBreaker) onFailure() {
	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.state = StateOpen
			cb.lastStateTime = time.Now()
		}
	case StateHalfOpen:
		// 半开状态下任一失败直接回到打开状态
		cb.state = StateOpen
		cb.lastStateTime = time.Now()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.lastStateTime = time.Now()
		}
	}
}
