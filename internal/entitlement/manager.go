// Package entitlement 管理进程级订阅状态。
// 状态持久化在设置存储里，启动时从外部权益源尽力刷新；
// 刷新失败保留缓存值，绝不因此收回已解锁内容。
package entitlement

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"habittracker/internal/event"
	"habittracker/internal/settings"
)

// Publisher 状态变化通知通道（可为 nil）
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Manager struct {
	store     settings.Store
	verifier  Verifier
	productID string
	publisher Publisher
	logger    *zap.Logger

	subscribed atomic.Bool
}

func NewManager(store settings.Store, verifier Verifier, productID string, publisher Publisher, logger *zap.Logger) *Manager {
	m := &Manager{
		store:     store,
		verifier:  verifier,
		productID: productID,
		publisher: publisher,
		logger:    logger,
	}
	// 启动时读取上次持久化的值作为初始状态
	cached := settings.GetBool(context.Background(), store, settings.KeyIsSubscribed, false)
	m.subscribed.Store(cached)
	return m
}

func (m *Manager) IsSubscribed() bool {
	return m.subscribed.Load()
}

// SetSubscribed 更新订阅状态：值不变时为 no-op，变化时立即持久化并广播
func (m *Manager) SetSubscribed(ctx context.Context, value bool) error {
	if m.subscribed.Load() == value {
		return nil
	}
	// 先持久化再改内存标志，持久化失败时两者保持一致
	if err := settings.SetBool(ctx, m.store, settings.KeyIsSubscribed, value); err != nil {
		m.logger.Error("Failed to persist subscription state", zap.Error(err))
		return err
	}
	m.subscribed.Store(value)

	m.logger.Info("Subscription state changed", zap.Bool("is_subscribed", value))

	if m.publisher != nil {
		if err := m.publisher.Publish(event.SubscriptionChanged, event.SubscriptionPayload{IsSubscribed: value}); err != nil {
			m.logger.Warn("Failed to publish subscription change", zap.Error(err))
		}
	}
	return nil
}

// RefreshAsync 在后台刷新一次订阅状态，启动时调用，不阻塞启动流程
func (m *Manager) RefreshAsync(ctx context.Context) {
	go m.Refresh(ctx)
}

// Refresh 从权益源刷新订阅状态。尽力而为：失败只记日志，保留缓存值。
func (m *Manager) Refresh(ctx context.Context) {
	products, err := m.verifier.CurrentEntitlements(ctx)
	if err != nil {
		m.logger.Warn("Entitlement refresh failed, keeping cached state",
			zap.Bool("cached", m.subscribed.Load()),
			zap.Error(err),
		)
		return
	}

	active := false
	for _, p := range products {
		if p == m.productID {
			active = true
			break
		}
	}

	if err := m.SetSubscribed(ctx, active); err != nil {
		m.logger.Warn("Failed to apply refreshed subscription state", zap.Error(err))
	}
}

// Purchase 发起购买；成功后立即解锁
func (m *Manager) Purchase(ctx context.Context) (bool, error) {
	ok, err := m.verifier.Purchase(ctx, m.productID)
	if err != nil {
		m.logger.Error("Purchase failed", zap.Error(err))
		return false, err
	}
	if ok {
		if err := m.SetSubscribed(ctx, true); err != nil {
			return true, err
		}
	}
	return ok, nil
}

// Restore 恢复购买；找到有效权益时解锁
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	ok, err := m.verifier.Restore(ctx, m.productID)
	if err != nil {
		m.logger.Error("Restore failed", zap.Error(err))
		return false, err
	}
	if ok {
		if err := m.SetSubscribed(ctx, true); err != nil {
			return true, err
		}
	}
	return ok, nil
}
