package projection

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/RoGogDBD/canteen/internal/models"
)

// OrderSource загружает страницу заказов пользователя из бэкенда.
type OrderSource interface {
	FetchOrders(ctx context.Context, userID string, page, pageSize int) ([]*models.Order, error)
}

// Manager владеет активными проекциями пользователей и маршрутизирует
// в них входящие события.
//
// На пользователя существует не более одной активной проекции: Activate
// заменяет предыдущую подписку, а не добавляет еще одну, Deactivate снимает
// ее явно. Так исключается утечка повторно навешанных обработчиков между
// активациями экрана заказов.
type Manager struct {
	mu       sync.RWMutex
	views    map[string]Projection
	source   OrderSource
	pageSize int

	applied metric.Int64Counter
	dropped metric.Int64Counter
}

// NewManager создает менеджер проекций поверх источника заказов.
func NewManager(source OrderSource, pageSize int) *Manager {
	if pageSize <= 0 {
		pageSize = 20
	}
	meter := otel.Meter("github.com/RoGogDBD/canteen/internal/projection")
	applied, _ := meter.Int64Counter("projection_events_applied_total",
		metric.WithDescription("Status events applied to a projection"))
	dropped, _ := meter.Int64Counter("projection_events_dropped_total",
		metric.WithDescription("Status events silently dropped"))

	return &Manager{
		views:    make(map[string]Projection),
		source:   source,
		pageSize: pageSize,
		applied:  applied,
		dropped:  dropped,
	}
}

// Activate загружает первую страницу заказов пользователя и делает проекцию
// активной, заменяя прежнюю, если экран активируется повторно.
func (m *Manager) Activate(ctx context.Context, userID string) (Projection, error) {
	orders, err := m.source.FetchOrders(ctx, userID, 1, m.pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch orders for %q: %w", userID, err)
	}

	p := Projection(orders)
	m.mu.Lock()
	m.views[userID] = p
	m.mu.Unlock()
	return p, nil
}

// Deactivate снимает активную проекцию пользователя (экран закрыт).
func (m *Manager) Deactivate(userID string) {
	m.mu.Lock()
	delete(m.views, userID)
	m.mu.Unlock()
}

// Snapshot возвращает текущую проекцию пользователя.
func (m *Manager) Snapshot(userID string) (Projection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.views[userID]
	return p, ok
}

// Dispatch применяет событие к проекции его пользователя.
// Событие без активной проекции или без подходящей цели молча отбрасывается:
// это штатная гонка с обновлением списка, а не ошибка.
func (m *Manager) Dispatch(ctx context.Context, ev models.StatusEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.views[ev.User]
	if !ok {
		m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "no_active_view")))
		return false
	}

	next, changed := ApplyStatusEvent(ev.User, ev, current)
	if !changed {
		m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "unmatched_target")))
		return false
	}

	m.views[ev.User] = next
	m.applied.Add(ctx, 1)
	log.Printf("projection: order %s item %s -> %s", ev.MainOrderID, ev.OrderID, models.ParseStatus(ev.OrderStatus))
	return true
}
