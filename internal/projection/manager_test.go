package projection

import (
	"context"
	"errors"
	"testing"

	"github.com/RoGogDBD/canteen/internal/models"
)

type sourceMock struct {
	fetchOrdersFunc  func(ctx context.Context, userID string, page, pageSize int) ([]*models.Order, error)
	fetchOrdersCalls int
}

func (m *sourceMock) FetchOrders(ctx context.Context, userID string, page, pageSize int) ([]*models.Order, error) {
	m.fetchOrdersCalls++
	if m.fetchOrdersFunc == nil {
		return nil, errors.New("fetchOrdersFunc not set")
	}
	return m.fetchOrdersFunc(ctx, userID, page, pageSize)
}

func staticSource(p Projection) *sourceMock {
	return &sourceMock{
		fetchOrdersFunc: func(ctx context.Context, userID string, page, pageSize int) ([]*models.Order, error) {
			return p, nil
		},
	}
}

func TestManagerActivateDispatch(t *testing.T) {
	ctx := context.Background()
	m := NewManager(staticSource(testProjection()), 20)

	if _, err := m.Activate(ctx, "user-a"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	ev := models.StatusEvent{User: "user-a", MainOrderID: "order-1", OrderID: "item-1", OrderStatus: "confirmed"}
	if !m.Dispatch(ctx, ev) {
		t.Fatal("expected the event to apply")
	}

	p, ok := m.Snapshot("user-a")
	if !ok {
		t.Fatal("expected an active projection")
	}
	if p[0].Items[0].Status != models.StatusConfirmed {
		t.Fatalf("expected confirmed, got %q", p[0].Items[0].Status)
	}
}

func TestManagerDispatchWithoutView(t *testing.T) {
	ctx := context.Background()
	m := NewManager(staticSource(testProjection()), 20)

	ev := models.StatusEvent{User: "user-a", MainOrderID: "order-1", OrderID: "item-1", OrderStatus: "confirmed"}
	if m.Dispatch(ctx, ev) {
		t.Fatal("event without an active view must be dropped")
	}
}

func TestManagerDeactivate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(staticSource(testProjection()), 20)

	if _, err := m.Activate(ctx, "user-a"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	m.Deactivate("user-a")

	if _, ok := m.Snapshot("user-a"); ok {
		t.Fatal("expected no projection after deactivate")
	}
	ev := models.StatusEvent{User: "user-a", MainOrderID: "order-1", OrderID: "item-1", OrderStatus: "confirmed"}
	if m.Dispatch(ctx, ev) {
		t.Fatal("event after deactivate must be dropped")
	}
}

func TestManagerReactivateReplaces(t *testing.T) {
	ctx := context.Background()
	source := staticSource(testProjection())
	m := NewManager(source, 20)

	if _, err := m.Activate(ctx, "user-a"); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	ev := models.StatusEvent{User: "user-a", MainOrderID: "order-1", OrderID: "item-1", OrderStatus: "ready"}
	m.Dispatch(ctx, ev)

	// Повторная активация (pull-to-refresh) заменяет проекцию целиком,
	// а не наслаивает вторую подписку.
	if _, err := m.Activate(ctx, "user-a"); err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if source.fetchOrdersCalls != 2 {
		t.Fatalf("expected 2 fetches, got %d", source.fetchOrdersCalls)
	}

	p, _ := m.Snapshot("user-a")
	if p[0].Items[0].Status != models.StatusPending {
		t.Fatalf("refresh must reset to backend state, got %q", p[0].Items[0].Status)
	}

	// Одно событие — одно применение: второй обработчик не навешивается.
	if !m.Dispatch(ctx, ev) {
		t.Fatal("expected the event to apply to the fresh projection")
	}
	if m.Dispatch(ctx, ev) {
		t.Fatal("idempotent redelivery must be a no-op")
	}
}

func TestManagerActivateError(t *testing.T) {
	ctx := context.Background()
	source := &sourceMock{
		fetchOrdersFunc: func(ctx context.Context, userID string, page, pageSize int) ([]*models.Order, error) {
			return nil, errors.New("backend unavailable")
		},
	}
	m := NewManager(source, 20)

	if _, err := m.Activate(ctx, "user-a"); err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := m.Snapshot("user-a"); ok {
		t.Fatal("failed activate must not install a projection")
	}
}
