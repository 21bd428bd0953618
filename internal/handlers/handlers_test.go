package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RoGogDBD/canteen/internal/handlers/mocks"
	"github.com/RoGogDBD/canteen/internal/models"
	"github.com/RoGogDBD/canteen/internal/projection"
	"github.com/RoGogDBD/canteen/internal/session"
)

func authedSessions(userID string) *mocks.SessionStoreMock {
	return &mocks.SessionStoreMock{
		UserIDFunc: func(ctx context.Context, sessionID string) (string, error) {
			if sessionID == "sid-ok" {
				return userID, nil
			}
			return "", session.ErrNotFound
		},
	}
}

func testProjection(userID string) projection.Projection {
	return projection.Projection{
		{
			OrderUID:    "order-1",
			UserID:      userID,
			CanteenID:   "canteen-1",
			Total:       200,
			DateCreated: time.Now(),
			Items: []*models.Item{
				{ItemUID: "item-1", Name: "Борщ", Price: 150, Quantity: 1, Status: models.StatusPreparing},
				{ItemUID: "item-2", Name: "Хлеб", Price: 50, Quantity: 1, Status: models.StatusPending},
			},
		},
	}
}

func newRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/login", h.LoginHandler)
	r.Post("/logout", h.LogoutHandler)
	r.Get("/api/image", h.ImageHandler)
	r.Get("/api/orders", h.OrdersHandler)
	r.Post("/api/orders/refresh", h.RefreshHandler)
	r.Post("/api/orders/close", h.CloseHandler)
	r.Get("/healthz", h.HealthHandler)
	return r
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sid-ok"})
	return req
}

func TestImageHandler(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		resolver    *mocks.ImageResolverMock
		wantStatus  int
		wantPayload string
	}{
		{
			name: "resolved payload",
			uri:  "https://cdn.example.com/dish.png",
			resolver: &mocks.ImageResolverMock{
				ResolveFunc: func(ctx context.Context, uri string) string {
					return "data:image/png;base64,aaa"
				},
			},
			wantStatus:  http.StatusOK,
			wantPayload: "data:image/png;base64,aaa",
		},
		{
			name:        "fallback passthrough",
			uri:         "https://cdn.example.com/broken.png",
			resolver:    &mocks.ImageResolverMock{}, // по умолчанию отдает исходный uri
			wantStatus:  http.StatusOK,
			wantPayload: "https://cdn.example.com/broken.png",
		},
		{
			name:       "missing uri",
			uri:        "",
			resolver:   &mocks.ImageResolverMock{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.resolver, &mocks.ProjectionManagerMock{}, authedSessions("user-a"))
			r := newRouter(h)

			target := "/api/image"
			if tt.uri != "" {
				target += "?uri=" + tt.uri
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
			if tt.wantStatus != http.StatusOK {
				if tt.resolver.ResolveCalls != 0 {
					t.Fatalf("resolver must not be called, got %d", tt.resolver.ResolveCalls)
				}
				return
			}

			var got imageResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got.Payload != tt.wantPayload {
				t.Fatalf("unexpected payload: %q", got.Payload)
			}
		})
	}
}

func TestOrdersHandler(t *testing.T) {
	tests := []struct {
		name          string
		authed        bool
		manager       *mocks.ProjectionManagerMock
		wantStatus    int
		wantActivates int
	}{
		{
			name:   "active projection",
			authed: true,
			manager: &mocks.ProjectionManagerMock{
				SnapshotFunc: func(userID string) (projection.Projection, bool) {
					return testProjection(userID), true
				},
			},
			wantStatus:    http.StatusOK,
			wantActivates: 0,
		},
		{
			name:   "first request activates",
			authed: true,
			manager: &mocks.ProjectionManagerMock{
				ActivateFunc: func(ctx context.Context, userID string) (projection.Projection, error) {
					return testProjection(userID), nil
				},
			},
			wantStatus:    http.StatusOK,
			wantActivates: 1,
		},
		{
			name:          "unauthorized",
			authed:        false,
			manager:       &mocks.ProjectionManagerMock{},
			wantStatus:    http.StatusUnauthorized,
			wantActivates: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&mocks.ImageResolverMock{}, tt.manager, authedSessions("user-a"))
			r := newRouter(h)

			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.authed {
				req = withSession(req)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
			if tt.manager.ActivateCalls != tt.wantActivates {
				t.Fatalf("expected %d activates, got %d", tt.wantActivates, tt.manager.ActivateCalls)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got []*models.Order
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(got) != 1 || got[0].OrderUID != "order-1" {
				t.Fatalf("unexpected projection in body: %+v", got)
			}
		})
	}
}

func TestRefreshHandlerReplacesProjection(t *testing.T) {
	manager := &mocks.ProjectionManagerMock{
		ActivateFunc: func(ctx context.Context, userID string) (projection.Projection, error) {
			return testProjection(userID), nil
		},
	}
	h := NewHandler(&mocks.ImageResolverMock{}, manager, authedSessions("user-a"))
	r := newRouter(h)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/orders/refresh", nil))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	// Refresh всегда перечитывает с бэкенда, снапшот не используется.
	if manager.ActivateCalls != 1 || manager.SnapshotCalls != 0 {
		t.Fatalf("expected activate without snapshot, got activate=%d snapshot=%d",
			manager.ActivateCalls, manager.SnapshotCalls)
	}
}

func TestCloseHandler(t *testing.T) {
	manager := &mocks.ProjectionManagerMock{}
	h := NewHandler(&mocks.ImageResolverMock{}, manager, authedSessions("user-a"))
	r := newRouter(h)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/orders/close", nil))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if manager.DeactivateCalls != 1 {
		t.Fatalf("expected 1 deactivate, got %d", manager.DeactivateCalls)
	}
}

func TestLoginHandler(t *testing.T) {
	sessions := &mocks.SessionStoreMock{
		CreateFunc: func(ctx context.Context, userID string) (string, error) {
			return "sid-new", nil
		},
	}
	h := NewHandler(&mocks.ImageResolverMock{}, &mocks.ProjectionManagerMock{}, sessions)
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user_id":"user-a"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	found := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value == "sid-new" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a session cookie")
	}

	// Пустой user_id — невалидные учетные данные.
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for empty user: %d", rr.Code)
	}
}

func TestLogoutHandlerDeactivates(t *testing.T) {
	manager := &mocks.ProjectionManagerMock{}
	h := NewHandler(&mocks.ImageResolverMock{}, manager, authedSessions("user-a"))
	r := newRouter(h)

	req := withSession(httptest.NewRequest(http.MethodPost, "/logout", nil))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if manager.DeactivateCalls != 1 {
		t.Fatalf("expected deactivate on logout, got %d", manager.DeactivateCalls)
	}
}
