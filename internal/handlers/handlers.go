package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoGogDBD/canteen/internal/projection"
	"github.com/RoGogDBD/canteen/internal/session"
)

// ImageResolver разрешает URI изображения в отображаемый payload.
type ImageResolver interface {
	Resolve(ctx context.Context, uri string) string
}

// ProjectionManager управляет активными проекциями заказов.
type ProjectionManager interface {
	Activate(ctx context.Context, userID string) (projection.Projection, error)
	Deactivate(userID string)
	Snapshot(userID string) (projection.Projection, bool)
}

// SessionStore управляет сессиями пользователей.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	UserID(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

const sessionCookie = "session_id"

type Handler struct {
	images   ImageResolver
	orders   ProjectionManager
	sessions SessionStore
}

func NewHandler(images ImageResolver, orders ProjectionManager, sessions SessionStore) *Handler {
	return &Handler{images: images, orders: orders, sessions: sessions}
}

// HealthHandler возвращает статус 200 OK и тело "OK" для проверки состояния сервера.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// loginRequest — тело запроса логина.
type loginRequest struct {
	UserID string `json:"user_id"`
}

// imageResponse — ответ ручки изображения.
type imageResponse struct {
	Payload string `json:"payload"`
}

// LoginHandler открывает сессию пользователя и ставит cookie.
// @Summary Login
// @Accept json
// @Success 200
// @Router /login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}

	sid, err := h.sessions.Create(r.Context(), req.UserID)
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sid, Path: "/", HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// LogoutHandler закрывает сессию и снимает активную проекцию.
// @Summary Logout
// @Success 204
// @Router /logout [post]
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if userID, err := h.sessions.UserID(r.Context(), c.Value); err == nil {
		h.orders.Deactivate(userID)
	}
	_ = h.sessions.Delete(r.Context(), c.Value)
	w.WriteHeader(http.StatusNoContent)
}

// ImageHandler разрешает URI изображения через кэш.
// Ручка всегда отвечает 200 с payload'ом: при любой ошибке кэш отдает
// исходный URI, и клиент пробует загрузить его нативно.
// @Summary Resolve image
// @Produce json
// @Param uri query string true "Image URI"
// @Success 200 {object} imageResponse
// @Security ApiKeyAuth
// @Router /api/image [get]
func (h *Handler) ImageHandler(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		http.Error(w, "missing uri parameter", http.StatusBadRequest)
		return
	}

	payload := h.images.Resolve(r.Context(), uri)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(imageResponse{Payload: payload}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// OrdersHandler возвращает текущую проекцию заказов пользователя.
// Первый запрос после логина активирует проекцию (экран открыт).
// @Summary Current orders projection
// @Produce json
// @Success 200 {array} models.Order
// @Security ApiKeyAuth
// @Router /api/orders [get]
func (h *Handler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	p, active := h.orders.Snapshot(userID)
	if !active {
		var err error
		p, err = h.orders.Activate(r.Context(), userID)
		if err != nil {
			http.Error(w, "failed to load orders", http.StatusBadGateway)
			return
		}
	}

	writeProjection(w, p)
}

// RefreshHandler перечитывает проекцию с бэкенда (pull-to-refresh).
// Прежняя подписка заменяется, а не наслаивается.
// @Summary Refresh orders projection
// @Produce json
// @Success 200 {array} models.Order
// @Security ApiKeyAuth
// @Router /api/orders/refresh [post]
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	p, err := h.orders.Activate(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to load orders", http.StatusBadGateway)
		return
	}

	writeProjection(w, p)
}

// CloseHandler снимает активную проекцию (экран заказов закрыт).
// @Summary Close orders projection
// @Success 204
// @Security ApiKeyAuth
// @Router /api/orders/close [post]
func (h *Handler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	h.orders.Deactivate(userID)
	w.WriteHeader(http.StatusNoContent)
}

// currentUser достает пользователя текущей сессии. Дальше по компонентам
// идентификатор передается только явным параметром.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}

	userID, err := h.sessions.UserID(r.Context(), c.Value)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return "", false
		}
		http.Error(w, "session error", http.StatusInternalServerError)
		return "", false
	}
	return userID, true
}

func writeProjection(w http.ResponseWriter, p projection.Projection) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
