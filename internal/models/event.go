package models

// StatusEvent описывает push-событие смены статуса позиции заказа.
// Имена полей зафиксированы форматом канала событий бэкенда:
// mainOrderId — идентификатор заказа, orderId — идентификатор позиции внутри него.
type StatusEvent struct {
	User        string `json:"user" validate:"required"`
	MainOrderID string `json:"mainOrderId" validate:"required"`
	OrderID     string `json:"orderId" validate:"required"`
	OrderStatus string `json:"orderStatus" validate:"required"`
}
