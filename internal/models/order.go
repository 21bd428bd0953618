// Package models содержит доменные модели приложения.
package models

import "time"

// Order описывает заказ пользователя в столовой.
type Order struct {
	OrderUID    string    `json:"order_uid" validate:"required,uuid4"`
	UserID      string    `json:"user_id" validate:"required"`
	CanteenID   string    `json:"canteen_id" validate:"required"`
	Total       int       `json:"total" validate:"gte=0"`
	Comment     string    `json:"comment"`
	DateCreated time.Time `json:"date_created"`
	Items       []*Item   `json:"items" validate:"required,min=1,dive"`
}
